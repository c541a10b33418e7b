package models

import "errors"

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidScore      = errors.New("invalid score")
	ErrInvalidOdds       = errors.New("invalid odds")
	ErrInvalidLine       = errors.New("invalid line")
	ErrInvalidPrediction = errors.New("invalid prediction")
)
