package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct runs struct tag validation and wraps the first failure in sentinel.
func validateStruct(v interface{}, sentinel error) error {
	if err := validate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field '%s' failed '%s' (got %v)", sentinel, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return nil
}
