// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance writing to stdout.
func NewLogger(logLevel, format string) *logrus.Logger {
	return NewLoggerWithOutput(logLevel, format, os.Stdout)
}

// NewLoggerWithOutput is NewLogger with an explicit writer.
func NewLoggerWithOutput(logLevel, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// JSON in production, colored text otherwise
	if strings.EqualFold(format, "json") || os.Getenv("PUCKLINE_ENV") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}
