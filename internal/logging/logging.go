// Package logging configures the shared structured logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the logger handed to every component.
type Logger = *logrus.Logger

// Fields are structured logging fields.
type Fields = logrus.Fields

// New creates a JSON logger at the level named by LOG_LEVEL (default info).
func New() Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
