// Package logging constructs the structured logger every other package
// takes as a *logrus.Logger, grounded on the teacher's main.go: JSON
// formatter, configurable level, stdout destination.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus.Logger configured per SPEC_FULL §10. levelName is
// parsed with logrus.ParseLevel; an invalid or empty value falls back to
// Info rather than failing startup over a cosmetic setting.
//
// Fields callers attach must never include key material, passwords, or
// drop ids beyond their public 16 characters (spec §7 "Observability").
func New(levelName string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
