// Package logging configures the process-wide structured logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logger per the ambient-stack conventions: text output for a
// TTY, JSON when asked for (CI log ingestion), Info by default and Debug
// when verbose.
func New(verbose bool, jsonFormat bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
			FullTimestamp:    false,
		})
	}

	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// NewFromEnv resolves format from PREK_LOG_FORMAT so commands that don't
// thread a CLI flag through still get the right formatter.
func NewFromEnv(verbose bool) *logrus.Logger {
	return New(verbose, os.Getenv("PREK_LOG_FORMAT") == "json")
}
