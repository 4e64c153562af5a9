package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger builds the service logger: JSON to stdout, level from LOG_LEVEL.
func InitLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
