package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Logger.SetLevel(logrus.InfoLevel)

	// LOG_LEVEL=debug wins over anything set later from the config file.
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if parsedLevel, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
			Logger.SetLevel(parsedLevel)
		}
	}
}

// SetLevel applies a textual level from configuration unless LOG_LEVEL is set.
// It returns the level actually in effect.
func SetLevel(level string) (logrus.Level, error) {
	if os.Getenv("LOG_LEVEL") != "" {
		return Logger.GetLevel(), nil
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		Logger.SetLevel(logrus.InfoLevel)
		return logrus.InfoLevel, err
	}
	Logger.SetLevel(parsed)
	return parsed, nil
}

// WithComponent adds a component field to the logger
func WithComponent(component string) *logrus.Entry {
	return Logger.WithField("component", component)
}
