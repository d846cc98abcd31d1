package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a logrus logger writing to stderr.
func NewLogger(cfg LogConfig) (*logrus.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfig, out io.Writer) (*logrus.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger, nil
}

func parseLevel(s string) (logrus.Level, error) {
	switch s {
	case "debug", "info", "warn", "error":
		return logrus.ParseLevel(s)
	default:
		return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
}
