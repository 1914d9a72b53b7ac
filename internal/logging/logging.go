// Package logging builds the logrus loggers shared by the server, the CLI and the requester.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Formats accepted by Config.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config selects the level and output format of a logger.
type Config struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// New returns a logger writing to out. A nil out writes to stderr.
func New(cfg Config, out io.Writer) (*logrus.Logger, error) {
	if out == nil {
		out = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(out)

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", FormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q (want %s or %s)", cfg.Format, FormatText, FormatJSON)
	}

	return logger, nil
}

// Discard returns a logger that drops everything. Used where logging is optional.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
