// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects level, format and destination of log output.
type Config struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
	File   string `mapstructure:"file" yaml:"file"`     // Empty logs to stderr

	// Rotation, used when File is set
	MaxSize    int  `mapstructure:"max_size" yaml:"max_size"` // Megabytes
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age" yaml:"max_age"` // Days
	Compress   bool `mapstructure:"compress" yaml:"compress"`
}

// DefaultConfig logs info and above as text to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

// Validate checks level and format names.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging: unknown format %q", c.Format)
	}
	return nil
}

// Setup builds a logger from cfg. When cfg.File is set, output goes to a
// size-rotated file; the returned closer releases it.
func Setup(cfg Config) (*logrus.Logger, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := logrus.ParseLevel(cfg.Level)

	logger := logrus.New()
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		logger.SetOutput(lj)
		closer = lj
	} else {
		logger.SetOutput(os.Stderr)
	}

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
