package util

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "bookstore-service"

var logger *zap.Logger

// LoggerConfig selects the encoder and minimum level of the service logger
type LoggerConfig struct {
	Env   string
	Level string
}

func (c LoggerConfig) build() (zap.Config, error) {
	var config zap.Config
	if c.Env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if c.Level != "" {
		level, err := zapcore.ParseLevel(c.Level)
		if err != nil {
			return config, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}
	return config, nil
}

// InitLogger builds the global logger. Every entry carries the service name.
func InitLogger(cfg LoggerConfig) error {
	config, err := cfg.build()
	if err != nil {
		return err
	}

	built, err := config.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return err
	}

	logger = built
	zap.ReplaceGlobals(logger)
	return nil
}

// GetLogger returns the global logger, falling back to a development logger
// before InitLogger has run
func GetLogger() *zap.Logger {
	if logger == nil {
		logger, _ = zap.NewDevelopment()
	}
	return logger
}

// ComponentLogger returns the global logger scoped to a named component
func ComponentLogger(component string) *zap.Logger {
	return GetLogger().Named(component)
}

// SyncLogger flushes any buffered log entries
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
