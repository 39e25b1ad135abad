package logger

import (
	"inventory-sync/core/apperrors"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a new zap logger based on the configuration.
func New(cfg *Config) (*zap.Logger, error) {
	var config zap.Config

	if cfg.Level == "debug" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	// Set format based on configuration
	if cfg.Format == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	} else {
		config.Encoding = "json"
	}

	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "message"

	if cfg.File == "" {
		return config.Build()
	}

	// Colors make no sense in a file.
	if config.Encoding == "console" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return config.Build(zap.WrapCore(func(zapcore.Core) zapcore.Core {
		return zapcore.NewCore(newEncoder(config), fileSink(cfg), config.Level)
	}))
}

func newEncoder(config zap.Config) zapcore.Encoder {
	if config.Encoding == "console" {
		return zapcore.NewConsoleEncoder(config.EncoderConfig)
	}
	return zapcore.NewJSONEncoder(config.EncoderConfig)
}

func fileSink(cfg *Config) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	})
}

// WithAccount returns a logger with the account field set.
func WithAccount(l *zap.Logger, account string) *zap.Logger {
	if account == "" {
		return l
	}
	return l.With(zap.String("account", account))
}

// WithCycle returns a logger with the cycle_id field set, tying together the entries of one sync cycle.
func WithCycle(l *zap.Logger, id string) *zap.Logger {
	if id == "" {
		return l
	}
	return l.With(zap.String("cycle_id", id))
}

// Meta returns the structured context (account, realm, path, ...) carried by err as a "meta"
// field, or a no-op field when err carries none.
func Meta(err error) zap.Field {
	meta := apperrors.MetaOf(err)
	if len(meta) == 0 {
		return zap.Skip()
	}
	return zap.Any("meta", meta)
}
