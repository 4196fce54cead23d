// Package logger builds the zap logger the rest of the tool shares.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls log verbosity and an optional JSON log file next to the
// console output.
type Config struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// New builds a console logger at the configured level, teeing structured
// JSON into Config.File when one is set.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.DisableStacktrace = true

	if cfg.File != "" {
		fileCfg := zap.NewProductionConfig()
		fileCfg.Level = zap.NewAtomicLevelAt(level)
		fileCfg.OutputPaths = []string{cfg.File}
		fileLogger, err := fileCfg.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		console, err := zapCfg.Build()
		if err != nil {
			return nil, err
		}
		core := zapcore.NewTee(console.Core(), fileLogger.Core())
		return zap.New(core), nil
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}
