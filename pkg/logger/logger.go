package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a zap logger appropriate for the given environment.
// "local" and "dev" get a human-readable console logger at debug level,
// anything else gets the production JSON logger.
func New(env string) *zap.Logger {
	switch env {
	case "local", "dev", "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		log, err := cfg.Build()
		if err != nil {
			return zap.NewNop()
		}
		return log
	default:
		log, err := zap.NewProduction()
		if err != nil {
			return zap.NewNop()
		}
		return log
	}
}
