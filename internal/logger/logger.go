package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init replaces the global zap logger according to the environment.
func Init(env string) error {
	var conf zap.Config
	switch env {
	case "production":
		conf = zap.NewProductionConfig()
	case "test":
		conf = zap.NewDevelopmentConfig()
		conf.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		conf = zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := conf.Build()
	if err != nil {
		return fmt.Errorf("conf.Build -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
