package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Log is the global sugared logger instance
var Log *zap.SugaredLogger

// Init builds the global logger. Mode "prod"/"production" selects the
// JSON production config, anything else the development config.
func Init(mode string) error {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zapLogger.Sugar()
	return nil
}

// Sync flushes buffered log entries
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

func init() {
	// Replaced in main; keeps the global usable in tests without setup.
	Log = zap.NewNop().Sugar()
}
