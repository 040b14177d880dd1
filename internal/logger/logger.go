package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global instance. Commands and servers call Initialize
	// before use; until then it is a safe no-op.
	Logger *zap.SugaredLogger
	// JSONOutput tracks whether Initialize selected structured output.
	JSONOutput bool
)

func init() {
	// No-op logger at package load so early callers never hit a nil pointer.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. jsonOutput selects machine-readable
// production encoding; otherwise a human console encoder is used. level is
// one of debug/info/warn/error (empty means info).
func Initialize(jsonOutput bool, level string) error {
	JSONOutput = jsonOutput

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			return err
		}
	}

	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	zapLogger, err := cfg.Build()
	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Get returns the global logger.
func Get() *zap.SugaredLogger {
	return Logger
}

// Named returns a child logger for a module ("statstore", "httpapi", ...).
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// Sync flushes buffered log entries. Safe to call on shutdown.
func Sync() {
	_ = Logger.Sync()
}
