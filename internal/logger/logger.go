package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Lg is the process-wide diagnostic logger. It discards everything until
// InitLogger is called, which keeps tests quiet.
var Lg = zap.NewNop()

// InitLogger installs a console logger on stderr. Only warnings and errors are
// shown unless verbose is set.
func InitLogger(verbose bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Lg = l
	return nil
}
