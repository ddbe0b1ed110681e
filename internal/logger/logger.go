// Package logger holds the process-wide structured logger.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldFile       = "file"
	FieldLine       = "line"
	FieldCount      = "count"
	FieldError      = "error"
	FieldStyle      = "style"
	FieldMode       = "mode"
	FieldCommand    = "command"
	FieldDurationMS = "duration_ms"
)

// Verbosity levels for the -v flag count.
const (
	VerbosityUser  = 0 // warnings and errors only
	VerbosityInfo  = 1 // -v
	VerbosityDebug = 2 // -vv
)

// Logger is the global logger. It is a no-op until Initialize is called so
// that library code and tests can log unconditionally.
var Logger *zap.SugaredLogger = zap.NewNop().Sugar()

// Initialize installs a console logger on stderr at the level implied by verbosity.
func Initialize(verbosity int) {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.CallerKey = ""
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(os.Stderr),
		VerbosityToLevel(verbosity),
	)
	Logger = zap.New(core).Sugar()
}

// VerbosityToLevel maps -v counts to zap levels.
//
//	0 (none) -> WarnLevel
//	1 (-v)   -> InfoLevel
//	2+ (-vv) -> DebugLevel
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
