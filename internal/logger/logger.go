//file: internal/logger/logger.go
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"topicmux/config"
)

// Logger wraps a zap.Logger with the small set of level helpers called
// from elsewhere in this codebase, so callers never import zap directly.
type Logger struct {
	*zap.Logger
}

// NewLogger builds a Logger from the supplied configuration: JSON or
// console encoding, a parsed level (defaulting to info on an
// unrecognized value), and either stdout or a file output path.
func NewLogger(cfg *config.LogConfig) (*Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logger: config must not be nil")
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	sink, _, err := zap.Open(outputPaths(cfg.OutputPath)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %q: %w", cfg.OutputPath, err)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return &Logger{Logger: zap.New(core, zap.AddCaller())}, nil
}

func outputPaths(path string) []string {
	if path == "" {
		return []string{"stdout"}
	}
	return []string{path}
}

// argsToFields converts a flat key/value argument list into zap fields.
// A key that is not a string, or a trailing key with no paired value, is
// dropped rather than rejected -- callers log best-effort context, not
// validated schemas.
func argsToFields(args ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

// Fatal logs the message and its fields at error level, flushes, then
// panics with msg. Library code should never call Fatal.
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.Logger.Error(msg, argsToFields(args...)...)
	l.Sync()
	panic(msg)
}

// Error logs a message at error level with key/value context.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.Logger.Error(msg, argsToFields(args...)...)
}

// Info logs a message at info level with key/value context.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.Logger.Info(msg, argsToFields(args...)...)
}

// Debug logs a message at debug level with key/value context.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.Logger.Debug(msg, argsToFields(args...)...)
}

// Warn logs a message at warn level with key/value context.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.Logger.Warn(msg, argsToFields(args...)...)
}

// Sync flushes any buffered log entries. Call before process exit.
func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
