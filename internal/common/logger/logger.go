// Package logger is the structured logging facade shared by the workers, HTTP functions,
// event consumer and scanner. Everything is zap underneath.
package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger takes fields as a map so call sites stay free of zap types.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
}

// New builds a zap logger. format "json" selects the production encoder, anything else the
// console encoder. output is a zap sink ("stdout", "stderr" or a file path). An unparseable
// level falls back to info.
func New(level, format string, output ...string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if len(output) > 0 && output[0] != "" {
		cfg.OutputPaths = []string{output[0]}
	}

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// NewStructured is New wrapped as a Logger.
func NewStructured(level, format string, output ...string) Logger {
	return NewZapAdapter(New(level, format, output...))
}

// NewZapAdapter wraps l. Caller annotations skip the adapter's own frames.
func NewZapAdapter(l *zap.Logger) Logger {
	return &zapLogger{l: l.WithOptions(zap.AddCallerSkip(2))}
}

// NewTestLogger routes output through t.Log so it only shows for failing tests.
func NewTestLogger(t testing.TB) Logger {
	return NewZapAdapter(zaptest.NewLogger(t))
}

func NewNoOpLogger() Logger {
	return NewZapAdapter(zap.NewNop())
}

type zapLogger struct {
	l *zap.Logger
}

func (z *zapLogger) Debug(msg string, fields map[string]interface{}) {
	z.log(zapcore.DebugLevel, msg, fields)
}

func (z *zapLogger) Info(msg string, fields map[string]interface{}) {
	z.log(zapcore.InfoLevel, msg, fields)
}

func (z *zapLogger) Warn(msg string, fields map[string]interface{}) {
	z.log(zapcore.WarnLevel, msg, fields)
}

func (z *zapLogger) Error(msg string, fields map[string]interface{}) {
	z.log(zapcore.ErrorLevel, msg, fields)
}

func (z *zapLogger) WithFields(fields map[string]interface{}) Logger {
	return &zapLogger{l: z.l.With(toZapFields(fields)...)}
}

func (z *zapLogger) log(lvl zapcore.Level, msg string, fields map[string]interface{}) {
	if ce := z.l.Check(lvl, msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

// toZapFields keeps errors as proper error fields so they serialize with their message.
func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
