// Package logger wraps zap behind a small key/value interface shared by every package.
package logger

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface the rest of the module depends on.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)

	Named(name string) Logger
	WithFields(keysAndValues ...any) Logger

	Sync() error
}

const (
	JSONFormat    = "json"
	ConsoleFormat = "console"
)

// Config selects level and encoding.
type Config struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

var _ Logger = (*zapLogger)(nil)

type zapLogger struct {
	z *zap.Logger
}

// New builds a zap-backed Logger writing to stdout.
func New(cfg Config) (Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", cfg.Level)
	}
	return newWithSink(cfg, lvl, zapcore.AddSync(os.Stdout)), nil
}

func newWithSink(cfg Config, lvl zapcore.Level, sink zapcore.WriteSyncer) *zapLogger {
	enc := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	var encoder zapcore.Encoder
	if cfg.Format == ConsoleFormat {
		encoder = zapcore.NewConsoleEncoder(enc)
	} else {
		encoder = zapcore.NewJSONEncoder(enc)
	}
	core := zapcore.NewCore(encoder, sink, lvl)
	return &zapLogger{z: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}
}

func (l *zapLogger) Debug(msg string, kv ...any) { l.z.Debug(msg, toFields(kv)...) }
func (l *zapLogger) Info(msg string, kv ...any)  { l.z.Info(msg, toFields(kv)...) }
func (l *zapLogger) Warn(msg string, kv ...any)  { l.z.Warn(msg, toFields(kv)...) }
func (l *zapLogger) Error(msg string, kv ...any) { l.z.Error(msg, toFields(kv)...) }

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

func (l *zapLogger) WithFields(kv ...any) Logger {
	fields := toFields(kv)
	if len(fields) == 0 {
		return l
	}
	return &zapLogger{z: l.z.With(fields...)}
}

func (l *zapLogger) Sync() error { return l.z.Sync() }

// toFields turns key/value pairs into zap fields. Errors become zap.Error fields;
// an odd trailing value is kept under "extra".
func toFields(kv []any) []zap.Field {
	if len(kv) == 0 {
		return nil
	}
	fields := make([]zap.Field, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			fields = append(fields, zap.Any("extra", kv[i]))
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if err, ok := kv[i+1].(error); ok && key == "error" {
			fields = append(fields, zap.Error(err))
			continue
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
