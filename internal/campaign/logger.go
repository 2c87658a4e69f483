package campaign

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a config level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("%w %q, must be one of: debug, info, warn, error", ErrUnknownLevel, name)
	}
}

// NewLogger returns a JSON logger writing to console and, when cfg.File is
// set, to a rotated log file. The returned closer releases the file.
func NewLogger(console io.Writer, cfg LogConfig) (*zap.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	consoleLogger := NewJSONLogger(zapcore.AddSync(console), level)
	if cfg.File == "" {
		return consoleLogger, nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}

	fileLogger := NewJSONLogger(zapcore.AddSync(rotator), level)

	return NewMultiLogger(consoleLogger, fileLogger), rotator, nil
}

// NewJSONLogger returns a logger emitting one JSON object per entry.
func NewJSONLogger(output zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})

	core := zapcore.NewCore(jsonEncoder, zapcore.Lock(output), level)

	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel))
}

// NewMultiLogger tees entries to every logger.
func NewMultiLogger(loggers ...*zap.Logger) *zap.Logger {
	cores := make([]zapcore.Core, 0, len(loggers))
	for _, logger := range loggers {
		cores = append(cores, logger.Core())
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
