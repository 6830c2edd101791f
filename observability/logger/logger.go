// Package logger provides a structured logging interface for applications.
package logger

import (
	"context"
	"errors"

	"github.com/code19m/errx"
	"go.uber.org/zap"

	"github.com/rise-and-shine/tabletop/meta"
)

// Logger defines the standard logging interface used across the service.
type Logger interface {
	Debug(msg any)
	Info(msg any)
	Warn(msg any)
	Error(msg any)
	Fatal(msg any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// Warnx logs err at warn level, expanding errx.ErrorX code, type, trace, fields and details.
	Warnx(err error)
	// Errorx logs err at error level, expanding errx.ErrorX metadata.
	Errorx(err error)
	// Fatalx logs err at fatal level and exits.
	Fatalx(err error)

	// With returns a child logger that always includes the given key-value pairs.
	With(keysAndValues ...any) Logger
	// WithContext returns a child logger enriched with metadata found in ctx.
	WithContext(ctx context.Context) Logger
	// Named adds a sub-scope to the logger's name.
	Named(name string) Logger

	Sync() error
}

type logger struct {
	*zap.SugaredLogger
}

// New builds a Logger from cfg.
func New(cfg Config) (Logger, error) {
	if cfg.Disable {
		return &logger{zap.NewNop().Sugar()}, nil
	}

	zc, err := cfg.zapConfig()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	z, err := zc.Build()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &logger{z.Sugar()}, nil
}

func (l *logger) errxFields(err error) *zap.SugaredLogger {
	var e errx.ErrorX
	if !errors.As(err, &e) {
		return l.SugaredLogger
	}
	return l.SugaredLogger.With(
		"error_code", e.Code(),
		"error_type", e.Type().String(),
		"error_trace", e.Trace(),
		"error_fields", e.Fields(),
		"error_details", e.Details(),
	)
}

func (l *logger) Warnx(err error) {
	l.errxFields(err).Warn(err.Error())
}

func (l *logger) Errorx(err error) {
	l.errxFields(err).Error(err.Error())
}

func (l *logger) Fatalx(err error) {
	l.errxFields(err).Fatal(err.Error())
}

func (l *logger) With(keysAndValues ...any) Logger {
	return &logger{l.SugaredLogger.With(keysAndValues...)}
}

func (l *logger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}

	data := meta.ExtractMetaFromContext(ctx)
	if len(data) == 0 {
		return l
	}

	fields := make([]any, 0, len(data)*2) //nolint:mnd // key and value
	for k, v := range data {
		fields = append(fields, string(k), v)
	}
	return l.With(fields...)
}

func (l *logger) Named(name string) Logger {
	return &logger{l.SugaredLogger.Named(name)}
}

func (l *logger) Debug(msg any) { l.SugaredLogger.Debug(msg) }

func (l *logger) Info(msg any) { l.SugaredLogger.Info(msg) }

func (l *logger) Warn(msg any) { l.SugaredLogger.Warn(msg) }

func (l *logger) Error(msg any) { l.SugaredLogger.Error(msg) }

func (l *logger) Fatal(msg any) { l.SugaredLogger.Fatal(msg) }
