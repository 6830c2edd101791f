package logger

import (
	"github.com/code19m/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	encJSON    = "json"
	encPretty  = "pretty"
	levelDebug = "debug"
)

// Config defines configuration options for the logger.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	Level string `yaml:"level" validate:"oneof=debug info warn error" default:"debug"`

	// Encoding is "json" for log shippers or "pretty" for a colored console layout.
	Encoding string `yaml:"encoding" validate:"oneof=json pretty" default:"pretty"`

	// Disable swaps in a no-op logger.
	Disable bool `yaml:"disable" default:"false"`
}

func (c Config) zapConfig() (zap.Config, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return zap.Config{}, errx.Wrap(err)
	}

	enc := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		TimeKey:        "time",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	encoding := encJSON
	if c.Encoding == encPretty {
		encoding = "console"
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	}

	return zap.Config{
		Level:            level,
		Encoding:         encoding,
		EncoderConfig:    enc,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}, nil
}
