package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig configures a single log destination.
type LoggerConfig struct {
	Level       string `yaml:"level"` // none, normal, debug
	Destination string `yaml:"destination,omitempty"`
	Mode        string `yaml:"mode,omitempty"` // append, overwrite
}

// LoggingConfig configures program logging.
type LoggingConfig struct {
	Console LoggerConfig `yaml:"console"`
	File    LoggerConfig `yaml:"file"`
}

func levelEnabler(level string) (zapcore.LevelEnabler, error) {
	switch level {
	case "", "none":
		return nil, nil
	case "normal":
		return zap.InfoLevel, nil
	case "debug":
		return zap.DebugLevel, nil
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
}

func (conf *LoggingConfig) validate() error {
	if _, err := levelEnabler(conf.Console.Level); err != nil {
		return err
	}
	if _, err := levelEnabler(conf.File.Level); err != nil {
		return err
	}
	switch conf.File.Mode {
	case "", "append", "overwrite":
	default:
		return fmt.Errorf("unknown file log mode %q", conf.File.Mode)
	}
	return nil
}

// Prepare returns our standard logger - configured zap logger for use by
// the program.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}

	var cores []zapcore.Core

	if enab, _ := levelEnabler(conf.Console.Level); enab != nil {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stdout), enab))
	}

	if enab, _ := levelEnabler(conf.File.Level); enab != nil && conf.File.Destination != "" {
		flags := os.O_CREATE | os.O_WRONLY
		if conf.File.Mode == "overwrite" {
			flags |= os.O_TRUNC
		} else {
			flags |= os.O_APPEND
		}
		f, err := os.OpenFile(conf.File.Destination, flags, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(ec), zapcore.Lock(f), enab))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...)), nil
}
