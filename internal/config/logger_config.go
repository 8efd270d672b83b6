package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type logLevel string

const (
	LevelDebug   logLevel = "DEBUG"
	LevelInfo    logLevel = "INFO"
	LevelWarning logLevel = "WARNING"
	LevelError   logLevel = "ERROR"
)

// LoggerConfig controls process logging.
type LoggerConfig struct {
	LogLevel   logLevel `mapstructure:"log_level"`
	OutputFile string   `mapstructure:"output_file"`
}

func (c LoggerConfig) validate() error {
	switch c.LogLevel {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		return nil
	default:
		return fmt.Errorf("unknown log_level: %q", c.LogLevel)
	}
}

func (c LoggerConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("logger.output_file", "LOG_FILE"); err != nil {
		return err
	}
	return v.BindEnv("logger.log_level", "LOG_LEVEL")
}
