// Package config loads and validates the site configuration.
//
// Values come from an optional YAML file and the environment, with the
// environment taking precedence. Configuration is validated once at start.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// DefaultConfigFile is read when no explicit path is given and the file exists.
const DefaultConfigFile = "./configs/config.yaml"

// Config is the root configuration for the site binary.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Store  StoreConfig  `mapstructure:"store"`
	Email  EmailConfig  `mapstructure:"email"`
	Logger LoggerConfig `mapstructure:"logger"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type section interface {
	bindEnvironmentVariables(v *viper.Viper) error
	validate() error
}

// Load reads configuration from path (or DefaultConfigFile when path is
// empty and the file exists) and the environment, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, err
	}

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("email.from", "Azenia Technology Group <noreply@azenia.org>")
	v.SetDefault("email.to", []string{"admin@azenia.org"})
	v.SetDefault("email.base_url", "https://api.resend.com")
	v.SetDefault("logger.log_level", string(LevelInfo))
	v.SetDefault("auth.jwt_expiration_hours", 24)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("store.logos_bucket", "logos")
	v.SetDefault("store.resumes_bucket", "resumes")
}

func (c *Config) sections() map[string]section {
	return map[string]section{
		"ServerConfig": c.Server,
		"DBConfig":     c.DB,
		"StoreConfig":  c.Store,
		"EmailConfig":  c.Email,
		"LoggerConfig": c.Logger,
		"AuthConfig":   c.Auth,
	}
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error
	for name, s := range (&Config{}).sections() {
		if err := s.bindEnvironmentVariables(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to bind environment: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	for name, s := range c.sections() {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (c ServerConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("server.port", "PORT")
}

func (c ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return nil
}
