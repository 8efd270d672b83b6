package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// EmailConfig configures the transactional email provider. An empty APIKey
// means email relay is not configured; submissions are still stored.
type EmailConfig struct {
	APIKey  string   `mapstructure:"api_key"`
	BaseURL string   `mapstructure:"base_url"`
	From    string   `mapstructure:"from"`
	To      []string `mapstructure:"to"`
}

// Enabled reports whether an API key is present.
func (c EmailConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c EmailConfig) validate() error {
	if !c.Enabled() {
		return nil
	}
	var errs []error
	if c.From == "" {
		errs = append(errs, fmt.Errorf("missing variable: EMAIL_FROM"))
	}
	if len(c.To) == 0 {
		errs = append(errs, fmt.Errorf("missing variable: EMAIL_TO"))
	}
	if c.BaseURL == "" {
		errs = append(errs, fmt.Errorf("missing variable: EMAIL_BASE_URL"))
	}
	return errors.Join(errs...)
}

func (c EmailConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("email.api_key", "RESEND_API_KEY"); err != nil {
		return err
	}
	if err := v.BindEnv("email.base_url", "EMAIL_BASE_URL"); err != nil {
		return err
	}
	if err := v.BindEnv("email.from", "EMAIL_FROM"); err != nil {
		return err
	}
	return v.BindEnv("email.to", "EMAIL_TO")
}
