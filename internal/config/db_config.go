package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

// DBConfig points at the hosted Postgres database.
type DBConfig struct {
	URL string `mapstructure:"url"`
}

func (c DBConfig) validate() error {
	if c.URL == "" {
		return fmt.Errorf("missing variable: DATABASE_URL")
	}
	return nil
}

func (c DBConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("db.url", "DATABASE_URL")
}

// StoreConfig points at the hosted object storage API. The service role key
// never leaves the server.
type StoreConfig struct {
	URL            string `mapstructure:"url"`
	ServiceRoleKey string `mapstructure:"service_role_key"`
	LogosBucket    string `mapstructure:"logos_bucket"`
	ResumesBucket  string `mapstructure:"resumes_bucket"`
}

func (c StoreConfig) validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, fmt.Errorf("missing variable: SUPABASE_URL"))
	} else if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid SUPABASE_URL: %q", c.URL))
	}
	if c.ServiceRoleKey == "" {
		errs = append(errs, fmt.Errorf("missing variable: SUPABASE_SERVICE_ROLE_KEY"))
	}
	if c.LogosBucket == "" || c.ResumesBucket == "" {
		errs = append(errs, fmt.Errorf("bucket names must not be empty"))
	}
	return errors.Join(errs...)
}

func (c StoreConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("store.url", "SUPABASE_URL"); err != nil {
		return err
	}
	if err := v.BindEnv("store.logos_bucket", "STORAGE_LOGOS_BUCKET"); err != nil {
		return err
	}
	if err := v.BindEnv("store.resumes_bucket", "STORAGE_RESUMES_BUCKET"); err != nil {
		return err
	}
	return v.BindEnv("store.service_role_key", "SUPABASE_SERVICE_ROLE_KEY")
}
