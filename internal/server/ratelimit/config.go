package ratelimit

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("RATE_LIMIT")
	v.AutomaticEnv()

	v.SetDefault("enabled", true)
	v.SetDefault("default_limit", 600)
	v.SetDefault("default_window", time.Minute)
	v.SetDefault("cleanup_interval", 5*time.Minute)
	v.SetDefault("whitelist", "")
	v.SetDefault("blacklist", "")

	if !v.GetBool("enabled") {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    v.GetInt("default_limit"),
		DefaultWindow:   v.GetDuration("default_window"),
		CleanupInterval: v.GetDuration("cleanup_interval"),
		Whitelist:       parseIPList(v.GetString("whitelist")),
		Blacklist:       parseIPList(v.GetString("blacklist")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	submissions := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Limit: 20, Window: time.Hour, Burst: 5}
	}
	writes := func(path, method string) EndpointConfig {
		return EndpointConfig{Path: path, Method: method, Limit: 100, Window: time.Minute, Burst: 10}
	}

	return []EndpointConfig{
		// Tier 1: public submissions and uploads (strictest limits)
		submissions("/api/contact"),
		submissions("/functions/v1/send-contact-email"),
		submissions("/api/applications"),
		submissions("/api/applications/notify"),
		submissions("/functions/v1/send-application-email"),
		submissions("/contact"),
		submissions("/partner"),
		submissions("/jobs/apply"),

		// Tier 2: credential checks
		{Path: "/api/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},

		// Tier 3: admin writes
		writes("/api/jobs", "POST"),
		writes("/api/jobs", "PUT"),
		writes("/api/jobs", "DELETE"),
		writes("/functions/v1/manage-jobs", "POST"),
		writes("/functions/v1/manage-jobs", "PUT"),
		writes("/functions/v1/manage-jobs", "DELETE"),
		writes("/api/logos", "POST"),
		writes("/api/logos/", "PUT"),
		writes("/api/logos/", "DELETE"),
		writes("/admin/", "POST"),

		// Reads use the default limit; health and metrics are unlimited.
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
