package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration. Telephony and identity
// credentials are optional: when absent the corresponding integration runs
// in an explicit unconfigured state rather than crashing.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	SessionSecret string `env:"SESSION_SECRET,required"`
	SiteURL       string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	// Identity provider shared secret for ID token verification
	IDTokenSecret string `env:"ID_TOKEN_SECRET"`

	// RingCentral credentials
	RCServerURL    string `env:"RC_SERVER_URL"`
	RCClientID     string `env:"RC_CLIENT_ID"`
	RCClientSecret string `env:"RC_CLIENT_SECRET"`
	RCAdminJWT     string `env:"RC_ADMIN_JWT"`
	RCFromNumber   string `env:"RC_FROM_NUMBER"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
