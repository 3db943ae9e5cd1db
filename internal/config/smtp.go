// Package config loads and validates the application configuration: SMTP
// transport settings from the environment and the feed source list from an
// optional YAML file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// SMTP holds the mail transport settings, loaded from environment variables.
type SMTP struct {
	Host     string   `env:"SMTP_HOST"`
	Port     int      `env:"SMTP_PORT" envDefault:"587"`
	Username string   `env:"SMTP_USERNAME"`
	Password string   `env:"SMTP_PASSWORD"`
	From     string   `env:"FROM_EMAIL"`
	To       []string `env:"TO_EMAIL" envSeparator:","`
}

// LoadSMTP reads SMTP settings from the environment. Missing variables are
// not an error here; preview runs never touch the transport, so strict
// validation is deferred to Validate.
func LoadSMTP() (SMTP, error) {
	var cfg SMTP
	if err := env.Parse(&cfg); err != nil {
		return SMTP{}, fmt.Errorf("parse smtp env: %w", err)
	}
	return cfg, nil
}

// Sender returns the From address, falling back to the SMTP username.
func (c SMTP) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

// Validate checks that the settings are sufficient to actually send mail.
func (c SMTP) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP_HOST must be set")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be a valid port, got %d", c.Port)
	}
	if c.Sender() == "" {
		return fmt.Errorf("FROM_EMAIL or SMTP_USERNAME must be set")
	}
	if len(c.Recipients()) == 0 {
		return fmt.Errorf("TO_EMAIL must list at least one recipient")
	}
	return nil
}

// Recipients returns the recipient list with empty entries dropped, so a
// trailing comma in TO_EMAIL is harmless.
func (c SMTP) Recipients() []string {
	out := make([]string, 0, len(c.To))
	for _, addr := range c.To {
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
