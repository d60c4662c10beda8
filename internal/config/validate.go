package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks Config for problems that would only surface at request time.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if c.OpenAI.APIKey == "" {
		errs = append(errs, "OPENAI_API_KEY is required")
	}
	if c.OpenAI.Timeout <= 0 {
		errs = append(errs, "OPENAI_TIMEOUT must be positive")
	}

	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	if c.Patients.File == "" {
		errs = append(errs, "PATIENTS_FILE is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	if c.RateLimit.GenerateMaxReqs < 1 {
		errs = append(errs, "RATELIMIT_GENERATE_MAX must be at least 1")
	}
	if c.RateLimit.GenerateWindowSec < 1 {
		errs = append(errs, "RATELIMIT_GENERATE_WINDOW must be at least 1 second")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
