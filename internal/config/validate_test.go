package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 5001},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "vitalpath",
			Password: "secret", Name: "vitalpath", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		OpenAI: OpenAIConfig{
			APIKey:     "sk-test",
			BaseURL:    "https://api.openai.com/v1",
			ChatModel:  "gpt-4-turbo-preview",
			EmbedModel: "text-embedding-3-small",
			Timeout:    90 * time.Second,
		},
		Patients:  PatientsConfig{File: "synthetic_patients.json"},
		RateLimit: RateLimitConfig{GenerateMaxReqs: 10, GenerateWindowSec: 60},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_OpenAIKeyRequired(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected OPENAI_API_KEY error, got: %v", err)
	}
}

func TestValidate_OpenAITimeoutPositive(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.Timeout = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_TIMEOUT") {
		t.Fatalf("expected OPENAI_TIMEOUT error, got: %v", err)
	}
}

func TestValidate_DBPasswordRequired(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DB_PASSWORD") {
		t.Fatalf("expected DB_PASSWORD error, got: %v", err)
	}
}

func TestValidate_PatientsFileRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Patients.File = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "PATIENTS_FILE") {
		t.Fatalf("expected PATIENTS_FILE error, got: %v", err)
	}
}

func TestValidate_InvalidPorts(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.DB.Port = 99999
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected port validation errors")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("expected SERVER_PORT error in: %v", err)
	}
	if !strings.Contains(err.Error(), "DB_PORT") {
		t.Errorf("expected DB_PORT error in: %v", err)
	}
}

func TestValidate_RateLimitBounds(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.GenerateMaxReqs = 0
	cfg.RateLimit.GenerateWindowSec = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected rate limit validation errors")
	}
	if !strings.Contains(err.Error(), "RATELIMIT_GENERATE_MAX") {
		t.Errorf("expected RATELIMIT_GENERATE_MAX error in: %v", err)
	}
	if !strings.Contains(err.Error(), "RATELIMIT_GENERATE_WINDOW") {
		t.Errorf("expected RATELIMIT_GENERATE_WINDOW error in: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 0},
		DB:        DBConfig{Port: 5432},
		Redis:     RedisConfig{Port: 6379},
		RateLimit: RateLimitConfig{GenerateMaxReqs: 10, GenerateWindowSec: 60},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}
	errStr := err.Error()
	for _, substr := range []string{"OPENAI_API_KEY", "DB_PASSWORD", "PATIENTS_FILE", "SERVER_PORT"} {
		if !strings.Contains(errStr, substr) {
			t.Errorf("expected %q in error: %s", substr, errStr)
		}
	}
}
