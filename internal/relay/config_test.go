package relay

import (
	"testing"
	"time"
)

// TestNewConfigDefaults verifies a fresh Config carries usable defaults.
func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Port = %q, want :8080", cfg.Port)
	}
	if cfg.MaxMessageSize != 512 {
		t.Errorf("MaxMessageSize = %d, want 512", cfg.MaxMessageSize)
	}
	if cfg.RateLimitBurst != 5 || cfg.RateLimitRefill != time.Second {
		t.Errorf("rate limit = %d/%s, want 5/1s", cfg.RateLimitBurst, cfg.RateLimitRefill)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:8080" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Errorf("TokenDuration = %s, want 24h", cfg.TokenDuration)
	}
}

// TestSanitizeRepairsInvalidValues verifies out-of-range settings fall back
// to defaults rather than producing a broken server.
func TestSanitizeRepairsInvalidValues(t *testing.T) {
	cfg := Config{
		MaxMessageSize:  -1,
		RateLimitBurst:  0,
		RateLimitRefill: -time.Second,
	}
	cfg.sanitize()

	if cfg.MaxMessageSize != 512 {
		t.Errorf("MaxMessageSize = %d, want 512", cfg.MaxMessageSize)
	}
	if cfg.RateLimitBurst != 5 {
		t.Errorf("RateLimitBurst = %d, want 5", cfg.RateLimitBurst)
	}
	if cfg.RateLimitRefill != time.Second {
		t.Errorf("RateLimitRefill = %s, want 1s", cfg.RateLimitRefill)
	}
}

// TestLoadConfigFromEnv verifies environment overrides are honored.
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9999")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != ":9999" {
		t.Errorf("Port = %q, want :9999", cfg.Port)
	}
	if cfg.MaxMessageSize != 1024 {
		t.Errorf("MaxMessageSize = %d, want 1024", cfg.MaxMessageSize)
	}
	if cfg.RateLimitBurst != 10 || cfg.RateLimitRefill != 2*time.Second {
		t.Errorf("rate limit = %d/%s, want 10/2s", cfg.RateLimitBurst, cfg.RateLimitRefill)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}
