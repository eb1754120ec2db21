// Package relay provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the relay service.
package relay

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
)

// RateLimitConfig defines the parameters for per-connection message rate
// limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings including security controls
// and the auxiliary account store. Fields are populated from the environment;
// zero values fall back to the defaults applied by sanitize.
type Config struct {
	Port            string        `env:"SERVER_PORT,default=:8080"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE,default=512"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=5"`
	RateLimitRefill time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`

	AccountDBPath string        `env:"ACCOUNT_DB_PATH,default=data/accounts"`
	TokenSecret   string        `env:"AUTH_TOKEN_SECRET,default=dev-only-secret-change-me"`
	TokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
}

// NewConfig returns a Config populated with default values for all settings.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.sanitize()
	return cfg
}

// LoadConfig builds a Config from environment variables, falling back to
// defaults for anything unset.
func LoadConfig() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}
	cfg.sanitize()
	return &cfg, nil
}

// sanitize applies defaults for unset or out-of-range values so a partially
// populated Config is always usable.
func (c *Config) sanitize() {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"http://localhost:8080"}
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 512
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 5
	}
	if c.RateLimitRefill <= 0 {
		c.RateLimitRefill = time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AccountDBPath == "" {
		c.AccountDBPath = "data/accounts"
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 24 * time.Hour
	}
}

// RateLimit bundles the rate-limiting settings for client construction.
func (c *Config) RateLimit() RateLimitConfig {
	return RateLimitConfig{
		Burst:          c.RateLimitBurst,
		RefillInterval: c.RateLimitRefill,
	}
}
