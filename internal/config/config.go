// internal/config/config.go
//
// Process configuration, read from the environment.
//
// A .env file in the working directory is loaded first (if present) so local
// development does not need exported variables; real environment variables
// always win over .env values.
//
// Environment variables:
//   PORT             HTTP port (default 5175)
//   LOG_LEVEL        zerolog level: trace|debug|info|warn|error (default info)
//   LOG_FORMAT       console|json (default console)
//   IMAGE_DIR        folder of quiz images; empty uses the embedded demo set
//   SESSION_STORE    memory|sqlite (default memory)
//   DB_PATH          SQLite file for SESSION_STORE=sqlite (default ./data/spellquiz.db)
//   SESSION_SECRET   key material for signing session cookies
//   COOKIE_NAME      session cookie name (default spellquiz_session)
//   COOKIE_SECURE    mark the cookie Secure (default false)
//   SESSION_TTL      idle sessions older than this are pruned (default 720h)
//   REQUEST_TIMEOUT  per-request handler timeout (default 10s)
//   CORS_ORIGIN      allowed browser origin for /api (default none)
//   ADVANCE_DELAY    desktop: pause before the next round (default 1.5s)

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const devSecret = "dev_secret_change_me"

// Config holds every tunable of the server and desktop hosts.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"console"`
	ImageDir       string        `env:"IMAGE_DIR"`
	SessionStore   string        `env:"SESSION_STORE" envDefault:"memory"`
	DBPath         string        `env:"DB_PATH" envDefault:"./data/spellquiz.db"`
	SessionSecret  string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	CookieName     string        `env:"COOKIE_NAME" envDefault:"spellquiz_session"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	CORSOrigin     string        `env:"CORS_ORIGIN"`
	AdvanceDelay   time.Duration `env:"ADVANCE_DELAY" envDefault:"1.5s"`
}

// Load reads .env (if any) and the environment into a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the hosts cannot run with.
func (c *Config) Validate() error {
	switch c.SessionStore {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("config: SESSION_STORE must be memory or sqlite, got %q", c.SessionStore)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	if c.SessionSecret == "" {
		return errors.New("config: SESSION_SECRET must not be empty")
	}
	if c.AdvanceDelay < 0 {
		return errors.New("config: ADVANCE_DELAY must not be negative")
	}
	return nil
}

// DevSecret reports whether the built-in development secret is in use.
func (c *Config) DevSecret() bool { return c.SessionSecret == devSecret }

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }
