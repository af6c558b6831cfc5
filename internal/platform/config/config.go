// Package config loads process configuration from the environment.
//
// The data service URL and publishable key are hard requirements: without
// them no authorization decision can be made, so their absence is a fatal
// startup error rather than a per-request failure.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures all startup configuration for the gate server.
type Config struct {
	Addr string `env:"SOKO_ADDR" envDefault:":8080"`
	Env  string `env:"SOKO_ENV" envDefault:"development"`

	// Upstream is the application server allowed requests are proxied to.
	// Empty serves a stub page, which is enough for local gate work.
	Upstream string `env:"SOKO_UPSTREAM_URL"`

	// DataService is the authoritative backend for user context (role,
	// business type, onboarding state). Required.
	DataService DataServiceConfig `envPrefix:"SOKO_DATA_"`

	// Session controls cookie-based session resolution.
	Session SessionConfig `envPrefix:"SOKO_SESSION_"`

	// Locales is the ordered list of supported locale tags; the first entry
	// is the default.
	Locales []string `env:"SOKO_LOCALES" envDefault:"en,sw,fr"`

	Redis    RedisConfig    `envPrefix:"SOKO_REDIS_"`
	Postgres PostgresConfig `envPrefix:"SOKO_POSTGRES_"`
	Kafka    KafkaConfig    `envPrefix:"SOKO_KAFKA_"`
}

// DataServiceConfig locates the remote data/RPC service.
type DataServiceConfig struct {
	BaseURL        string        `env:"URL,required,notEmpty"`
	PublishableKey string        `env:"PUBLISHABLE_KEY,required,notEmpty"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// SessionConfig controls session cookie issuance and validation.
type SessionConfig struct {
	SigningKey string        `env:"SIGNING_KEY,required,notEmpty"`
	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	SessionTTL time.Duration `env:"TTL" envDefault:"720h"`
}

// RedisConfig configures the session store backend. An empty URL selects
// the in-memory store (single-instance deployments and tests).
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// PostgresConfig configures the audit outbox database. Optional; when the
// URL is empty audit events stay in memory.
type PostgresConfig struct {
	URL string `env:"URL"`
}

// KafkaConfig configures the audit outbox relay. Optional; when no brokers
// are set the relay is not started.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS"`
	Topic   string   `env:"AUDIT_TOPIC" envDefault:"soko.gate.audit"`
}

// Load parses configuration from the environment. Missing required values
// return an error so main can refuse to start.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if len(cfg.Locales) == 0 {
		return Config{}, fmt.Errorf("at least one supported locale is required")
	}
	return cfg, nil
}
