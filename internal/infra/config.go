package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"scorekeep"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"scorekeep"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"scorekeep"`

	// Listeners
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":5555"`
	HealthAddr string `env:"HEALTH_ADDR" envDefault:":8090"`

	// Kafka audit stream
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	AuditTopic   string `env:"AUDIT_TOPIC" envDefault:"scorekeep.admin-actions"`

	// Bootstrap
	CreateDefaultAdmin bool `env:"CREATE_DEFAULT_ADMIN" envDefault:"true"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
