// Package config loads engine configuration from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all engine configuration.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"local"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// The two physically separate stores.
	Topology StoreConfig `envPrefix:"TOPOLOGY_"`
	Property StoreConfig `envPrefix:"PROPERTY_"`
}

// StoreConfig holds SQLite settings for one store.
type StoreConfig struct {
	Path       string `env:"DB_PATH" envDefault:""`
	QueryDebug bool   `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the SQLite connection string. An empty path falls back to a
// process-private in-memory database named after the store, so the topology
// and property stores stay physically separate even without configured paths.
func (s *StoreConfig) DSN(name string) string {
	if s.Path == "" {
		return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	}
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", s.Path)
}

// NewConfig loads configuration from the environment, reading .env first when
// present (missing .env is not an error).
func NewConfig(log *slog.Logger) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	log.Debug("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("topology_db", cfg.Topology.Path),
		slog.String("property_db", cfg.Property.Path),
	)

	return cfg, nil
}
