package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, loaded from the environment (with an
// optional .env file, as in local development).
type Config struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`

	// MasterDB is the dealer master database; event databases are resolved
	// per run through the registry.
	MasterDB string `env:"DB_PDV" envDefault:"dexp_pdv"`

	RegistryPath string `env:"EVENTS_FILE" envDefault:"config/eventos_db.csv"`
	OutputDir    string `env:"OUTPUT_DIR" envDefault:"output/csv"`
	TrackingDB   string `env:"TRACKING_DB" envDefault:"cockpit.db"`
	Port         string `env:"PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env if present and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DSN builds the MySQL connection string. No default schema is set: the
// system spans one database per event plus the dealer master, and queries
// qualify every table explicitly.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/", c.DBUser, c.DBPassword, c.DBHost, c.DBPort)
}

// SlogLevel maps the configured log level string to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
