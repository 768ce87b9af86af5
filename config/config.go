// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port     int    `validate:"required,min=1,max=65535"`
	DBPath   string `validate:"required"`
	LogLevel string `validate:"oneof=trace debug info warn error"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	// Ignore a missing .env: production sets real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port:     8090,
		DBPath:   "whereabouts.db",
		LogLevel: "info",
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
