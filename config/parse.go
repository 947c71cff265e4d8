package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

func Parse() (Config, error) {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse cfg: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreMongo:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Auth.JWTSecret == "" && c.App.DevUser == "" {
		return errors.New("AUTH_JWT_SECRET is required unless APP_DEV_USER is set")
	}
	if c.IsProduction() && c.App.DevUser != "" {
		return errors.New("APP_DEV_USER cannot be used in production")
	}
	return nil
}
