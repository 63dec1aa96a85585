// Package config loads process configuration from EXTFRAME_ environment
// variables. Game configuration is INI text and lives in pkg/ini.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Blob selects and configures the save blob backend.
type Blob struct {
	Driver string `env:"DRIVER" envDefault:"fs"`
	FSRoot string `env:"FS_ROOT" envDefault:"./savedata"`
	S3     S3     `envPrefix:"S3_"`
}

// S3 configures an S3 or MinIO bucket.
type S3 struct {
	Bucket    string `env:"BUCKET"`
	Region    string `env:"REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"ENDPOINT"`
	PathStyle bool   `env:"PATH_STYLE"`
	AccessKey string `env:"ACCESS_KEY_ID"`
	SecretKey string `env:"SECRET_ACCESS_KEY"`
}

// Catalog selects the save catalog backend.
type Catalog struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
	DSN    string `env:"DSN"`
}

// Config is the full process configuration.
type Config struct {
	Blob     Blob    `envPrefix:"BLOB_"`
	Catalog  Catalog `envPrefix:"CATALOG_"`
	Codepage string  `env:"INI_CODEPAGE" envDefault:"windows-1252"`
	// Namespace prefixes exported metric names.
	Namespace string `env:"METRICS_NAMESPACE" envDefault:"extframe"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Prefix is the environment variable prefix for every Config field.
const Prefix = "EXTFRAME_"

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Blob.Driver = strings.ToLower(strings.TrimSpace(cfg.Blob.Driver))
	cfg.Catalog.Driver = strings.ToLower(strings.TrimSpace(cfg.Catalog.Driver))
	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
