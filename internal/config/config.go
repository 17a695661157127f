package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	PortEnv        = "PORT"
	RedisURLEnv    = "REDIS_URL"
	DatabaseURLEnv = "DATABASE_URL"
	CatalogPathEnv = "CATALOG_PATH"
)

// Catalog sources.
const (
	CatalogStatic   = "static"
	CatalogFS       = "fs"
	CatalogPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		URL      string `yaml:"url"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		Source string `yaml:"source"`
		Path   string `yaml:"path"`
	} `yaml:"catalog"`
	Session struct {
		PendingTTL             string `yaml:"pending_ttl"`
		StartedTTL             string `yaml:"started_ttl"`
		DefaultQuestionSeconds int    `yaml:"default_question_seconds"`
		CodeSpace              int    `yaml:"code_space"`
	} `yaml:"session"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// the service can run from environment variables alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg.withEnv(), nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg.withEnv(), nil
}

// withEnv lets the usual deployment variables override file values.
func (c Config) withEnv() Config {
	if v := os.Getenv(PortEnv); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(RedisURLEnv); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv(DatabaseURLEnv); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv(CatalogPathEnv); v != "" {
		c.Catalog.Path = v
	}
	return c
}

// CatalogSource resolves the configured source, inferring it when unset.
func (c Config) CatalogSource() string {
	switch {
	case c.Catalog.Source != "":
		return c.Catalog.Source
	case c.Catalog.Path != "":
		return CatalogFS
	case c.Postgres.URL != "":
		return CatalogPostgres
	default:
		return CatalogStatic
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// IntOr returns v, or fallback when v is not positive.
func IntOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
