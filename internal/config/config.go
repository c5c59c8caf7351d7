// Package config loads service configuration from a YAML file with
// environment-variable overrides for credentials.
package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Config is the full service configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	LLM      LLM      `yaml:"llm"`
	Archive  Archive  `yaml:"archive"`
	Log      Log      `yaml:"log"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr string `yaml:"addr"`
}

// Database configures the metadata source connection.
type Database struct {
	DSN        string `yaml:"dsn"`
	SchemaName string `yaml:"schema"`
	MaxConns   int32  `yaml:"max_conns"`
	MinConns   int32  `yaml:"min_conns"`
}

// LLM configures the language-model client and answer language.
type LLM struct {
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
	Language  string `yaml:"language"` // english (default) or ukrainian
}

// Archive configures the optional run-record store.
type Archive struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when a field is absent.
func Default() *Config {
	return &Config{
		Server: Server{Addr: ":8080"},
		Database: Database{
			SchemaName: "public",
			MaxConns:   5,
			MinConns:   1,
		},
		LLM: LLM{
			Model:     "claude-3-5-haiku-20241022",
			MaxTokens: 1024,
			Language:  "english",
		},
		Log: Log{Level: "info", Format: "json"},
	}
}

// Load reads path (when non-empty) over the defaults, applies environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays credentials from the environment so secrets can stay
// out of the config file.
func (c *Config) applyEnv() {
	if dsn := os.Getenv("ASKDB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if key := os.Getenv("ASKDB_ARCHIVE_ACCESS_KEY"); key != "" {
		c.Archive.AccessKey = key
	}
	if key := os.Getenv("ASKDB_ARCHIVE_SECRET_KEY"); key != "" {
		c.Archive.SecretKey = key
	}
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (or set ASKDB_DSN)")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	switch c.LLM.Language {
	case "english", "ukrainian":
	default:
		return fmt.Errorf("llm.language must be english or ukrainian, got %q", c.LLM.Language)
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket is required when archive is enabled")
	}
	return nil
}
