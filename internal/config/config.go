// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes "2h" / "5m" strings from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard-library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the server configuration. Every field has a usable default so
// the binary runs without a config file.
type Config struct {
	Addr            string   `yaml:"addr"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes"`
	SessionTTL      Duration `yaml:"session_ttl"`
	JanitorInterval Duration `yaml:"janitor_interval"`
	Debug           bool     `yaml:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:            ":8001",
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		MaxUploadBytes:  100 * 1024 * 1024,
		SessionTTL:      Duration(2 * time.Hour),
		JanitorInterval: Duration(5 * time.Minute),
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = Default().Addr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = Default().MaxUploadBytes
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = Default().SessionTTL
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = Default().JanitorInterval
	}
	return cfg, nil
}
