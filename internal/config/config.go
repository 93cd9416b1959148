package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

const DefaultParticipantID = "provider-automotors-oem"

type Config struct {
	Participant ParticipantConfig `yaml:"participant"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Audit       AuditConfig       `yaml:"audit"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ParticipantConfig identifies this connector in the dataspace.
type ParticipantConfig struct {
	// ID is reported as provider id in negotiations and agreements.
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// CatalogConfig holds configuration for the asset catalog.
type CatalogConfig struct {
	// Path is the catalog file to serve.
	// Leaving this empty serves the built-in demo catalog.
	Path string `yaml:"path"`

	// ReloadInterval re-reads the catalog periodically, e.g. "5m". Zero disables it.
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	Type     string `yaml:"type"` // e.g., "file", "memory"
	Capacity int    `yaml:"capacity"`
}

// MetricsConfig holds configuration for the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Participant: ParticipantConfig{
			ID:   DefaultParticipantID,
			Name: "AutoMotors OEM",
		},
		Audit: AuditConfig{
			Enabled: true,
			Type:    "memory",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
// Relative paths inside the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	dir := filepath.Dir(path)
	cfg.Catalog.Path = resolve(dir, cfg.Catalog.Path)
	cfg.Audit.Path = resolve(dir, cfg.Audit.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return cfg, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (c *Config) Validate() error {
	if c.Participant.ID == "" {
		return fmt.Errorf("participant.id is required")
	}

	if c.Catalog.ReloadInterval < 0 {
		return fmt.Errorf("catalog.reload_interval must not be negative")
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "", "memory":
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit.path is required for audit type 'file'")
			}
		default:
			return fmt.Errorf("unknown audit type '%s'", c.Audit.Type)
		}
		if c.Audit.Capacity < 0 {
			return fmt.Errorf("audit.capacity must not be negative")
		}
	}

	return nil
}
