package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tasklist/internal/validation"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Validation ValidationConfig `yaml:"validation"`
}

type DatabaseConfig struct {
	Path      string `yaml:"path"`
	BackupDir string `yaml:"backup_dir"`
}

type ValidationConfig struct {
	MinLength int      `yaml:"min_length"`
	MaxLength int      `yaml:"max_length"`
	Blocklist []string `yaml:"blocklist"`
}

func Default() *Config {
	dir := appDir()
	return &Config{
		Database: DatabaseConfig{
			Path:      filepath.Join(dir, "personal_task_manager.db"),
			BackupDir: filepath.Join(dir, "backups"),
		},
		Validation: ValidationConfig{
			MinLength: validation.DefaultMinLength,
			MaxLength: validation.DefaultMaxLength,
			Blocklist: validation.DefaultBlocklist(),
		},
	}
}

func DefaultPath() string {
	return filepath.Join(appDir(), "config.yaml")
}

func appDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".tasklist")
}

// Load reads the config file at path, writing the default config there on
// first run. Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Validation.MinLength < 1 {
		return fmt.Errorf("validation.min_length must be at least 1, got %d", c.Validation.MinLength)
	}
	if c.Validation.MaxLength < c.Validation.MinLength {
		return fmt.Errorf("validation.max_length %d is below min_length %d",
			c.Validation.MaxLength, c.Validation.MinLength)
	}
	return nil
}

// Validator builds a validator from the configured rules.
func (c *Config) Validator() *validation.Validator {
	return &validation.Validator{
		MinLength: c.Validation.MinLength,
		MaxLength: c.Validation.MaxLength,
		Blocklist: c.Validation.Blocklist,
	}
}
