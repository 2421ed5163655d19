package config

import (
	"os"
	"path/filepath"
	"testing"

	"tasklist/internal/validation"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path == "" {
		t.Error("default database path is empty")
	}
	if cfg.Validation.MinLength != validation.DefaultMinLength ||
		cfg.Validation.MaxLength != validation.DefaultMaxLength {
		t.Errorf("unexpected default limits: %+v", cfg.Validation)
	}
	if len(cfg.Validation.Blocklist) == 0 {
		t.Error("default blocklist is empty")
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not written on first run: %v", err)
	}

	// Second load reads the written file and agrees with the first.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again.Database.Path != cfg.Database.Path {
		t.Errorf("config changed across loads: %q != %q", again.Database.Path, cfg.Database.Path)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database:\n  path: /tmp/custom.db\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("database path not applied: %q", cfg.Database.Path)
	}
	if cfg.Validation.MaxLength != validation.DefaultMaxLength {
		t.Errorf("unset validation fields should keep defaults, got %d", cfg.Validation.MaxLength)
	}
}

func TestLoad_RejectsBadLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "validation:\n  min_length: 50\n  max_length: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for max_length < min_length, got nil")
	}
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("::not yaml::\n\t"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml, got nil")
	}
}

func TestValidator_UsesConfiguredRules(t *testing.T) {
	cfg := Default()
	cfg.Validation.MinLength = 5
	cfg.Validation.Blocklist = []string{"blocked"}

	v := cfg.Validator()
	if result := v.Validate("abcd"); result.Reason != validation.ReasonTooShort {
		t.Errorf("configured min length not applied: %+v", result)
	}
	if result := v.Validate("BLOCKED"); result.Reason != validation.ReasonDisallowedContent {
		t.Errorf("configured blocklist not applied: %+v", result)
	}
}
