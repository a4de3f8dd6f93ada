package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")
	configContent := []byte(`
policy_path: "/opt/policy.yaml"
defaults:
  path:
    default: "keepsafe"
  bounding: "ignore"
`)
	if err := os.WriteFile(configPath, configContent, 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv("RAR_DEFAULTS_BOUNDING", "strict")
	defer os.Unsetenv("RAR_DEFAULTS_BOUNDING")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.PolicyPath != "/opt/policy.yaml" {
		t.Errorf("expected policy_path from file, got %s", cfg.PolicyPath)
	}
	if cfg.Defaults.Bounding != "strict" {
		t.Errorf("expected env var to override file value, got %s", cfg.Defaults.Bounding)
	}
}

func TestDefaultValues(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.PolicyPath != DefaultPolicyPath {
		t.Errorf("expected default policy path %s, got %s", DefaultPolicyPath, cfg.PolicyPath)
	}
	if cfg.Defaults.Bounding != "strict" {
		t.Errorf("expected default bounding strict, got %s", cfg.Defaults.Bounding)
	}
	if cfg.Defaults.Root != "user" {
		t.Errorf("expected default root user, got %s", cfg.Defaults.Root)
	}
	if len(cfg.Defaults.Path.Add) == 0 {
		t.Errorf("expected a non-empty default PATH add list")
	}
}

func TestConfigFileValidation(t *testing.T) {
	_, err := Load("nonexistent.yml")
	if err == nil {
		t.Error("expected error for non-existent config file")
	}

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid/config.yml")
	_, err = Load(configPath)
	if err == nil {
		t.Error("expected error for invalid config file path")
	}
}

func TestLoadConfigWithEnvVarPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "env_config.yml")
	configContent := []byte(`debug: true
policy_path: "/opt/env-policy.yaml"`)
	if err := os.WriteFile(configPath, configContent, 0644); err != nil {
		t.Fatal(err)
	}

	originalEnvVal := os.Getenv(RarConfigPathEnvVar)
	os.Setenv(RarConfigPathEnvVar, configPath)
	t.Cleanup(func() {
		os.Setenv(RarConfigPathEnvVar, originalEnvVal)
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v, wantErr nil", err)
	}
	if !cfg.Debug {
		t.Errorf("cfg.Debug = %v, want true", cfg.Debug)
	}
	if cfg.PolicyPath != "/opt/env-policy.yaml" {
		t.Errorf("cfg.PolicyPath = %s, want /opt/env-policy.yaml", cfg.PolicyPath)
	}
}

func TestLoadConfigWithEnvVarPathNonExistent(t *testing.T) {
	nonExistentPath := filepath.Join(t.TempDir(), "non_existent_config.yml")
	originalEnvVal := os.Getenv(RarConfigPathEnvVar)
	os.Setenv(RarConfigPathEnvVar, nonExistentPath)
	t.Cleanup(func() {
		os.Setenv(RarConfigPathEnvVar, originalEnvVal)
	})

	_, err := Load("")
	if err == nil {
		t.Fatalf("Load() error = nil, wantErr non-nil")
	}
	expectedErrorMsg := "config file specified in " + RarConfigPathEnvVar + " not found: " + nonExistentPath
	if !strings.Contains(err.Error(), expectedErrorMsg) {
		t.Errorf("Load() error = %q, want to contain %q", err.Error(), expectedErrorMsg)
	}
}

func TestLoadConfigWithAlternativeYamlName(t *testing.T) {
	tmpDir := t.TempDir()
	configYamlPath := filepath.Join(tmpDir, "config.yaml")
	configContent := []byte(`debug: false
policy_path: "/opt/alt-policy.yaml"`)
	if err := os.WriteFile(configYamlPath, configContent, 0644); err != nil {
		t.Fatal(err)
	}

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatal(err)
		}
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v, wantErr nil", err)
	}
	if cfg.Debug {
		t.Errorf("cfg.Debug = %v, want false", cfg.Debug)
	}
	if cfg.PolicyPath != "/opt/alt-policy.yaml" {
		t.Errorf("cfg.PolicyPath = %s, want /opt/alt-policy.yaml", cfg.PolicyPath)
	}
}

func TestLoadConfigMalformedYaml(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "malformed_config.yml")
	configContent := []byte(`
policy_path: "unterminated
debug: true
`)
	if err := os.WriteFile(configPath, configContent, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatalf("Load() error = nil, wantErr non-nil for malformed YAML")
	}
	if !strings.Contains(err.Error(), "While parsing config") && !strings.Contains(err.Error(), "yaml") {
		t.Errorf("Load() error = %q, expected error indicating YAML parsing issue", err.Error())
	}
}
