package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rootasrole/rar/internal/policy"
)

const minimalDoc = `
version: "1.0"
roles:
  - name: r_root
    actors:
      - type: user
        id: 0
    tasks:
      - name: t_root
        commands:
          default: all
`

func TestLoadParsesMinimalDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(minimalDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Roles) != 1 || cfg.Roles[0].Name != "r_root" {
		t.Fatalf("unexpected roles: %+v", cfg.Roles)
	}
	if cfg.Roles[0].Tasks[0].Commands.Default != policy.SetBehaviorAll {
		t.Fatalf("expected default=all, got %v", cfg.Roles[0].Tasks[0].Commands.Default)
	}
}

func TestValidateRejectsDuplicateRoleNames(t *testing.T) {
	cfg := &policy.Config{Roles: []*policy.Role{
		{Name: "dup"},
		{Name: "dup"},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for duplicate role names")
	}
}

func TestValidateRejectsDuplicateTaskNames(t *testing.T) {
	cfg := &policy.Config{Roles: []*policy.Role{
		{Name: "r", Tasks: []*policy.Task{
			{Name: "t", Explicit: true},
			{Name: "t", Explicit: true},
		}},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for duplicate task names")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")

	cfg := &policy.Config{
		Version: "1.0",
		Roles: []*policy.Role{
			{
				Name: "r_root",
				Tasks: []*policy.Task{
					{Name: "t_root", Explicit: true, Commands: policy.CommandList{Default: policy.SetBehaviorAll}},
				},
			},
		},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded.Roles) != 1 || loaded.Roles[0].Name != "r_root" {
		t.Fatalf("unexpected roundtrip: %+v", loaded.Roles)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/policy.yaml")
	if err == nil {
		t.Fatal("expected an error for a missing policy file")
	}
}
