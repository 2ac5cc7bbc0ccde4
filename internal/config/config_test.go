package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Adapters) == 0 {
		t.Error("expected adapters to be populated")
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected backend 'sqlite', got %q", cfg.Store.Backend)
	}

	if cfg.Collect.MinDays != 21 {
		t.Errorf("expected min_days 21, got %d", cfg.Collect.MinDays)
	}

	if cfg.Extraction.Provider != "perplexity" {
		t.Errorf("expected provider 'perplexity', got %q", cfg.Extraction.Provider)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
store:
  backend: xlsx
  path: /tmp/editais.xlsx
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Store.Backend != "xlsx" {
		t.Errorf("expected backend 'xlsx', got %q", cfg.Store.Backend)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults survive partial configs.
	if cfg.Collect.MinDays != 21 {
		t.Errorf("expected default min_days 21, got %d", cfg.Collect.MinDays)
	}
	if cfg.Extraction.MaxTokens != 4000 {
		t.Errorf("expected default max_tokens 4000, got %d", cfg.Extraction.MaxTokens)
	}
}

func TestStorePathDefaults(t *testing.T) {
	cfg, _ := parse([]byte("store:\n  backend: sqlite\n"))
	if filepath.Base(cfg.StorePath()) != "grantwatch.db" {
		t.Errorf("unexpected sqlite store path: %s", cfg.StorePath())
	}

	cfg, _ = parse([]byte("store:\n  backend: xlsx\n"))
	if filepath.Base(cfg.StorePath()) != "grantwatch.xlsx" {
		t.Errorf("unexpected xlsx store path: %s", cfg.StorePath())
	}

	cfg, _ = parse([]byte("store:\n  backend: sqlite\n  path: /tmp/x.db\n"))
	if cfg.StorePath() != "/tmp/x.db" {
		t.Errorf("expected explicit path to win, got %s", cfg.StorePath())
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 1234\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	resolved, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved != path {
		t.Errorf("expected %s, got %s", path, resolved)
	}
}

func TestResolveConfigPathMissing(t *testing.T) {
	if _, err := ResolveConfigPath("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("collect:\n  min_days: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Collect.MinDays != 7 {
		t.Errorf("expected min_days 7, got %d", cfg.Collect.MinDays)
	}
}
