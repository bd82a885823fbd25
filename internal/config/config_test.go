package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.PeopleFolder != "People" {
		t.Errorf("PeopleFolder = %q, want People", cfg.PeopleFolder)
	}
	if cfg.DefaultLayout != "hierarchical" {
		t.Errorf("DefaultLayout = %q, want hierarchical", cfg.DefaultLayout)
	}
	if cfg.DebounceMs != 300 {
		t.Errorf("DebounceMs = %d, want 300", cfg.DebounceMs)
	}
	if !cfg.ScanBlocks {
		t.Error("ScanBlocks should default to true")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ftree.yaml")
	content := `vault_dir: /vault
people_folder: Family
default_layout: force-directed
debounce_ms: 500
scan_blocks: false
dashboard_port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.VaultDir != "/vault" {
		t.Errorf("VaultDir = %q, want /vault", cfg.VaultDir)
	}
	if cfg.PeopleFolder != "Family" {
		t.Errorf("PeopleFolder = %q, want Family", cfg.PeopleFolder)
	}
	if cfg.DefaultLayout != "force-directed" {
		t.Errorf("DefaultLayout = %q, want force-directed", cfg.DefaultLayout)
	}
	if cfg.ScanBlocks {
		t.Error("ScanBlocks should be false")
	}
	if got := cfg.Debounce(); got != 500*time.Millisecond {
		t.Errorf("Debounce() = %v, want 500ms", got)
	}
	if cfg.DashboardPort != 9000 {
		t.Errorf("DashboardPort = %d, want 9000", cfg.DashboardPort)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ftree.yaml")
	if err := os.WriteFile(path, []byte("people_folder: Relatives\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PeopleFolder != "Relatives" {
		t.Errorf("PeopleFolder = %q, want Relatives", cfg.PeopleFolder)
	}
	if cfg.DebounceMs != 300 {
		t.Errorf("DebounceMs = %d, want default 300", cfg.DebounceMs)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ftree.yaml")
	if err := os.WriteFile(path, []byte("people_folder: Family\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("FTREE_PEOPLE_FOLDER", "Clan")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PeopleFolder != "Clan" {
		t.Errorf("PeopleFolder = %q, want Clan (env over file)", cfg.PeopleFolder)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"empty vault dir", func(c *Config) { c.VaultDir = "" }, true},
		{"negative debounce", func(c *Config) { c.DebounceMs = -1 }, true},
		{"port out of range", func(c *Config) { c.DashboardPort = 70000 }, true},
		{"bad layout", func(c *Config) { c.DefaultLayout = "circular" }, true},
		{"force-directed layout", func(c *Config) { c.DefaultLayout = "force-directed" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
