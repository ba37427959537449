package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Paths.HardlinkDir != "/data" {
		t.Errorf("Paths.HardlinkDir = %q, want /data", cfg.Paths.HardlinkDir)
	}
	if cfg.Tracker.BaseURL != "https://la-cale.space" || cfg.Tracker.RequestsPerMin != 30 {
		t.Errorf("Tracker = %+v", cfg.Tracker)
	}
	if cfg.TMDB.Language != "fr-FR" {
		t.Errorf("TMDB.Language = %q", cfg.TMDB.Language)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
paths:
  hardlink_dir: /mnt/links
tracker:
  api_key: from-file
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BUTIN_TRACKER_API_KEY", "from-env")
	t.Setenv("BUTIN_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Paths.HardlinkDir != "/mnt/links" {
		t.Errorf("HardlinkDir = %q", cfg.Paths.HardlinkDir)
	}
	if cfg.Tracker.APIKey != "from-env" {
		t.Errorf("Tracker.APIKey = %q, want env override", cfg.Tracker.APIKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
	}
}

func TestAddressAndTemplateDir(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8000}
	if s.Address() != "0.0.0.0:8000" {
		t.Errorf("Address() = %q", s.Address())
	}
	p := PathsConfig{DataDir: "/config"}
	if p.TemplateDir() != filepath.Join("/config", "templates") {
		t.Errorf("TemplateDir() = %q", p.TemplateDir())
	}
}
