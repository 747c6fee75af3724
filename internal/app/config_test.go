package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("DB_DRIVER", "sqlite")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.PostponementSpan != 6 || cfg.AutoPostponeCron != "0 3 1 7 *" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.NotifyTimeout != 5*time.Second || cfg.NotifyQueueSize != 256 || cfg.RedisChannel != "proposal-events" {
		t.Fatalf("unexpected notify defaults: %+v", cfg)
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalogue.yaml")
	body := "db_driver: sqlite\npostponement_span_years: 3\nhttp_addr: \":9090\"\ncors_origins: \"https://a.example, https://b.example\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigFileEnv, path)
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.PostponementSpan != 3 || cfg.DBDriver != "sqlite" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("environment should win over file, got %q", cfg.HTTPAddr)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins=%v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("POSTPONEMENT_SPAN_YEARS", "0")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected span error")
	}
	t.Setenv("POSTPONEMENT_SPAN_YEARS", "6")
	t.Setenv("SENDGRID_API_KEY", "SG.x")
	t.Setenv("SENDGRID_FROM_EMAIL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected sendgrid sender error")
	}
}
