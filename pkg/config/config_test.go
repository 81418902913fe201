package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadOverlaysEnvFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
db:
  host: db.internal
  port: 5432
  name: centrale
server:
  port: ":8080"
files:
  root: /var/lib/centrale/uploads
  base_url: /uploads
`)
	writeConfig(t, dir, "local.yaml", `
db:
  host: localhost
`)
	t.Setenv("CONFIG_ENV", "local")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DB.Host != "localhost" {
		t.Errorf("env overlay not applied: %s", cfg.DB.Host)
	}
	if cfg.DB.Port != 5432 || cfg.DB.Name != "centrale" {
		t.Errorf("base values lost: %+v", cfg.DB)
	}
	if cfg.Server.Port != ":8080" {
		t.Errorf("server port wrong: %s", cfg.Server.Port)
	}
}

func TestEnvVarsWin(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
db:
  host: db.internal
jwt:
  secret: from-file
`)
	t.Setenv("CONFIG_ENV", "production")
	t.Setenv("DB_HOST", "10.0.0.7")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DB.Host != "10.0.0.7" {
		t.Errorf("DB_HOST override not applied: %s", cfg.DB.Host)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("JWT_SECRET override not applied: %s", cfg.JWT.Secret)
	}
}

func TestLoadMissingBaseFails(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error without base.yaml")
	}
}
