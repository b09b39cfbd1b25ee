package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".quickfix")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("base url: got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("timeout: got %v", cfg.API.Timeout)
	}
	data, err := os.ReadFile(cfg.Path())
	if err != nil {
		t.Fatalf("config file must exist after first load: %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Fatalf("default config missing base_url: %q", string(data))
	}
}

func TestLoadReadsFileValues(t *testing.T) {
	dir := t.TempDir()
	body := "version: 1\napi:\n  base_url: https://qfh.example.com/api\n  timeout_seconds: 3\n  breaker_threshold: 7\n  breaker_cooldown_seconds: 45\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://qfh.example.com/api" {
		t.Fatalf("base url: got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("timeout: got %v", cfg.API.Timeout)
	}
	if cfg.API.BreakerThreshold != 7 {
		t.Fatalf("threshold: got %d", cfg.API.BreakerThreshold)
	}
	if cfg.API.BreakerCooldown != 45*time.Second {
		t.Fatalf("cooldown: got %v", cfg.API.BreakerCooldown)
	}
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	body := "version: 1\napi:\n  base_url: https://file.example.com/api\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvAPIURL, "https://env.example.com/api")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com/api" {
		t.Fatalf("base url: got %q", cfg.API.BaseURL)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("malformed config must fail loudly")
	}
}
