package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("HELIO_TEST_KEY", "secret")

	tests := []struct {
		in   string
		want string
	}{
		{"api_key: ${HELIO_TEST_KEY}", "api_key: secret"},
		{"api_key: ${HELIO_TEST_MISSING}", "api_key: "},
		{"api_key: ${HELIO_TEST_MISSING:-fallback}", "api_key: fallback"},
		{"api_key: ${HELIO_TEST_KEY:-fallback}", "api_key: secret"},
		{"plain: value", "plain: value"},
	}
	for _, tt := range tests {
		if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Backend.BaseURL != "http://localhost:8080" {
		t.Errorf("backend base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 0 {
		t.Errorf("write timeout = %d, want 0 (streaming)", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Usage.DailyTTLHours != 48 || cfg.Usage.MonthlyTTLDays != 62 {
		t.Errorf("usage ttls = %d/%d", cfg.Usage.DailyTTLHours, cfg.Usage.MonthlyTTLDays)
	}
	if cfg.Answer.Model == "" {
		t.Error("answer model default missing")
	}
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}

	cfg.ApplyDefaults()
	cfg.HTTP.Port = 8080
	cfg.Usage.DailySearchLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative limit")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
backend:
  base_url: http://sim:9090
  api_key: ${HELIO_TEST_API_KEY:-dev-key}
usage:
  daily_search_limit: 100
logging:
  level: debug
`
	if err := os.WriteFile(filepath.Join(cfgDir, "test.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "http://sim:9090" {
		t.Errorf("base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.APIKey != "dev-key" {
		t.Errorf("api key = %q, want expanded default", cfg.Backend.APIKey)
	}
	if cfg.Usage.DailySearchLimit != 100 {
		t.Errorf("daily limit = %d", cfg.Usage.DailySearchLimit)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("port default not applied: %d", cfg.HTTP.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if _, err := Load("nope"); err == nil {
		t.Error("expected error for missing config file")
	}
}
