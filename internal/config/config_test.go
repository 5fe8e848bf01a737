package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
market:
  base_url: https://api.example.com
  app_key: key
  app_secret: secret
advisor:
  claude:
    api_key: sk-test
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Advisor.Provider != "claude" {
		t.Errorf("default provider = %q, want claude", cfg.Advisor.Provider)
	}
	if cfg.Analysis.TopN != 10 || cfg.Analysis.CollectWorkers != 10 || cfg.Analysis.AnalyzeWorkers != 3 {
		t.Errorf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
	if cfg.CacheTTL() != 6*time.Hour {
		t.Errorf("cache ttl = %s, want 6h", cfg.CacheTTL())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
market:
  base_url: https://api.example.com
  app_key: key
  app_secret: secret
`)
	t.Setenv("ADVISOR_PROVIDER", "gpt")
	t.Setenv("GPT_API_KEY", "sk-env")
	t.Setenv("ANALYSIS_DAYS_BACK", "30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Advisor.Provider != "gpt" || cfg.Advisor.GPT.APIKey != "sk-env" {
		t.Errorf("env override not applied: %+v", cfg.Advisor)
	}
	if cfg.Analysis.DaysBack != 30 {
		t.Errorf("days back = %d, want 30", cfg.Analysis.DaysBack)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	path := writeConfig(t, `
market:
  base_url: https://api.example.com
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a validation error for missing app credentials")
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	path := writeConfig(t, `
market:
  base_url: https://api.example.com
  app_key: key
  app_secret: secret
advisor:
  provider: gemini
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a validation error for an unknown provider")
	}
}
