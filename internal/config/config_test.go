package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RateLimit.Identity.MaxCount != 3 || cfg.RateLimit.Identity.Window() != time.Minute {
		t.Errorf("identity limiter = %+v, expected 3 per 60s", cfg.RateLimit.Identity)
	}
	if cfg.RateLimit.Global.MaxCount != 10 || cfg.RateLimit.Global.Window() != time.Minute {
		t.Errorf("global limiter = %+v, expected 10 per 60s", cfg.RateLimit.Global)
	}
	if cfg.OpenAI.Timeout() != 45*time.Second {
		t.Errorf("generation timeout = %v, expected 45s", cfg.OpenAI.Timeout())
	}
}

func TestLoad_YAMLWithPartialLimiter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9000"
rate_limit:
  backend: redis
  identity:
    window_ms: 30000
    max_count: 5
openai:
  model: gpt-4o
  timeout_seconds: 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %q, expected 9000", cfg.Server.Port)
	}
	if cfg.RateLimit.Backend != "redis" {
		t.Errorf("Backend = %q, expected redis", cfg.RateLimit.Backend)
	}
	if cfg.RateLimit.Identity.MaxCount != 5 || cfg.RateLimit.Identity.WindowMs != 30000 {
		t.Errorf("identity limiter = %+v", cfg.RateLimit.Identity)
	}
	// unspecified sections keep their defaults
	if cfg.RateLimit.Global.MaxCount != 10 {
		t.Errorf("global MaxCount = %d, expected default 10", cfg.RateLimit.Global.MaxCount)
	}
	if cfg.OpenAI.Model != "gpt-4o" || cfg.OpenAI.Timeout() != 20*time.Second {
		t.Errorf("openai = %+v", cfg.OpenAI)
	}
	if cfg.OpenAI.MaxTokens != 4000 {
		t.Errorf("MaxTokens = %d, expected default 4000", cfg.OpenAI.MaxTokens)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-override")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("GENERATION_TIMEOUT", "30")
	t.Setenv("REDIS_URL", "redis://:secret@cache:6380/2")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-test-override" {
		t.Errorf("APIKey = %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Provider != "anthropic" {
		t.Errorf("Provider = %q", cfg.OpenAI.Provider)
	}
	if cfg.OpenAI.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d", cfg.OpenAI.TimeoutSeconds)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "cache:6380" || cfg.Redis.Password != "secret" || cfg.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_MODEL=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_MODEL", "")
	os.Unsetenv("OPENAI_MODEL")

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OpenAI.Model != "from-dotenv" {
		t.Errorf("Model = %q, expected value from .env", cfg.OpenAI.Model)
	}
}
