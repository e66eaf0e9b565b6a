package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Breaker   BreakerConfig   `yaml:"breaker"`
	Redis     RedisConfig     `yaml:"redis"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

// OpenAIConfig describes the default generative model endpoint. A default
// LLM config stored in the database takes precedence at call time.
type OpenAIConfig struct {
	Provider       string  `yaml:"provider"` // openai, azure, anthropic, gemini, ollama
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the per-request generation timeout.
func (c OpenAIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// WindowConfig configures one sliding-window limiter instance.
type WindowConfig struct {
	WindowMs int64 `yaml:"window_ms"`
	MaxCount int   `yaml:"max_count"`
}

// Window returns the window length as a duration.
func (w WindowConfig) Window() time.Duration {
	return time.Duration(w.WindowMs) * time.Millisecond
}

type RateLimitConfig struct {
	Backend  string       `yaml:"backend"` // memory, redis
	Identity WindowConfig `yaml:"identity"`
	Global   WindowConfig `yaml:"global"`
	HTTP     HTTPLimit    `yaml:"http"`
}

// HTTPLimit is the coarse per-IP flood guard applied to the whole API.
type HTTPLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BreakerConfig struct {
	Enabled     bool `yaml:"enabled"`
	MaxFailures int  `yaml:"max_failures"`
	OpenSeconds int  `yaml:"open_seconds"`
}

// RedisConfig for the optional distributed limiter and async task queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var GlobalConfig *Config

// Load reads the YAML config (defaults when the file is absent), then applies
// .env and process environment overrides.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load(filepath.Join(filepath.Dir(configPath), ".env"))

	cfg.overrideFromEnv()
	cfg.applyFloors()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "marketing.db",
		},
		JWT: JWTConfig{
			Secret:     "marketing-agents-secret-change-in-production",
			ExpireHour: 24,
		},
		OpenAI: OpenAIConfig{
			Provider:       "openai",
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			MaxTokens:      4000,
			Temperature:    0.7,
			TimeoutSeconds: 45,
		},
		RateLimit: RateLimitConfig{
			Backend:  "memory",
			Identity: WindowConfig{WindowMs: 60_000, MaxCount: 3},
			Global:   WindowConfig{WindowMs: 60_000, MaxCount: 10},
			HTTP:     HTTPLimit{RPS: 10, Burst: 20},
		},
		Breaker: BreakerConfig{
			Enabled:     true,
			MaxFailures: 5,
			OpenSeconds: 30,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Log: LogConfig{Level: "info"},
	}
}

// applyFloors replaces unusable zero values left by a partial YAML file.
func (c *Config) applyFloors() {
	def := DefaultConfig()
	if c.RateLimit.Identity.WindowMs <= 0 || c.RateLimit.Identity.MaxCount <= 0 {
		c.RateLimit.Identity = def.RateLimit.Identity
	}
	if c.RateLimit.Global.WindowMs <= 0 || c.RateLimit.Global.MaxCount <= 0 {
		c.RateLimit.Global = def.RateLimit.Global
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = def.OpenAI.MaxTokens
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.OpenAI.Provider = provider
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		c.OpenAI.BaseURL = baseURL
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		c.OpenAI.APIKey = apiKey
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		c.OpenAI.Model = model
	}
	if timeout := os.Getenv("GENERATION_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.OpenAI.TimeoutSeconds = secs
		}
	}
	if backend := os.Getenv("RATE_LIMIT_BACKEND"); backend != "" {
		c.RateLimit.Backend = backend
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}
