package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		MaxUploadMB  int64         `yaml:"max_upload_mb"`
	} `yaml:"server"`

	AI struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
		// APIKey is only ever filled from the environment.
		APIKey  string        `yaml:"-"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	Session struct {
		TTL            time.Duration `yaml:"ttl"`
		HistoryDisplay int           `yaml:"history_display"`
	} `yaml:"session"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Log struct {
		Env string `yaml:"env"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 5 * time.Minute
	c.Server.MaxUploadMB = 20
	c.AI.Provider = ProviderGemini
	c.Session.TTL = 2 * time.Hour
	c.Session.HistoryDisplay = 5
	c.RateLimit.RPS = 1
	c.RateLimit.Burst = 5
	c.CORS.AllowedOrigins = []string{"*"}
	c.Log.Env = "production"
	return &c
}

// Load baca file config.yaml, lalu override dari environment.
// A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	// .env opsional
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("ARCHSCOPE_AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv("ARCHSCOPE_AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("ARCHSCOPE_AI_BASE_URL"); v != "" {
		c.AI.BaseURL = v
	}
	if v := os.Getenv("ARCHSCOPE_LOG_ENV"); v != "" {
		c.Log.Env = v
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))

	c.AI.APIKey = os.Getenv("ARCHSCOPE_AI_API_KEY")
	if c.AI.APIKey == "" {
		switch c.AI.Provider {
		case ProviderGemini:
			c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
		case ProviderOpenAI:
			c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown ai provider %q (allowed: %s, %s)", c.AI.Provider, ProviderGemini, ProviderOpenAI)
	}
	if c.AI.APIKey == "" {
		return errors.New("ai api key missing: set ARCHSCOPE_AI_API_KEY")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max_upload_mb %d", c.Server.MaxUploadMB)
	}
	return nil
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
