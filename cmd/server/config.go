package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skufu/saviour/internal/recommend"
)

const (
	defaultLLMBaseURL = "https://models.inference.ai.azure.com"
	defaultLLMModel   = "gpt-4o-mini"
)

type Config struct {
	Port       string
	GinMode    string
	Env        string
	StaticRoot string
	LLM        recommend.Config
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "release"),
		Env:        getEnv("APP_ENV", "production"),
		StaticRoot: os.Getenv("STATIC_ROOT"),
		LLM: recommend.Config{
			BaseURL: getEnv("LLM_BASE_URL", defaultLLMBaseURL),
			Model:   getEnv("LLM_MODEL", defaultLLMModel),
			Token:   getEnv("GITHUB_TOKEN", os.Getenv("OPENAI_API_KEY")),
			Timeout: recommend.DefaultTimeout,
		},
	}

	if raw := strings.TrimSpace(os.Getenv("LLM_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", raw)
		}
		cfg.LLM.Timeout = d
	}

	if cfg.StaticRoot == "" {
		cfg.StaticRoot = detectStaticRoot()
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
