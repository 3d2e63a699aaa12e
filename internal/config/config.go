// Package config resolves runtime settings from the process environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	ModelsDir       string
	OnnxRuntimeLib  string
	ModelInputName  string
	ModelOutputName string

	ChatProvider string
	ChatModel    string
	ChatTimeout  time.Duration

	EnableDB    bool
	DatabaseURL string
}

// Load reads .env (if present) and the environment. Defaults mirror a local development setup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MODELS_DIR", "")
	v.SetDefault("ONNXRUNTIME_LIB", "")
	v.SetDefault("MODEL_INPUT_NAME", "float_input")
	v.SetDefault("MODEL_OUTPUT_NAME", "output_label")
	v.SetDefault("CHAT_PROVIDER", ProviderOpenAI)
	v.SetDefault("CHAT_MODEL", "")
	v.SetDefault("CHAT_TIMEOUT", "30s")
	v.SetDefault("ENABLE_DB", false)
	v.SetDefault("DATABASE_URL", "")

	cfg := &Config{
		Port:            v.GetString("PORT"),
		GinMode:         v.GetString("GIN_MODE"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		ModelsDir:       v.GetString("MODELS_DIR"),
		OnnxRuntimeLib:  v.GetString("ONNXRUNTIME_LIB"),
		ModelInputName:  v.GetString("MODEL_INPUT_NAME"),
		ModelOutputName: v.GetString("MODEL_OUTPUT_NAME"),
		ChatProvider:    strings.ToLower(strings.TrimSpace(v.GetString("CHAT_PROVIDER"))),
		ChatModel:       v.GetString("CHAT_MODEL"),
		ChatTimeout:     v.GetDuration("CHAT_TIMEOUT"),
		EnableDB:        v.GetBool("ENABLE_DB"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	switch cfg.ChatProvider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return nil, fmt.Errorf("unsupported CHAT_PROVIDER %q", cfg.ChatProvider)
	}

	if cfg.ChatTimeout < 0 {
		return nil, fmt.Errorf("CHAT_TIMEOUT must not be negative")
	}

	return cfg, nil
}

// CredentialEnv names the environment variable holding the chat provider's API key.
func (c *Config) CredentialEnv() string {
	if c.ChatProvider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}
