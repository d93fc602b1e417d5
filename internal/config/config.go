package config

import (
	"fmt"
	"os"
)

// Config holds the configuration for the application.
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    string

	// LLM provider selection: "openai" (default) or "gemini".
	LLMProvider  string
	OpenAIAPIKey string
	GeminiAPIKey string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data/genie.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "openai"
	}
	if provider != "openai" && provider != "gemini" {
		return nil, fmt.Errorf("LLM_PROVIDER must be 'openai' or 'gemini', got '%s'", provider)
	}

	openAIKey := os.Getenv("OPENAI_API_KEY")
	geminiKey := os.Getenv("GEMINI_API_KEY")

	if provider == "openai" && openAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if provider == "gemini" && geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	return &Config{
		Port:         port,
		DatabasePath: dbPath,
		JWTSecret:    jwtSecret,
		LLMProvider:  provider,
		OpenAIAPIKey: openAIKey,
		GeminiAPIKey: geminiKey,
	}, nil
}
