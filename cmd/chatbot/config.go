// In file: cmd/chatbot/config.go
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dileep-u-k/genai-chatbot/internal/auth"
	"github.com/dileep-u-k/genai-chatbot/internal/keyspace"
	"github.com/dileep-u-k/genai-chatbot/internal/llm"
)

// AppConfig holds all configuration for the chatbot, loaded from the
// environment and config.yaml.
type AppConfig struct {
	GeminiAPIKey string
	RedisAddr    string
	Port         string
	// Users maps normalized usernames to their secrets, parsed from
	// CHAT_USERS ("alice=s3cret,bob=hunter2"). The map feeds the static
	// identity verifier; swapping in another Verifier needs no config here.
	Users map[string]string
	// Generation carries the model id and fixed sampling settings from
	// config.yaml. These are static; user input never reaches them.
	Generation llm.GenerationConfig
}

// LoadConfig loads all configuration from a .env file, environment
// variables, and config.yaml.
func LoadConfig() (*AppConfig, error) {
	// Only attempt to load a .env file in local development. In Docker
	// (where GIN_MODE="release"), configuration is provided directly as
	// environment variables.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		Port:         os.Getenv("PORT"),
		Users:        make(map[string]string),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	usersStr := os.Getenv("CHAT_USERS")
	if usersStr == "" {
		return nil, fmt.Errorf("CHAT_USERS environment variable is not set")
	}
	for _, pair := range strings.Split(usersStr, ",") {
		name, secret, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("CHAT_USERS entry %q is not in user=secret form", pair)
		}
		normalized := auth.Normalize(name)
		if !keyspace.ValidUsername(normalized) {
			return nil, fmt.Errorf("CHAT_USERS username %q cannot be used as a storage key", name)
		}
		cfg.Users[normalized] = secret
	}

	// Load the model's generation settings from the YAML file.
	genConfigFile, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}
	if err := yaml.Unmarshal(genConfigFile, &cfg.Generation); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml: %w", err)
	}
	if cfg.Generation.Model == "" {
		return nil, fmt.Errorf("config.yaml must set a model")
	}

	return cfg, nil
}
