// Package config holds the environment-sourced application settings.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// MistralAPIKey is not marked required so the service can still come up
	// (and report "disconnected" on /health) when the key is absent.
	MistralAPIKey  string `env:"MISTRAL_API_KEY"`
	MistralBaseURL string `env:"MISTRAL_BASE_URL" envDefault:"https://api.mistral.ai/v1"`

	APITitle   string `env:"API_TITLE" envDefault:"Mistral Fact Checker API"`
	APIVersion string `env:"API_VERSION" envDefault:"1.0.0"`

	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8000"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000,http://localhost:3001"`

	TextModel   string  `env:"MISTRAL_TEXT_MODEL" envDefault:"mistral-large-latest"`
	VisionModel string  `env:"MISTRAL_VISION_MODEL" envDefault:"pixtral-large-latest"`
	Temperature float64 `env:"MISTRAL_TEMPERATURE" envDefault:"0.3"`

	MaxTextLength         int `env:"MAX_TEXT_LENGTH" envDefault:"10000"`
	MaxURLContentLength   int `env:"MAX_URL_CONTENT_LENGTH" envDefault:"10000"`
	MaxImageSizeMB        int `env:"MAX_IMAGE_SIZE_MB" envDefault:"10"`
	URLTimeoutSeconds     int `env:"URL_TIMEOUT_SECONDS" envDefault:"30"`
	MistralTimeoutSeconds int `env:"MISTRAL_TIMEOUT_SECONDS" envDefault:"120"`

	// PromptsPath optionally points at a YAML file overriding the built-in
	// prompt templates.
	PromptsPath string `env:"PROMPTS_PATH"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads settings from the environment, merging in a .env file first if
// one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server should listen on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
