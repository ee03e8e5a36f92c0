// Package config loads the demo binary's configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the demo binary needs to assemble a pipeline.
type Config struct {
	// OpenAI credentials, used for both the streaming model and synthesis.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Deepgram credentials for live transcription.
	DeepgramAPIKey string `envconfig:"DEEPGRAM_API_KEY"`

	// Voice selects the synthesis voice.
	Voice string `envconfig:"VOXA_VOICE" default:"alloy"`

	// Instructions is the system prompt for the assistant.
	Instructions string `envconfig:"VOXA_INSTRUCTIONS" default:"You are a helpful voice assistant. Keep answers short and speakable."`

	// PlaybackSpeed is the initial playback-speed multiplier.
	PlaybackSpeed float64 `envconfig:"VOXA_PLAYBACK_SPEED" default:"1.0"`

	// SilenceTimeout ends the listening phase after this much quiet once the
	// user has started speaking.
	SilenceTimeout time.Duration `envconfig:"VOXA_SILENCE_TIMEOUT" default:"1500ms"`

	// AutoListen restarts listening after each completed turn.
	AutoListen bool `envconfig:"VOXA_AUTO_LISTEN" default:"true"`

	// MetricsAddr is the listen address for the Prometheus /metrics endpoint.
	// Empty disables the endpoint.
	MetricsAddr string `envconfig:"VOXA_METRICS_ADDR" default:""`
}

// Load reads the .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from the environment only, for
// containerized deployments where .env files are not used.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.PlaybackSpeed <= 0 {
		return nil, fmt.Errorf("VOXA_PLAYBACK_SPEED must be positive, got %v", cfg.PlaybackSpeed)
	}
	if cfg.SilenceTimeout <= 0 {
		return nil, fmt.Errorf("VOXA_SILENCE_TIMEOUT must be positive, got %v", cfg.SilenceTimeout)
	}

	return &cfg, nil
}
