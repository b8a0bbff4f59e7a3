// Package config resolves predictor settings from the environment.
// Nothing below cmd reads the environment directly.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/gemini"
	"github.com/brain-tumor-detection/tumorscan/internal/ollama"
	"github.com/brain-tumor-detection/tumorscan/internal/openai"
	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/providers"
)

// Backends
const (
	BackendHTTP   = "http"
	BackendGemini = "gemini"
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// llmTemperature keeps vision model verdicts close to deterministic
const llmTemperature = 0.1

// Settings selects and configures the prediction backend
type Settings struct {
	Backend   string
	BaseURL   string
	OnFailure prediction.FailureMode
	Timeout   time.Duration

	// Model overrides the per-backend model below
	Model string

	GeminiAPIKey string
	GeminiModel  string

	OllamaURL   string
	OllamaModel string

	OpenAIURL    string
	OpenAIAPIKey string
	OpenAIModel  string
}

// Default returns the settings used when nothing is configured
func Default() Settings {
	return Settings{
		Backend:     BackendHTTP,
		BaseURL:     prediction.DefaultBaseURL,
		OnFailure:   prediction.Surface,
		GeminiModel: gemini.DefaultModel,
		OllamaURL:   ollama.DefaultURL,
		OllamaModel: ollama.DefaultModel,
		OpenAIURL:   openai.DefaultURL,
		OpenAIModel: openai.DefaultModel,
	}
}

// FromEnv overlays environment variables on the defaults
func FromEnv() (Settings, error) {
	s := Default()

	setString(&s.Backend, "PREDICT_BACKEND")
	setString(&s.BaseURL, "PREDICT_API_URL")

	if v := os.Getenv("PREDICT_ON_FAILURE"); v != "" {
		mode, err := prediction.ParseFailureMode(v)
		if err != nil {
			return s, fmt.Errorf("PREDICT_ON_FAILURE: %w", err)
		}
		s.OnFailure = mode
	}
	if v := os.Getenv("PREDICT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("PREDICT_TIMEOUT: %w", err)
		}
		s.Timeout = d
	}

	s.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	setString(&s.GeminiModel, "GEMINI_MODEL")

	setString(&s.OllamaURL, "OLLAMA_URL")
	setString(&s.OllamaModel, "OLLAMA_MODEL")

	s.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	setString(&s.OpenAIURL, "OPENAI_BASE_URL")
	setString(&s.OpenAIModel, "OPENAI_MODEL")

	return s, s.Validate()
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the backend name and timeout
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendHTTP, BackendGemini, BackendOllama, BackendOpenAI:
	default:
		return fmt.Errorf("unsupported backend: %s (supported: http, gemini, ollama, openai)", s.Backend)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", s.Timeout)
	}
	return nil
}

// ModelName is the vision model used by the selected backend, empty for http
func (s Settings) ModelName() string {
	if s.Backend == BackendHTTP {
		return ""
	}
	if s.Model != "" {
		return s.Model
	}
	switch s.Backend {
	case BackendGemini:
		return s.GeminiModel
	case BackendOllama:
		return s.OllamaModel
	default:
		return s.OpenAIModel
	}
}

// Endpoint describes where predictions are sent, for logs and result files
func (s Settings) Endpoint() string {
	switch s.Backend {
	case BackendHTTP:
		return s.BaseURL
	case BackendOllama:
		return s.OllamaURL
	case BackendOpenAI:
		return s.OpenAIURL
	default:
		return s.Backend + ":" + s.ModelName()
	}
}

// Predictor builds the configured backend wrapped in the failure strategy
func (s Settings) Predictor() (prediction.Predictor, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if s.Backend == BackendHTTP {
		return prediction.New(prediction.Config{
			BaseURL:   s.BaseURL,
			OnFailure: s.OnFailure,
			Timeout:   s.Timeout,
		}), nil
	}

	var provider providers.Provider
	switch s.Backend {
	case BackendGemini:
		g, err := gemini.New(s.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		provider = g
	case BackendOllama:
		provider = ollama.New(s.OllamaURL)
	case BackendOpenAI:
		o, err := openai.New(s.OpenAIURL, s.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		provider = o
	}

	var p prediction.Predictor = providers.NewPredictor(provider, providers.Config{
		Model:       s.ModelName(),
		Temperature: llmTemperature,
	})
	if s.Timeout > 0 {
		p = prediction.WithTimeout(p, s.Timeout)
	}
	return prediction.WithFailureMode(p, s.OnFailure, nil), nil
}
