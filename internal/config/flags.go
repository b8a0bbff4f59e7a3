package config

import (
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/spf13/cobra"
)

// Flags are the backend flags shared by every command that classifies scans
type Flags struct {
	backend  string
	baseURL  string
	model    string
	timeout  time.Duration
	fallback bool
}

// Register adds the backend flags to cmd
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "backend", BackendHTTP, "Prediction backend (http, gemini, ollama, openai)")
	cmd.Flags().StringVar(&f.baseURL, "url", prediction.DefaultBaseURL, "Base URL of the prediction service")
	cmd.Flags().StringVar(&f.model, "model", "", "Vision model name for gemini, ollama or openai")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Prediction request timeout (0 waits indefinitely)")
	cmd.Flags().BoolVar(&f.fallback, "fallback", false, "Show a generated result when prediction fails")
}

// Settings reads the environment, then applies the flags the user set on cmd
func (f *Flags) Settings(cmd *cobra.Command) (Settings, error) {
	settings, err := FromEnv()
	if err != nil {
		return settings, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		settings.Backend = f.backend
	}
	if flags.Changed("url") {
		settings.BaseURL = f.baseURL
	}
	if flags.Changed("model") {
		settings.Model = f.model
	}
	if flags.Changed("timeout") {
		settings.Timeout = f.timeout
	}
	if f.fallback {
		settings.OnFailure = prediction.Fallback
	}

	return settings, settings.Validate()
}

// Predictor resolves the settings for cmd and builds their predictor
func (f *Flags) Predictor(cmd *cobra.Command) (prediction.Predictor, Settings, error) {
	settings, err := f.Settings(cmd)
	if err != nil {
		return nil, settings, err
	}
	p, err := settings.Predictor()
	return p, settings, err
}
