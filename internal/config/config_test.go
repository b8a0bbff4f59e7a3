package config

import (
	"testing"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/providers"
	"github.com/spf13/cobra"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PREDICT_BACKEND", "PREDICT_API_URL", "PREDICT_ON_FAILURE", "PREDICT_TIMEOUT", "GEMINI_API_KEY", "GEMINI_MODEL", "OLLAMA_URL", "OLLAMA_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL"} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if s.Backend != BackendHTTP {
		t.Errorf("Expected http backend, got %s", s.Backend)
	}
	if s.BaseURL != "http://localhost:5000" {
		t.Errorf("Expected loopback default, got %s", s.BaseURL)
	}
	if s.OnFailure != prediction.Surface {
		t.Errorf("Expected surface, got %s", s.OnFailure)
	}
	if s.Timeout != 0 {
		t.Errorf("Expected no timeout, got %s", s.Timeout)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PREDICT_API_URL", "http://model.internal:9000")
	t.Setenv("PREDICT_ON_FAILURE", "fallback")
	t.Setenv("PREDICT_TIMEOUT", "15s")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if s.BaseURL != "http://model.internal:9000" {
		t.Errorf("Unexpected base URL %s", s.BaseURL)
	}
	if s.OnFailure != prediction.Fallback {
		t.Errorf("Expected fallback, got %s", s.OnFailure)
	}
	if s.Timeout != 15*time.Second {
		t.Errorf("Expected 15s, got %s", s.Timeout)
	}
	if s.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("Unexpected gemini model %s", s.GeminiModel)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PREDICT_ON_FAILURE", "retry"},
		{"PREDICT_TIMEOUT", "soon"},
		{"PREDICT_BACKEND", "onnx"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestPredictor(t *testing.T) {
	s := Default()
	p, err := s.Predictor()
	if err != nil {
		t.Fatalf("Predictor failed: %v", err)
	}
	if _, ok := p.(*prediction.Client); !ok {
		t.Errorf("Expected *prediction.Client for surface mode, got %T", p)
	}

	s.OnFailure = prediction.Fallback
	p, _ = s.Predictor()
	if _, ok := p.(*prediction.FallbackPredictor); !ok {
		t.Errorf("Expected *prediction.FallbackPredictor, got %T", p)
	}

	s.Backend = BackendGemini
	if _, err := s.Predictor(); err == nil {
		t.Error("Expected error for gemini without API key")
	}

	s.GeminiAPIKey = "key"
	if _, err := s.Predictor(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if s.Endpoint() != "gemini:"+s.GeminiModel {
		t.Errorf("Unexpected endpoint %s", s.Endpoint())
	}

	s.Backend = BackendOpenAI
	if _, err := s.Predictor(); err == nil {
		t.Error("Expected error for openai without API key")
	}
}

func TestLLMBackends(t *testing.T) {
	s := Default()
	s.Backend = BackendOllama

	p, err := s.Predictor()
	if err != nil {
		t.Fatalf("Predictor failed: %v", err)
	}
	if _, ok := p.(*providers.Predictor); !ok {
		t.Errorf("Expected *providers.Predictor, got %T", p)
	}
	if s.ModelName() != "llava" {
		t.Errorf("Expected ollama default model, got %s", s.ModelName())
	}
	if s.Endpoint() != "http://localhost:11434" {
		t.Errorf("Unexpected endpoint %s", s.Endpoint())
	}

	s.Model = "llama3.2-vision"
	if s.ModelName() != "llama3.2-vision" {
		t.Errorf("Expected model override, got %s", s.ModelName())
	}

	s.Backend = BackendHTTP
	if s.ModelName() != "" {
		t.Errorf("Expected no model for http backend, got %s", s.ModelName())
	}
}

func TestFlagsSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		check   func(t *testing.T, s Settings)
		wantErr bool
	}{
		{
			name: "environment survives unset flags",
			env:  map[string]string{"PREDICT_API_URL": "http://env:5000", "PREDICT_TIMEOUT": "7s"},
			args: []string{"--fallback"},
			check: func(t *testing.T, s Settings) {
				if s.BaseURL != "http://env:5000" {
					t.Errorf("Expected env URL to survive, got %s", s.BaseURL)
				}
				if s.Timeout != 7*time.Second {
					t.Errorf("Expected env timeout 7s, got %s", s.Timeout)
				}
				if s.OnFailure != prediction.Fallback {
					t.Errorf("Expected fallback, got %s", s.OnFailure)
				}
			},
		},
		{
			name: "flags win over environment",
			env:  map[string]string{"PREDICT_API_URL": "http://env:5000", "PREDICT_TIMEOUT": "7s"},
			args: []string{"--url", "http://flag:5000", "--timeout", "3s", "--backend", "ollama", "--model", "llava"},
			check: func(t *testing.T, s Settings) {
				if s.BaseURL != "http://flag:5000" {
					t.Errorf("Expected flag URL to win, got %s", s.BaseURL)
				}
				if s.Timeout != 3*time.Second {
					t.Errorf("Expected flag timeout 3s, got %s", s.Timeout)
				}
				if s.Backend != BackendOllama || s.Model != "llava" {
					t.Errorf("Expected ollama/llava, got %s/%s", s.Backend, s.Model)
				}
			},
		},
		{
			name:    "invalid backend",
			args:    []string{"--backend", "carrier-pigeon"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			args:    []string{"--timeout=-1s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var flags Flags
			cmd := &cobra.Command{Use: "test"}
			flags.Register(cmd)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			s, err := flags.Settings(cmd)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Settings failed: %v", err)
			}
			tt.check(t, s)
		})
	}
}
