// Package prediction talks to the remote scan classification endpoint.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
)

// DefaultBaseURL is used when no endpoint is configured
const DefaultBaseURL = "http://localhost:5000"

// FailureMode decides what happens when a prediction cannot be obtained
type FailureMode string

const (
	// Surface returns the failure to the caller
	Surface FailureMode = "surface"

	// Fallback replaces the failure with a generated result
	Fallback FailureMode = "fallback"
)

// ParseFailureMode accepts "surface" or "fallback"; empty means Surface
func ParseFailureMode(s string) (FailureMode, error) {
	switch FailureMode(s) {
	case "", Surface:
		return Surface, nil
	case Fallback:
		return Fallback, nil
	default:
		return "", fmt.Errorf("unsupported failure mode %q (supported: surface, fallback)", s)
	}
}

// Image is the binary payload sent for classification
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Result is a validated classification
type Result struct {
	Label      classes.Label `json:"class" yaml:"class"`
	Confidence float64       `json:"confidence" yaml:"confidence"`
}

// Predictor classifies a scan image
type Predictor interface {
	Predict(ctx context.Context, img Image) (Result, error)
}

// Config configures a Client
type Config struct {
	BaseURL   string
	OnFailure FailureMode

	// Timeout bounds a single request; zero waits indefinitely
	Timeout time.Duration

	HTTPClient *http.Client

	// Rand drives fallback results; nil seeds a fresh generator
	Rand *rand.Rand
}

// DefaultConfig returns a configuration pointing at the local endpoint
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		OnFailure: Surface,
	}
}

// New builds the Client described by cfg and applies its failure mode
func New(cfg Config) Predictor {
	return WithFailureMode(NewClient(cfg), cfg.OnFailure, cfg.Rand)
}

// ParseResult validates a raw endpoint response body
func ParseResult(body []byte) (Result, error) {
	var raw struct {
		Class      *string  `json:"class"`
		Confidence *float64 `json:"confidence"`
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&raw); err != nil {
		return Result{}, malformed("failed to decode response body: %w", err)
	}

	if raw.Class == nil {
		return Result{}, malformed("response is missing \"class\"")
	}
	label, err := classes.Parse(*raw.Class)
	if err != nil {
		return Result{}, malformed("invalid class: %w", err)
	}

	if raw.Confidence == nil {
		return Result{}, malformed("response is missing \"confidence\"")
	}
	if *raw.Confidence < 0 || *raw.Confidence > 1 {
		return Result{}, malformed("confidence %v outside [0,1]", *raw.Confidence)
	}

	return Result{Label: label, Confidence: *raw.Confidence}, nil
}

// WithTimeout bounds every Predict call on p by d
func WithTimeout(p Predictor, d time.Duration) Predictor {
	return timeoutPredictor{next: p, timeout: d}
}

type timeoutPredictor struct {
	next    Predictor
	timeout time.Duration
}

func (t timeoutPredictor) Predict(ctx context.Context, img Image) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Predict(ctx, img)
}
