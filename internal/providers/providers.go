// Package providers adapts vision LLMs to the prediction interface.
// Each provider only returns the model's raw text; parsing and error
// classification happen here so every backend behaves like the HTTP client.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
)

// Config represents the configuration for an LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Classify(ctx context.Context, config Config, img prediction.Image) (string, error)
}

// Predictor turns a Provider into a prediction.Predictor
type Predictor struct {
	provider Provider
	config   Config
}

// NewPredictor wraps provider; an empty prompt uses Prompt()
func NewPredictor(provider Provider, config Config) *Predictor {
	if config.Prompt == "" {
		config.Prompt = Prompt()
	}
	return &Predictor{provider: provider, config: config}
}

// Predict asks the provider for a verdict and validates it like an HTTP response body
func (p *Predictor) Predict(ctx context.Context, img prediction.Image) (prediction.Result, error) {
	if len(img.Data) == 0 {
		return prediction.Result{}, prediction.ErrEmptyImage
	}

	text, err := p.provider.Classify(ctx, p.config, img)
	if err != nil {
		return prediction.Result{}, prediction.NewFailedError(err)
	}

	return prediction.ParseResult([]byte(ExtractJSON(text)))
}

// Prompt is the instruction sent alongside the scan
func Prompt() string {
	labels := classes.Labels()
	names := make([]string, len(labels))
	for i, label := range labels {
		names[i] = fmt.Sprintf("%q (%s)", label, classes.Lookup(label).Name)
	}

	return fmt.Sprintf(`You are assisting with a brain MRI classification demo.
Classify the attached scan into exactly one of: %s.
Respond with a single JSON object and nothing else:
{"class": "<one of the labels>", "confidence": <number between 0 and 1>}`, strings.Join(names, ", "))
}

// ExtractJSON strips markdown code fences models sometimes add
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ContentType returns img's declared type, defaulting to JPEG
func ContentType(img prediction.Image) string {
	contentType := strings.ToLower(strings.TrimSpace(img.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "image/jpg" {
		return "image/jpeg"
	}
	return contentType
}
