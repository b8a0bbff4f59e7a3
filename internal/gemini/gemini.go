package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/providers"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-1.5-flash"

// Gemini is a provider for Google Gemini
type Gemini struct {
	apiKey string
}

// New returns a new Gemini provider
func New(apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}
	return &Gemini{apiKey: apiKey}, nil
}

// Classify sends the scan and the prompt to Gemini and returns its text reply
func (g *Gemini) Classify(ctx context.Context, config providers.Config, img prediction.Image) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	modelName := config.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(config.Temperature))
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.ImageData(imageFormat(img), img.Data), genai.Text(config.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("empty content returned from Gemini")
	}

	txt, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return "", errors.New("unexpected response format from Gemini")
	}

	return string(txt), nil
}

// imageFormat maps the image content type to the genai format name
func imageFormat(img prediction.Image) string {
	return strings.TrimPrefix(providers.ContentType(img), "image/")
}
