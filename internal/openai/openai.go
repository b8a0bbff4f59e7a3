package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/providers"
)

// Defaults for the hosted API
const (
	DefaultURL   = "https://api.openai.com/v1"
	DefaultModel = "gpt-4o"
)

// OpenAI is a provider for OpenAI-compatible chat completion APIs
type OpenAI struct {
	url    string
	apiKey string
	client *http.Client
}

// New returns a new OpenAI provider; url may point at any compatible server
func New(url, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	if url == "" {
		url = DefaultURL
	}
	return &OpenAI{url: strings.TrimRight(url, "/"), apiKey: apiKey, client: &http.Client{}}, nil
}

// Classify sends the scan as a data URL and returns the assistant's reply
func (o *OpenAI) Classify(ctx context.Context, config providers.Config, img prediction.Image) (string, error) {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", providers.ContentType(img), base64.StdEncoding.EncodeToString(img.Data))

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": config.Prompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
		"response_format": map[string]string{"type": "json_object"},
		"temperature":     config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
