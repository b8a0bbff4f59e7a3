package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/providers"
)

// Defaults for a local Ollama install
const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "llava"
)

// Ollama is a provider for Ollama
type Ollama struct {
	url    string
	client *http.Client
}

// New returns a new Ollama provider for the server at url
func New(url string) *Ollama {
	if url == "" {
		url = DefaultURL
	}
	return &Ollama{url: strings.TrimRight(url, "/"), client: &http.Client{}}
}

// Classify sends the scan to /api/generate and returns the model's reply
func (o *Ollama) Classify(ctx context.Context, config providers.Config, img prediction.Image) (string, error) {
	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model":  model,
		"prompt": config.Prompt,
		"images": []string{base64.StdEncoding.EncodeToString(img.Data)},
		"format": "json",
		"stream": false,
		"options": map[string]interface{}{
			"temperature": config.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
