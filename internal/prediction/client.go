package prediction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 1 << 20

// Client posts images to {BaseURL}/predict
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the endpoint in cfg
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Endpoint returns the full predict URL
func (c *Client) Endpoint() string {
	return c.baseURL + "/predict"
}

// Predict uploads the image as the multipart field "image" and validates the reply
func (c *Client) Predict(ctx context.Context, img Image) (Result, error) {
	if len(img.Data) == 0 {
		return Result{}, ErrEmptyImage
	}

	body, contentType, err := encodeImage(img)
	if err != nil {
		return Result{}, failed(fmt.Errorf("failed to encode multipart body: %w", err), 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), body)
	if err != nil {
		return Result{}, failed(fmt.Errorf("failed to create new request: %w", err), 0)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	slog.Debug("Sending prediction request", "url", c.Endpoint(), "filename", img.Filename, "bytes", len(img.Data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, failed(fmt.Errorf("failed to send request: %w", err), 0)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Result{}, failed(fmt.Errorf("failed to read response body: %w", err), resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, failed(fmt.Errorf("received non-2xx status code: %d - %s", resp.StatusCode, string(data)), resp.StatusCode)
	}

	result, err := ParseResult(data)
	if err != nil {
		return Result{}, err
	}

	slog.Debug("Prediction received", "class", result.Label, "confidence", result.Confidence)
	return result, nil
}

func encodeImage(img Image) (*bytes.Buffer, string, error) {
	filename := img.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
