package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
)

// ItemResult is the outcome of predicting one dataset item
type ItemResult struct {
	Path           string        `json:"path" yaml:"path"`
	Expected       classes.Label `json:"expected" yaml:"expected"`
	Predicted      classes.Label `json:"predicted,omitempty" yaml:"predicted,omitempty"`
	Confidence     float64       `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Correct        bool          `json:"correct" yaml:"correct"`
	ProcessingTime time.Duration `json:"processing_time" yaml:"processingtime"`
	Error          string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Run predicts every item with at most concurrency requests in flight.
// Results keep the order of items.
func Run(ctx context.Context, items []DatasetItem, predictor prediction.Predictor, concurrency int) []ItemResult {
	if concurrency < 1 {
		concurrency = 1
	}

	slog.Info("Processing items", "items", len(items), "concurrency", concurrency)

	results := make([]ItemResult, len(items))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, item DatasetItem) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Debug("Processing item", "path", item.Path, "progress", fmt.Sprintf("%d/%d", idx+1, len(items)))
			results[idx] = processItem(ctx, item, predictor)
		}(i, item)
	}

	wg.Wait()
	return results
}

func processItem(ctx context.Context, item DatasetItem, predictor prediction.Predictor) ItemResult {
	result := ItemResult{
		Path:     item.Path,
		Expected: item.Label,
	}

	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		return result
	}

	img, err := LoadImage(item.Path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	out, err := predictor.Predict(ctx, img)
	result.ProcessingTime = time.Since(start)
	if err != nil {
		slog.Warn("Prediction failed", "path", item.Path, "err", err)
		result.Error = err.Error()
		return result
	}

	result.Predicted = out.Label
	result.Confidence = out.Confidence
	result.Correct = out.Label == item.Label
	return result
}

// LoadImage reads an image file into a prediction payload
func LoadImage(path string) (prediction.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return prediction.Image{}, fmt.Errorf("failed to read image: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return prediction.Image{
		Data:        data,
		Filename:    filepath.Base(path),
		ContentType: contentType,
	}, nil
}
