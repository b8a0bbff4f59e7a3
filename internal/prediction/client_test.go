package prediction

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
)

var testImage = Image{
	Data:        []byte("\x89PNG fake image bytes"),
	Filename:    "scan.png",
	ContentType: "image/png",
}

func TestClient_Predict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("Expected path '/predict', got '%s'", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got '%s'", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("Expected multipart content type, got '%s'", r.Header.Get("Content-Type"))
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("Expected image field: %v", err)
			http.Error(w, "missing image", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		if string(data) != string(testImage.Data) {
			t.Errorf("Uploaded bytes differ: %q", data)
		}
		if header.Filename != "scan.png" {
			t.Errorf("Expected filename scan.png, got %s", header.Filename)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"class": "meningioma", "confidence": 0.85}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/"})
	result, err := client.Predict(context.Background(), testImage)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Label != classes.Meningioma {
		t.Errorf("Expected meningioma, got %s", result.Label)
	}
	if result.Confidence != 0.85 {
		t.Errorf("Expected confidence 0.85, got %v", result.Confidence)
	}
}

func TestClient_PredictEmptyImage(t *testing.T) {
	client := NewClient(DefaultConfig())
	_, err := client.Predict(context.Background(), Image{})
	if !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestClient_PredictErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", expected: ErrPredictionFailed},
		{name: "not found", status: http.StatusNotFound, body: "", expected: ErrPredictionFailed},
		{name: "invalid json", status: http.StatusOK, body: "not json", expected: ErrMalformedResponse},
		{name: "missing class", status: http.StatusOK, body: `{"confidence": 0.9}`, expected: ErrMalformedResponse},
		{name: "unknown class", status: http.StatusOK, body: `{"class": "cyst", "confidence": 0.9}`, expected: ErrMalformedResponse},
		{name: "missing confidence", status: http.StatusOK, body: `{"class": "glioma"}`, expected: ErrMalformedResponse},
		{name: "confidence above one", status: http.StatusOK, body: `{"class": "glioma", "confidence": 1.5}`, expected: ErrMalformedResponse},
		{name: "negative confidence", status: http.StatusOK, body: `{"class": "glioma", "confidence": -0.1}`, expected: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{BaseURL: server.URL})
			_, err := client.Predict(context.Background(), testImage)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, err)
			}
			if UserFacing(err) != UserMessage {
				t.Errorf("Expected user message %q, got %q", UserMessage, UserFacing(err))
			}
		})
	}
}

func TestClient_PredictUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url})
	_, err := client.Predict(context.Background(), testImage)
	if !errors.Is(err, ErrPredictionFailed) {
		t.Errorf("Expected ErrPredictionFailed, got %v", err)
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Error("Network failure must not match ErrMalformedResponse")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})
	if client.Endpoint() != DefaultBaseURL+"/predict" {
		t.Errorf("Expected default endpoint, got %s", client.Endpoint())
	}
}

type stubPredictor struct {
	result Result
	err    error
	calls  int
}

func (s *stubPredictor) Predict(ctx context.Context, img Image) (Result, error) {
	s.calls++
	return s.result, s.err
}

func TestWithFailureMode_Fallback(t *testing.T) {
	stub := &stubPredictor{err: failed(errors.New("connection refused"), 0)}
	p := WithFailureMode(stub, Fallback, rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 200; i++ {
		result, err := p.Predict(context.Background(), testImage)
		if err != nil {
			t.Fatalf("Fallback returned error: %v", err)
		}
		if !result.Label.Valid() {
			t.Fatalf("Invalid fallback label %q", result.Label)
		}
		if result.Confidence < MockMinConfidence || result.Confidence > MockMaxConfidence {
			t.Fatalf("Confidence %v outside [0.70, 0.99]", result.Confidence)
		}
		if scaled := result.Confidence * 100; math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("Confidence %v is not rounded to 2 decimals", result.Confidence)
		}
	}
}

func TestWithFailureMode_Surface(t *testing.T) {
	stub := &stubPredictor{err: failed(errors.New("connection refused"), 0)}
	p := WithFailureMode(stub, Surface, nil)

	if _, err := p.Predict(context.Background(), testImage); !errors.Is(err, ErrPredictionFailed) {
		t.Errorf("Expected ErrPredictionFailed, got %v", err)
	}
}

func TestFallback_PassesThroughSuccess(t *testing.T) {
	want := Result{Label: classes.Pituitary, Confidence: 0.42}
	p := NewFallback(&stubPredictor{result: want}, nil)

	got, err := p.Predict(context.Background(), testImage)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestFallback_KeepsEmptyImageError(t *testing.T) {
	p := NewFallback(NewClient(DefaultConfig()), nil)
	if _, err := p.Predict(context.Background(), Image{}); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestParseFailureMode(t *testing.T) {
	tests := []struct {
		input   string
		want    FailureMode
		wantErr bool
	}{
		{"", Surface, false},
		{"surface", Surface, false},
		{"fallback", Fallback, false},
		{"retry", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFailureMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFailureMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFailureMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

type waitingPredictor struct{}

func (waitingPredictor) Predict(ctx context.Context, img Image) (Result, error) {
	<-ctx.Done()
	return Result{}, NewFailedError(ctx.Err())
}

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(waitingPredictor{}, 10*time.Millisecond)

	_, err := p.Predict(context.Background(), testImage)
	if !errors.Is(err, ErrPredictionFailed) {
		t.Fatalf("Expected ErrPredictionFailed, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline in cause chain, got %v", err)
	}

	// A timeout is an endpoint failure, so fallback still applies
	result, err := WithFailureMode(p, Fallback, nil).Predict(context.Background(), testImage)
	if err != nil {
		t.Fatalf("Expected fallback result, got %v", err)
	}
	if !result.Label.Valid() {
		t.Errorf("Invalid fallback label %q", result.Label)
	}
}
