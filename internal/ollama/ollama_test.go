package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/providers"
)

func TestClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var body struct {
			Model  string   `json:"model"`
			Images []string `json:"images"`
			Format string   `json:"format"`
			Stream bool     `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Invalid request body: %v", err)
		}
		if body.Model != DefaultModel {
			t.Errorf("Expected default model, got %s", body.Model)
		}
		if len(body.Images) != 1 || body.Images[0] != base64.StdEncoding.EncodeToString([]byte("scan")) {
			t.Errorf("Unexpected images %v", body.Images)
		}
		if body.Format != "json" || body.Stream {
			t.Errorf("Expected non-streaming JSON request, got format=%q stream=%v", body.Format, body.Stream)
		}

		_ = json.NewEncoder(w).Encode(map[string]string{"response": `{"class":"glioma","confidence":0.91}`})
	}))
	defer server.Close()

	p := providers.NewPredictor(New(server.URL+"/"), providers.Config{})
	result, err := p.Predict(context.Background(), prediction.Image{Data: []byte("scan"), ContentType: "image/png"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if result.Label != classes.Glioma || result.Confidence != 0.91 {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestClassifyStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL).Classify(context.Background(), providers.Config{}, prediction.Image{Data: []byte("scan")})
	if err == nil {
		t.Error("Expected error for non-200 status")
	}
}
