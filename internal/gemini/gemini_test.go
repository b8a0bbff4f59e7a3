package gemini

import (
	"testing"

	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("Expected error without API key")
	}
	if _, err := New("key"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"image/png":                "png",
		"image/jpeg":               "jpeg",
		"image/jpg":                "jpeg",
		"":                         "jpeg",
		"image/webp; charset=utf8": "webp",
	}
	for input, expected := range tests {
		if got := imageFormat(prediction.Image{ContentType: input}); got != expected {
			t.Errorf("imageFormat(%q) = %q, expected %q", input, got, expected)
		}
	}
}
