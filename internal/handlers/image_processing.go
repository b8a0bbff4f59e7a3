package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"

	"github.com/brain-tumor-detection/tumorscan/internal/utils"
	"github.com/nfnt/resize"
)

// previewSize is the longest side of a preview thumbnail
const previewSize = 512

// previewRef builds the opaque preview handle for an uploaded image.
// The digest changes with the image so browsers never show a stale preview.
func previewRef(sessionID string, data []byte) string {
	return fmt.Sprintf("/api/sessions/%s/preview?v=%s", sessionID, utils.CalculateDataMD5(data))
}

func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	snapshot := entry.Machine.Snapshot()
	if snapshot.Image == nil {
		h.writeError(w, "No image selected", http.StatusNotFound)
		return
	}

	data, contentType, err := thumbnail(snapshot.Image.Data, previewSize)
	if err != nil {
		slog.Warn("Failed to build preview, serving original", "session_id", entry.ID, "err", err)
		data, contentType = snapshot.Image.Data, snapshot.Image.ContentType
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write preview", "err", err)
	}
}

// thumbnail scales an image down so its longest side is at most size pixels, encoded as PNG
func thumbnail(data []byte, size uint) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := uint(bounds.Dx()), uint(bounds.Dy())
	slog.Debug("Decoded image for preview", "format", format, "width", width, "height", height)

	if width > size || height > size {
		if width >= height {
			img = resize.Resize(size, 0, img, resize.Lanczos3)
		} else {
			img = resize.Resize(0, size, img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}
