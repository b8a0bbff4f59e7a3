package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/storage"
)

// HandleUpload selects a new image for the session, either from a multipart
// file field or from a JSON body carrying an image_url.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		h.handleURLUpload(w, r, entry)
		return
	}

	h.handleFileUpload(w, r, entry)
}

func (h *Handler) handleURLUpload(w http.ResponseWriter, r *http.Request, entry *storage.Entry) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	img, err := h.downloadImageFromURL(r, request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to process image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.selectImage(w, entry, img)
}

func (h *Handler) handleFileUpload(w http.ResponseWriter, r *http.Request, entry *storage.Entry) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)

	file, header, err := r.FormFile("image")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if len(fileData) > maxUploadSize {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	img := prediction.Image{
		Data:        fileData,
		Filename:    header.Filename,
		ContentType: detectImageType(header.Header.Get("Content-Type"), fileData),
	}
	h.selectImage(w, entry, img)
}

func (h *Handler) selectImage(w http.ResponseWriter, entry *storage.Entry, img prediction.Image) {
	if len(img.Data) == 0 {
		h.writeError(w, "Uploaded file is empty", http.StatusBadRequest)
		return
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		h.writeError(w, "Only image files are supported", http.StatusUnsupportedMediaType)
		return
	}

	if err := entry.Machine.SelectImage(img, previewRef(entry.ID, img.Data)); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.cancelPrediction(entry.ID)

	slog.Info("Image selected", "session_id", entry.ID, "filename", img.Filename, "type", img.ContentType, "bytes", len(img.Data))
	h.writeJSON(w, h.sessionView(entry))
}

func (h *Handler) downloadImageFromURL(r *http.Request, imageURL string) (prediction.Image, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, imageURL, nil)
	if err != nil {
		return prediction.Image{}, fmt.Errorf("invalid image URL: %w", err)
	}
	if err := checkScheme(req.URL); err != nil {
		return prediction.Image{}, err
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return prediction.Image{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return prediction.Image{}, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadSize+1))
	if err != nil {
		return prediction.Image{}, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(imageData) > maxUploadSize {
		return prediction.Image{}, fmt.Errorf("image too large (max 10MB)")
	}

	filename := path.Base(req.URL.Path)
	if filename == "" || filename == "/" || filename == "." {
		filename = "image.jpg"
	}

	return prediction.Image{
		Data:        imageData,
		Filename:    filename,
		ContentType: detectImageType(resp.Header.Get("Content-Type"), imageData),
	}, nil
}

// detectImageType trusts a declared image/* type and sniffs the bytes otherwise
func detectImageType(declared string, data []byte) string {
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	return http.DetectContentType(data)
}
