package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/models"
	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/storage"
	"github.com/gorilla/mux"
)

// maxUploadSize caps uploaded and downloaded images
const maxUploadSize = 10 * 1024 * 1024

type Handler struct {
	sessionStore *storage.SessionStore
	predictor    prediction.Predictor
	httpClient   *http.Client

	// ctx parents every background prediction and is cancelled by Close
	ctx  context.Context
	stop context.CancelFunc

	mu      sync.Mutex
	running map[string]*inflightCall

	// inflight tracks background predictions
	inflight sync.WaitGroup
}

type inflightCall struct {
	cancel context.CancelFunc
}

func New(predictor prediction.Predictor) *Handler {
	return NewWithTTL(predictor, storage.DefaultTTL)
}

// NewWithTTL returns a Handler whose sessions expire after ttl without use
func NewWithTTL(predictor prediction.Predictor, ttl time.Duration) *Handler {
	ctx, stop := context.WithCancel(context.Background())
	h := &Handler{
		predictor:  predictor,
		httpClient: newImageClient(),
		ctx:        ctx,
		stop:       stop,
		running:    make(map[string]*inflightCall),
	}
	h.sessionStore = storage.New(ttl, h.evict)
	return h
}

// Close cancels every background prediction. Sessions stay readable.
func (h *Handler) Close() {
	h.stop()
}

// Wait blocks until every background prediction has resolved
func (h *Handler) Wait() {
	h.inflight.Wait()
}

// WaitContext is Wait bounded by ctx
func (h *Handler) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startPrediction registers a cancellable prediction for the session,
// cancelling any earlier one. The returned func releases the registration.
func (h *Handler) startPrediction(sessionID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(h.ctx)
	call := &inflightCall{cancel: cancel}

	h.mu.Lock()
	if prev := h.running[sessionID]; prev != nil {
		prev.cancel()
	}
	h.running[sessionID] = call
	h.mu.Unlock()

	return ctx, func() {
		cancel()
		h.mu.Lock()
		if h.running[sessionID] == call {
			delete(h.running, sessionID)
		}
		h.mu.Unlock()
	}
}

// cancelPrediction stops the session's in-flight prediction, if any
func (h *Handler) cancelPrediction(sessionID string) {
	h.mu.Lock()
	call := h.running[sessionID]
	delete(h.running, sessionID)
	h.mu.Unlock()

	if call != nil {
		call.cancel()
	}
}

func (h *Handler) evict(entry *storage.Entry) {
	entry.Machine.Reset()
	h.cancelPrediction(entry.ID)
	slog.Info("Session expired", "session_id", entry.ID)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, r *http.Request) (*storage.Entry, bool) {
	sessionID := mux.Vars(r)["id"]
	entry, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return entry, true
}

func (h *Handler) sessionView(entry *storage.Entry) models.SessionView {
	snapshot := entry.Machine.Snapshot()
	return models.NewSessionView(entry.ID, entry.CreatedAt, snapshot, snapshot.PreviewRef)
}
