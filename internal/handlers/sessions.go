package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/brain-tumor-detection/tumorscan/internal/models"
	"github.com/brain-tumor-detection/tumorscan/internal/session"
)

func (h *Handler) HandleClasses(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, models.Catalog())
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessionStore.GetAll()
	sessionList := make([]models.SessionView, 0, len(sessions))
	for _, entry := range sessions {
		sessionList = append(sessionList, h.sessionView(entry))
	}
	sort.Slice(sessionList, func(i, j int) bool {
		return sessionList[i].CreatedAt.Before(sessionList[j].CreatedAt)
	})
	h.writeJSON(w, sessionList)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	entry := h.sessionStore.Create()
	slog.Info("Session created", "session_id", entry.ID)
	h.writeJSONStatus(w, http.StatusCreated, h.sessionView(entry))
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, h.sessionView(entry))
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	// Discards any response still in flight
	entry.Machine.Reset()
	h.cancelPrediction(entry.ID)
	h.sessionStore.Delete(entry.ID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmit marks the session pending and runs the prediction in the background.
// Clients poll the session until it leaves the pending phase.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}

	ticket, err := entry.Machine.Begin()
	switch {
	case errors.Is(err, session.ErrNoImageSelected):
		h.writeError(w, "No image selected", http.StatusBadRequest)
		return
	case errors.Is(err, session.ErrAlreadyPending):
		h.writeError(w, "Prediction already in progress", http.StatusConflict)
		return
	case errors.Is(err, session.ErrInvalidTransition):
		h.writeError(w, "Reset the session before submitting again", http.StatusConflict)
		return
	case err != nil:
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The prediction outlives the request; reset, delete and Close cancel it
	ctx, release := h.startPrediction(entry.ID)
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		defer release()

		slog.Info("Running prediction", "session_id", entry.ID, "filename", ticket.Image.Filename)
		result, err := h.predictor.Predict(ctx, ticket.Image)
		if err != nil {
			slog.Error("Prediction error", "session_id", entry.ID, "err", err)
		}
		if !entry.Machine.Resolve(ticket, result, err) {
			slog.Info("Discarded stale prediction", "session_id", entry.ID)
			return
		}
		if err == nil {
			slog.Info("Prediction completed", "session_id", entry.ID, "class", result.Label, "confidence", result.Confidence)
		}
	}()

	h.writeJSONStatus(w, http.StatusAccepted, h.sessionView(entry))
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.getSessionOrError(w, r)
	if !ok {
		return
	}
	entry.Machine.Reset()
	h.cancelPrediction(entry.ID)
	h.writeJSON(w, h.sessionView(entry))
}
