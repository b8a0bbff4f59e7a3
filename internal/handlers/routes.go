package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// Router wires every endpoint of the web interface
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/classes", h.HandleClasses).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.HandleSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.HandleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.HandleSessionDetail).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.HandleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/image", h.HandleUpload).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/submit", h.HandleSubmit).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/reset", h.HandleReset).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/preview", h.HandlePreview).Methods(http.MethodGet)

	r.PathPrefix("/").HandlerFunc(h.HandleStatic).Methods(http.MethodGet)

	return r
}
