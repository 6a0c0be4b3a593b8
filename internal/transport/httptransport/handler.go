package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/awmpietro/entry-decision-engine/internal/app"
	"github.com/awmpietro/entry-decision-engine/internal/transport/decidedto"
)

type Handler struct {
	svc app.DecideService
}

func NewHandler(svc app.DecideService) *Handler {
	return &Handler{svc: svc}
}

// NewRouter mounts the decide and health endpoints, and metrics when
// metricsHandler is not nil.
func NewRouter(h *Handler, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/decide", h.Decide)
	r.Get("/healthz", h.Health)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	return r
}

// Decide serves POST /decide. Method filtering is left to the router.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	var in decidedto.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, decidedto.ErrorBody("invalid json", err))
		return
	}

	res, err := h.svc.DecideBatch(r.Context(), in.Batch(), in.Debug)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, decidedto.ErrorBody("decide failed", err))
		return
	}
	writeJSON(w, http.StatusOK, decidedto.NewDecideResponse(res))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
