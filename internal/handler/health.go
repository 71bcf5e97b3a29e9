package handler

import (
	"context"
	"net/http"
	"time"

	"carrental-client/internal/model"
)

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates the health handler. A nil db reports the
// in-memory store.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := model.HealthResponse{
		Status:    "ok",
		Database:  "memory",
		Timestamp: time.Now(),
	}

	if h.db != nil {
		response.Database = "connected"
		if err := h.db.Ping(ctx); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, response)
}
