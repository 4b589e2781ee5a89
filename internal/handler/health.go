package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brightwash/catalog-server/internal/config"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, code, dbStatus := "ok", http.StatusOK, "ok"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), config.DBPingTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("health check: database unavailable")
			status, code, dbStatus = "degraded", http.StatusServiceUnavailable, "unavailable"
		}
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UnixMilli(),
	})
}
