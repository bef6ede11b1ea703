package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yourorg/chairtime/internal/infrastructure/redis"
	"github.com/yourorg/chairtime/pkg/database"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db    *database.ConnectionPool
	redis *redis.Client
}

// NewHealthHandler creates the health probe handler
func NewHealthHandler(db *database.ConnectionPool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

// Live always reports ok while the process is running
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the Postgres and Redis connections
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if h.db != nil {
		if err := h.db.Health(ctx); err != nil {
			checks["postgres"] = "unavailable"
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := "ready"
	code := http.StatusOK
	if !healthy {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
