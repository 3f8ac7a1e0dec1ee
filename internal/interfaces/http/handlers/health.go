package handlers

import (
	"net/http"
	"time"

	httpContracts "github.com/sawpanic/selicinsights/internal/http"
)

// Health handles GET /health endpoint
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ds, loadedAt := h.store.Snapshot()
	now := h.now()

	response := httpContracts.HealthResponse{
		Status:    "healthy",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(h.started).Truncate(time.Second).String(),
		Version:   h.version,
		Source: httpContracts.SourceHealth{
			Name:     h.store.SourceName(),
			Records:  len(ds),
			LoadedAt: loadedAt.UTC(),
		},
		Stream: httpContracts.StreamHealth{Clients: h.clients()},
	}

	if d, ok := h.store.Source().(degradable); ok {
		response.Source.Degraded = d.Degraded()
		response.Source.Breaker = d.BreakerState()
		if response.Source.Degraded {
			response.Status = "degraded"
		}
	}

	if h.dbHealth != nil {
		check := h.dbHealth.Health(r.Context())
		response.Database = &check
		if !check.Healthy {
			response.Status = "degraded"
		}
	}

	if len(ds) == 0 {
		response.Status = "unhealthy"
		h.writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	h.writeJSON(w, http.StatusOK, response)
}
