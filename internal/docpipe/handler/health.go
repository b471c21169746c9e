package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docpipe/pkg/component/storage"
)

// HealthHandler reports liveness and storage backend health.
type HealthHandler struct {
	storage *storage.Manager
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(mgr *storage.Manager) *HealthHandler {
	return &HealthHandler{storage: mgr}
}

type backendHealth struct {
	Healthy   bool   `json:"healthy"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Healthz pings every registered storage backend and returns 503 when
// any of them is down.
func (h *HealthHandler) Healthz(c *gin.Context) {
	statuses := h.storage.HealthCheckAll(c.Request.Context())

	healthy := true
	backends := make(map[string]backendHealth, len(statuses))
	for name, status := range statuses {
		b := backendHealth{
			Healthy:   status.Healthy,
			LatencyMs: status.Latency.Milliseconds(),
		}
		if status.Error != nil {
			b.Error = status.Error.Error()
		}
		if !status.Healthy {
			healthy = false
		}
		backends[name] = b
	}

	code := http.StatusOK
	state := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "backends": backends})
}
