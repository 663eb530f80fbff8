package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/response"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and the state of backing services.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler probes each named dependency on every request.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Check answers 200 when every dependency responds, 503 otherwise.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	if status != http.StatusOK {
		c.JSON(status, response.APIResponse{
			Success: false,
			Message: "Service degraded",
			Code:    "persistence",
			Data:    gin.H{"checks": results},
		})
		return
	}
	response.OK(c, "Service is healthy", gin.H{"checks": results})
}
