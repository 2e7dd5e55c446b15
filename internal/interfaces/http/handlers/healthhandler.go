package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/paypoint/internal/shared/version"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheckFunc reports whether one dependency is reachable.
type HealthCheckFunc func(ctx context.Context) error

type HealthHandler struct {
	variant string
	names   []string
	checks  map[string]HealthCheckFunc
}

func NewHealthHandler(variant string) *HealthHandler {
	return &HealthHandler{
		variant: variant,
		checks:  make(map[string]HealthCheckFunc),
	}
}

// AddCheck registers a dependency probe. Not safe to call after routes are served.
func (h *HealthHandler) AddCheck(name string, check HealthCheckFunc) {
	if _, exists := h.checks[name]; !exists {
		h.names = append(h.names, name)
		sort.Strings(h.names)
	}
	h.checks[name] = check
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	results := make(gin.H, len(h.names))
	for _, name := range h.names {
		if err := h.checks[name](ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":  state,
		"service": "paypoint",
		"variant": h.variant,
		"version": version.Current,
		"checks":  results,
	})
}
