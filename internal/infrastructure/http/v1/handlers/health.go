package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"magnetunits/internal/infrastructure/cache"
	"magnetunits/internal/infrastructure/storage/postgres"
	"magnetunits/internal/metadata"
)

// Version is reported by /health/info.
var Version = "0.1.0"

// HealthHandler provides health check endpoints. The pool is optional.
type HealthHandler struct {
	pool     *postgres.Pool
	formats  *cache.FormatCache
	registry *metadata.Registry
}

func NewHealthHandler(pool *postgres.Pool, formats *cache.FormatCache, registry *metadata.Registry) *HealthHandler {
	return &HealthHandler{pool: pool, formats: formats, registry: registry}
}

// Live handles liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready checks the database when one is configured.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{}
	if h.pool != nil {
		if err := h.pool.Ping(c.Request.Context()); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "checks": checks})
			return
		}
		checks["database"] = "healthy"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"app":     "magnetunits",
		"version": Version,
	}
	if h.registry != nil {
		body["fields"] = h.registry.Summary()
	}
	if h.formats != nil {
		body["formats"] = h.formats.Stats()
	}
	if h.pool != nil {
		body["database"] = h.pool.Stats()
	}
	c.JSON(http.StatusOK, body)
}
