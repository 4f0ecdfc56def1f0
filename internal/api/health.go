package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// HealthHandler provides liveness and readiness endpoints for the stub API.
//
// Responsibilities:
//   - /healthz: Basic liveness check (always returns 200 OK).
//   - /readyz: Readiness check, runs every named check.
type HealthHandler struct {
	checks map[string]func() error
}

// NewHealthHandler constructs a HealthHandler. A nil or empty checks map
// makes /readyz always report ready.
func NewHealthHandler(checks map[string]func() error) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: 200 when all checks pass, 503 listing the failing ones.
func (h *HealthHandler) Register(r gin.IRouter) {
	// @Summary      Liveness check
	// @Description  Always returns OK while the stub is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// @Summary      Readiness check
	// @Description  Runs every named check and lists the failing ones
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]interface{}
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		var failing []string
		for name, check := range h.checks {
			if check != nil && check() != nil {
				failing = append(failing, name)
			}
		}
		if len(failing) > 0 {
			sort.Strings(failing)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failing": failing})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
