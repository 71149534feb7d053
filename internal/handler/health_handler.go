package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twbeatles/hwpmaster-api/internal/service"
)

// HealthHandler serves the service health probe.
type HealthHandler struct {
	healthService service.HealthService
}

func NewHealthHandler(svc service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: svc}
}

// RegisterRoutes wires the health endpoint onto the group.
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Check)
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := h.healthService.Check()
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
