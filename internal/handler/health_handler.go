package handler

import (
	"net/http"
	"time"

	"github.com/Maxencejules/payflow/internal/application"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports engine-and-store reachability.
type HealthHandler struct {
	service *application.PaymentService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(service *application.PaymentService) *HealthHandler {
	return &HealthHandler{service: service}
}

// RegisterRoutes registers health check routes on the router.
func (h *HealthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/health/ready", h.Health)
}

// Health handles GET /health. Returns 503 when the store or the provider
// is unreachable.
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":    "UP",
		"service":   "payflow-api",
		"timestamp": time.Now().UTC(),
	}

	if !h.service.Healthy(c.Request.Context()) {
		body["status"] = "DOWN"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	c.JSON(http.StatusOK, body)
}
