package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthService interface {
	IsOK(ctx context.Context) error
}

type HealthHandler struct {
	log *zap.Logger
	svc HealthService
}

func NewHealthHandler(log *zap.Logger, svc HealthService) *HealthHandler {
	return &HealthHandler{
		log: log,
		svc: svc,
	}
}

// Ping
// @Summary Liveness probe.
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseWithMessage "Success"
// @Router /health/ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusOK,
		Message: "pong",
	})
}

// Health
// @Summary Readiness probe.
// @Description Verifies database connectivity.
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseWithMessage "Success"
// @Failure 503 {object} ResponseWithMessage "Database unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.svc.IsOK(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, ResponseWithMessage{
			Status:  StatusErr,
			Message: "database unreachable",
		})

		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusOK,
		Message: "healthy",
	})
}
