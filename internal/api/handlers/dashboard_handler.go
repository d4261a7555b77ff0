package handlers

import (
	"context"
	"net/http"

	"greencart-ops-api/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsStore interface {
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
}

type DashboardHandler struct {
	Store  StatsStore
	Logger *zap.Logger
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.Store.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err, "Error fetching dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
