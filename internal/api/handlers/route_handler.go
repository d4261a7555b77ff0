package handlers

import (
	"context"
	"net/http"
	"strings"

	"greencart-ops-api/internal/database"
	"greencart-ops-api/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RouteStore interface {
	ListRoutes(ctx context.Context, f database.RouteFilter) ([]models.Route, error)
	CreateRoute(ctx context.Context, r *models.Route) error
	UpdateRoute(ctx context.Context, id primitive.ObjectID, p database.RoutePatch) (*models.Route, error)
	DeleteRoute(ctx context.Context, id primitive.ObjectID) error
}

type RouteHandler struct {
	Store  RouteStore
	Logger *zap.Logger
}

type CreateRouteRequest struct {
	RouteID      string              `json:"routeID" binding:"required"`
	Distance     float64             `json:"distance" binding:"required,gt=0"`
	TrafficLevel models.TrafficLevel `json:"trafficLevel" binding:"required,oneof=Low Medium High"`
	BaseTime     float64             `json:"baseTime" binding:"required,gt=0"`
}

type UpdateRouteRequest struct {
	RouteID      *string              `json:"routeID"`
	Distance     *float64             `json:"distance" binding:"omitempty,gt=0"`
	TrafficLevel *models.TrafficLevel `json:"trafficLevel" binding:"omitempty,oneof=Low Medium High"`
	BaseTime     *float64             `json:"baseTime" binding:"omitempty,gt=0"`
}

// GetRoutes lists routes filtered by ?routeID= and ?trafficLevel=.
func (h *RouteHandler) GetRoutes(c *gin.Context) {
	filter := database.RouteFilter{
		RouteID:      c.Query("routeID"),
		TrafficLevel: models.TrafficLevel(c.Query("trafficLevel")),
	}
	routes, err := h.Store.ListRoutes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.Logger, err, "Error fetching routes")
		return
	}
	c.JSON(http.StatusOK, routes)
}

func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	code := strings.TrimSpace(req.RouteID)
	if code == "" {
		badRequest(c, "Route ID is required.")
		return
	}

	r := models.Route{
		RouteID:      code,
		Distance:     req.Distance,
		TrafficLevel: req.TrafficLevel,
		BaseTime:     req.BaseTime,
	}
	if err := h.Store.CreateRoute(c.Request.Context(), &r); err != nil {
		respondError(c, h.Logger, err, "Error creating route")
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	id, ok := objectIDParam(c, "route")
	if !ok {
		return
	}

	var req UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	patch := database.RoutePatch{
		Distance:     req.Distance,
		TrafficLevel: req.TrafficLevel,
		BaseTime:     req.BaseTime,
	}
	if req.RouteID != nil {
		code := strings.TrimSpace(*req.RouteID)
		if code == "" {
			badRequest(c, "Route ID is required.")
			return
		}
		patch.RouteID = &code
	}

	r, err := h.Store.UpdateRoute(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.Logger, err, "Error updating route")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	id, ok := objectIDParam(c, "route")
	if !ok {
		return
	}
	if err := h.Store.DeleteRoute(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err, "Error deleting route")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully."})
}
