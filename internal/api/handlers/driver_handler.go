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

type DriverStore interface {
	ListDrivers(ctx context.Context, f database.DriverFilter) ([]models.Driver, error)
	CreateDriver(ctx context.Context, d *models.Driver) error
	UpdateDriver(ctx context.Context, id primitive.ObjectID, p database.DriverPatch) (*models.Driver, error)
	DeleteDriver(ctx context.Context, id primitive.ObjectID) error
}

type DriverHandler struct {
	Store  DriverStore
	Logger *zap.Logger
}

type driverRequest struct {
	Name              *string   `json:"name"`
	CurrentShiftHours *float64  `json:"currentShiftHours" binding:"omitempty,gte=0"`
	Past7DayWorkHours []float64 `json:"past7DayWorkHours" binding:"omitempty,max=7,dive,gte=0"`
	IsFatigued        *bool     `json:"isFatigued"`
}

// GetDrivers lists drivers filtered by ?name= and ?isFatigued=.
func (h *DriverHandler) GetDrivers(c *gin.Context) {
	filter := database.DriverFilter{
		Name:       c.Query("name"),
		IsFatigued: boolQuery(c, "isFatigued"),
	}
	drivers, err := h.Store.ListDrivers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.Logger, err, "Error fetching drivers")
		return
	}
	c.JSON(http.StatusOK, drivers)
}

func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		badRequest(c, "Driver name is required.")
		return
	}

	d := models.NewDriver(strings.TrimSpace(*req.Name))
	if req.CurrentShiftHours != nil {
		d.CurrentShiftHours = *req.CurrentShiftHours
	}
	if req.Past7DayWorkHours != nil {
		d.Past7DayWorkHours = models.NormalizeWindow(req.Past7DayWorkHours)
	}
	if req.IsFatigued != nil {
		d.IsFatigued = *req.IsFatigued
	}

	if err := h.Store.CreateDriver(c.Request.Context(), &d); err != nil {
		respondError(c, h.Logger, err, "Error creating driver")
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	id, ok := objectIDParam(c, "driver")
	if !ok {
		return
	}

	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	patch := database.DriverPatch{
		CurrentShiftHours: req.CurrentShiftHours,
		IsFatigued:        req.IsFatigued,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			badRequest(c, "Driver name is required.")
			return
		}
		patch.Name = &name
	}
	if req.Past7DayWorkHours != nil {
		patch.Past7DayWorkHours = models.NormalizeWindow(req.Past7DayWorkHours)
	}

	d, err := h.Store.UpdateDriver(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.Logger, err, "Error updating driver")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	id, ok := objectIDParam(c, "driver")
	if !ok {
		return
	}
	if err := h.Store.DeleteDriver(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err, "Error deleting driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted successfully."})
}
