package handlers

import (
	"context"
	"net/http"

	"greencart-ops-api/internal/models"
	"greencart-ops-api/internal/simulation"
	"greencart-ops-api/internal/summary"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// recentSimulations is how many runs the history panel shows.
const recentSimulations = 10

type SimulationRunner interface {
	Run(ctx context.Context, p simulation.Params) (*models.Simulation, error)
}

type SimulationStore interface {
	RecentSimulations(ctx context.Context, limit int) ([]models.Simulation, error)
	DeleteSimulation(ctx context.Context, id primitive.ObjectID) error
}

type SummaryGenerator interface {
	Generate(ctx context.Context, id primitive.ObjectID) (summary.Result, error)
}

type SimulationHandler struct {
	Runner    SimulationRunner
	Store     SimulationStore
	Summaries SummaryGenerator
	Logger    *zap.Logger
}

// RunSimulation executes one run over the current pending orders.
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var params simulation.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		badRequest(c, "Number of drivers, max hours, and start time are required and must be positive.")
		return
	}

	sim, err := h.Runner.Run(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.Logger, err, "Error running simulation")
		return
	}
	c.JSON(http.StatusCreated, sim)
}

func (h *SimulationHandler) GetSimulations(c *gin.Context) {
	sims, err := h.Store.RecentSimulations(c.Request.Context(), recentSimulations)
	if err != nil {
		respondError(c, h.Logger, err, "Error fetching simulation history")
		return
	}
	c.JSON(http.StatusOK, sims)
}

func (h *SimulationHandler) DeleteSimulation(c *gin.Context) {
	id, ok := objectIDParam(c, "simulation")
	if !ok {
		return
	}
	if err := h.Store.DeleteSimulation(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err, "Error deleting simulation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Simulation deleted successfully."})
}

// GenerateSummary backfills the AI summary of a run, or returns the stored one.
func (h *SimulationHandler) GenerateSummary(c *gin.Context) {
	id, ok := objectIDParam(c, "simulation")
	if !ok {
		return
	}
	res, err := h.Summaries.Generate(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to get AI summary")
		return
	}
	c.JSON(http.StatusOK, res)
}
