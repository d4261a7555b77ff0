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

type OrderStore interface {
	ListOrders(ctx context.Context, f database.OrderFilter) ([]models.OrderView, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	UpdateOrder(ctx context.Context, id primitive.ObjectID, p database.OrderPatch) (*models.Order, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
}

type OrderHandler struct {
	Store  OrderStore
	Logger *zap.Logger
}

type CreateOrderRequest struct {
	OrderID       string   `json:"orderID" binding:"required"`
	ValueRs       *float64 `json:"value_rs" binding:"required,gte=0"`
	AssignedRoute string   `json:"assignedRoute" binding:"required"`
}

// UpdateOrderRequest edits catalogue fields only; delivery state is set by
// simulation runs.
type UpdateOrderRequest struct {
	OrderID       *string  `json:"orderID"`
	ValueRs       *float64 `json:"value_rs" binding:"omitempty,gte=0"`
	AssignedRoute *string  `json:"assignedRoute"`
}

// GetOrders lists orders filtered by ?orderID= and ?hasBeenDelivered=, with
// the assigned route populated.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	filter := database.OrderFilter{
		OrderID:   c.Query("orderID"),
		Delivered: boolQuery(c, "hasBeenDelivered"),
	}
	orders, err := h.Store.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.Logger, err, "Error fetching orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	code := strings.TrimSpace(req.OrderID)
	if code == "" {
		badRequest(c, "Order ID is required.")
		return
	}
	routeID, err := primitive.ObjectIDFromHex(req.AssignedRoute)
	if err != nil {
		badRequest(c, "Invalid route ID.")
		return
	}

	o := models.Order{OrderID: code, ValueRs: *req.ValueRs, AssignedRoute: routeID}
	if err := h.Store.CreateOrder(c.Request.Context(), &o); err != nil {
		respondError(c, h.Logger, err, "Error creating order")
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := objectIDParam(c, "order")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	patch := database.OrderPatch{ValueRs: req.ValueRs}
	if req.OrderID != nil {
		code := strings.TrimSpace(*req.OrderID)
		if code == "" {
			badRequest(c, "Order ID is required.")
			return
		}
		patch.OrderID = &code
	}
	if req.AssignedRoute != nil {
		routeID, err := primitive.ObjectIDFromHex(*req.AssignedRoute)
		if err != nil {
			badRequest(c, "Invalid route ID.")
			return
		}
		patch.AssignedRoute = &routeID
	}

	o, err := h.Store.UpdateOrder(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.Logger, err, "Error updating order")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := objectIDParam(c, "order")
	if !ok {
		return
	}
	if err := h.Store.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err, "Error deleting order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully."})
}
