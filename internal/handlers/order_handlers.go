package handlers

import (
	"net/http"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/services"
	"factory_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order and dashboard services.
type OrderHandler struct {
	orderService services.OrderService
	statsService services.StatsService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService, ss services.StatsService) *OrderHandler {
	return &OrderHandler{orderService: os, statsService: ss}
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req services.CreateOrderRequest
	if !bindJSON(c, &req, "CreateOrder") {
		return
	}
	order, err := h.orderService.CreateOrder(req, actor)
	if err != nil {
		respondServiceError(c, err, "CreateOrder", "Failed to create order.")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders handles fetching orders with filters.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters
	var ok bool
	if filters.ClientID, ok = parseIDQuery(c, "client_id"); !ok {
		return
	}
	if filters.InvoiceID, ok = parseIDQuery(c, "invoice_id"); !ok {
		return
	}
	if filters.MaterialID, ok = parseIDQuery(c, "material_id"); !ok {
		return
	}
	if state := c.Query("state"); state != "" {
		filters.State = &state
	}
	if filters.Page, filters.PageSize, ok = parsePagination(c); !ok {
		return
	}

	orders, total, err := h.orderService.ListOrders(filters)
	if err != nil {
		respondServiceError(c, err, "GetOrders", "Failed to fetch orders.")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondList(c, orders, total, filters.Page, filters.PageSize)
}

// GetOrderByID handles GET /orders/:id.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(id)
	if err != nil {
		respondServiceError(c, err, "GetOrderByID", "Failed to fetch order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder applies the caller's role-scoped partial update.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload services.OrderUpdatePayload
	if !bindJSON(c, &payload, "UpdateOrder") {
		return
	}
	update, err := services.NewOrderUpdate(actor.Role, payload)
	if err != nil {
		respondServiceError(c, err, "UpdateOrder", "Failed to update order.")
		return
	}
	order, err := h.orderService.UpdateOrder(id, update, actor)
	if err != nil {
		respondServiceError(c, err, "UpdateOrder", "Failed to update order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /orders/:id.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.DeleteOrder(id, actor); err != nil {
		respondServiceError(c, err, "DeleteOrder", "Failed to delete order.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// GetFinancialStats handles GET /orders/stats/financial.
func (h *OrderHandler) GetFinancialStats(c *gin.Context) {
	stats, err := h.statsService.Financial()
	if err != nil {
		respondServiceError(c, err, "GetFinancialStats", "Failed to compute financial stats.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTimeseriesStats handles GET /orders/stats/timeseries?period&interval.
func (h *OrderHandler) GetTimeseriesStats(c *gin.Context) {
	period, ok := utils.ParsePositiveInt(c.Query("period"), services.DefaultStatsDays)
	if !ok {
		utils.RespondValidationFailed(c, "period must be a positive number of days")
		return
	}
	interval := c.DefaultQuery("interval", "day")
	if !services.ValidInterval(interval) {
		utils.RespondValidationFailed(c, "interval must be one of day, week, month")
		return
	}
	ts, err := h.statsService.Timeseries(period, interval)
	if err != nil {
		respondServiceError(c, err, "GetTimeseriesStats", "Failed to compute timeseries.")
		return
	}
	c.JSON(http.StatusOK, ts)
}
