package handlers

import (
	"net/http"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// MaterialHandler exposes the material registry and its stock ledger.
type MaterialHandler struct {
	materialService services.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler.
func NewMaterialHandler(ms services.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: ms}
}

func (h *MaterialHandler) CreateMaterial(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req services.CreateMaterialRequest
	if !bindJSON(c, &req, "CreateMaterial") {
		return
	}
	m, err := h.materialService.CreateMaterial(req, actor)
	if err != nil {
		respondServiceError(c, err, "CreateMaterial", "Failed to create material.")
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MaterialHandler) GetMaterials(c *gin.Context) {
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	includeInactive := c.Query("include_inactive") == "true"
	materials, total, err := h.materialService.ListMaterials(includeInactive, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetMaterials", "Failed to fetch materials.")
		return
	}
	if materials == nil {
		materials = []models.Material{}
	}
	respondList(c, materials, total, page, pageSize)
}

func (h *MaterialHandler) GetLowStock(c *gin.Context) {
	materials, err := h.materialService.ListLowStock()
	if err != nil {
		respondServiceError(c, err, "GetLowStock", "Failed to fetch low stock materials.")
		return
	}
	if materials == nil {
		materials = []models.Material{}
	}
	c.JSON(http.StatusOK, gin.H{"data": materials})
}

func (h *MaterialHandler) GetMaterialByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	m, err := h.materialService.GetMaterial(id)
	if err != nil {
		respondServiceError(c, err, "GetMaterialByID", "Failed to fetch material.")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MaterialHandler) UpdateMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateMaterialRequest
	if !bindJSON(c, &req, "UpdateMaterial") {
		return
	}
	m, err := h.materialService.UpdateMaterial(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateMaterial", "Failed to update material.")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.materialService.DeleteMaterial(id); err != nil {
		respondServiceError(c, err, "DeleteMaterial", "Failed to delete material.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Material deactivated successfully"})
}

// stockOp binds the request body and runs one stock operation for the path material.
func stockOp[T any](c *gin.Context, op string, run func(id int64, req T, actor models.Actor) (*services.StockChangeResult, error)) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req T
	if !bindJSON(c, &req, op) {
		return
	}
	res, err := run(id, req, actor)
	if err != nil {
		respondServiceError(c, err, op, "Failed to change stock.")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *MaterialHandler) RecordStockCount(c *gin.Context) {
	stockOp(c, "RecordStockCount", h.materialService.RecordStockCount)
}

func (h *MaterialHandler) AdjustStock(c *gin.Context) {
	stockOp(c, "AdjustStock", h.materialService.AdjustStock)
}

func (h *MaterialHandler) RecordWastage(c *gin.Context) {
	stockOp(c, "RecordWastage", h.materialService.RecordWastage)
}

func (h *MaterialHandler) Withdraw(c *gin.Context) {
	stockOp(c, "Withdraw", h.materialService.Withdraw)
}

func (h *MaterialHandler) ReceivePurchase(c *gin.Context) {
	stockOp(c, "ReceivePurchase", h.materialService.ReceivePurchase)
}

// GetInventoryRecords lists the stock ledger.
func (h *MaterialHandler) GetInventoryRecords(c *gin.Context) {
	var filters models.InventoryRecordFilters
	var ok bool
	if filters.MaterialID, ok = parseIDQuery(c, "material_id"); !ok {
		return
	}
	if filters.OrderID, ok = parseIDQuery(c, "order_id"); !ok {
		return
	}
	if t := c.Query("type"); t != "" {
		filters.Type = &t
	}
	if filters.Page, filters.PageSize, ok = parsePagination(c); !ok {
		return
	}
	records, total, err := h.materialService.ListInventoryRecords(filters)
	if err != nil {
		respondServiceError(c, err, "GetInventoryRecords", "Failed to fetch inventory records.")
		return
	}
	if records == nil {
		records = []models.InventoryRecord{}
	}
	respondList(c, records, total, filters.Page, filters.PageSize)
}
