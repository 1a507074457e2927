package handlers

import (
	"net/http"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler holds the invoice service.
type InvoiceHandler struct {
	invoiceService services.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(is services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: is}
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req services.CreateInvoiceRequest
	if !bindJSON(c, &req, "CreateInvoice") {
		return
	}
	inv, err := h.invoiceService.CreateInvoice(req, actor)
	if err != nil {
		respondServiceError(c, err, "CreateInvoice", "Failed to create invoice.")
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	var filters models.InvoiceFilters
	var ok bool
	if filters.ClientID, ok = parseIDQuery(c, "client_id"); !ok {
		return
	}
	if filters.Page, filters.PageSize, ok = parsePagination(c); !ok {
		return
	}
	invoices, total, err := h.invoiceService.ListInvoices(filters)
	if err != nil {
		respondServiceError(c, err, "GetInvoices", "Failed to fetch invoices.")
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	respondList(c, invoices, total, filters.Page, filters.PageSize)
}

// GetInvoiceByID recomputes the totals before responding.
func (h *InvoiceHandler) GetInvoiceByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.invoiceService.GetInvoice(id)
	if err != nil {
		respondServiceError(c, err, "GetInvoiceByID", "Failed to fetch invoice.")
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateInvoiceRequest
	if !bindJSON(c, &req, "UpdateInvoice") {
		return
	}
	inv, err := h.invoiceService.UpdateInvoice(id, req, actor)
	if err != nil {
		respondServiceError(c, err, "UpdateInvoice", "Failed to update invoice.")
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.invoiceService.DeleteInvoice(id, actor); err != nil {
		respondServiceError(c, err, "DeleteInvoice", "Failed to delete invoice.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
