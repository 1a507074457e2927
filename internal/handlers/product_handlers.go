package handlers

import (
	"net/http"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ProductHandler holds the product service.
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req, "CreateProduct") {
		return
	}
	p, err := h.productService.CreateProduct(req)
	if err != nil {
		respondServiceError(c, err, "CreateProduct", "Failed to create product.")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	products, total, err := h.productService.ListProducts(c.Query("include_inactive") == "true", page, pageSize)
	if err != nil {
		respondServiceError(c, err, "GetProducts", "Failed to fetch products.")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	respondList(c, products, total, page, pageSize)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.productService.GetProduct(id)
	if err != nil {
		respondServiceError(c, err, "GetProductByID", "Failed to fetch product.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductRequest
	if !bindJSON(c, &req, "UpdateProduct") {
		return
	}
	p, err := h.productService.UpdateProduct(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateProduct", "Failed to update product.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(id); err != nil {
		respondServiceError(c, err, "DeleteProduct", "Failed to delete product.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated successfully"})
}
