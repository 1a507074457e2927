package services

import (
	"errors"
	"strings"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Product DTOs ---

type CreateProductRequest struct {
	Name         string                    `json:"name" binding:"required"`
	Description  *string                   `json:"description"`
	SellingPrice *decimal.Decimal          `json:"sellingPrice" binding:"required"`
	Components   []models.ProductComponent `json:"components"`
}

type UpdateProductRequest struct {
	Name         *string                   `json:"name"`
	Description  *string                   `json:"description"`
	SellingPrice *decimal.Decimal          `json:"sellingPrice"`
	Components   []models.ProductComponent `json:"components"`
}

// --- ProductService Interface ---
type ProductService interface {
	CreateProduct(req CreateProductRequest) (*models.Product, error)
	GetProduct(id int64) (*models.Product, error)
	ListProducts(includeInactive bool, page, pageSize int) ([]models.Product, int, error)
	UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(id int64) error
}

type productService struct {
	productRepo  repositories.ProductRepository
	materialRepo repositories.MaterialRepository
	tx           repositories.TxRunner
}

// NewProductService creates a new instance of ProductService.
func NewProductService(productRepo repositories.ProductRepository, materialRepo repositories.MaterialRepository, tx repositories.TxRunner) ProductService {
	return &productService{productRepo: productRepo, materialRepo: materialRepo, tx: tx}
}

// validateComponents checks that every composition pair names an existing material.
func (s *productService) validateComponents(components []models.ProductComponent) error {
	for _, c := range components {
		if !c.Quantity.IsPositive() {
			return validationErr("component quantity must be positive")
		}
		if _, err := s.materialRepo.GetByID(c.MaterialID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return validationErr("component material %d does not exist", c.MaterialID)
			}
			return err
		}
	}
	return nil
}

func (s *productService) CreateProduct(req CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationErr("name is required")
	}
	if req.SellingPrice == nil {
		return nil, validationErr("sellingPrice is required")
	}
	if req.SellingPrice.IsNegative() {
		return nil, validationErr("sellingPrice must not be negative")
	}
	if err := s.validateComponents(req.Components); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:         name,
		Description:  req.Description,
		SellingPrice: *req.SellingPrice,
		Components:   models.ProductComponents(req.Components),
	}
	if product.Components == nil {
		product.Components = models.ProductComponents{}
	}
	err := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		_, err := s.productRepo.Create(exec, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProduct(id int64) (*models.Product, error) {
	p, err := s.productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) ListProducts(includeInactive bool, page, pageSize int) ([]models.Product, int, error) {
	return s.productRepo.List(includeInactive, page, pageSize)
}

func (s *productService) UpdateProduct(id int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationErr("name must not be empty")
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return nil, validationErr("sellingPrice must not be negative")
		}
		product.SellingPrice = *req.SellingPrice
	}
	if req.Components != nil {
		if err := s.validateComponents(req.Components); err != nil {
			return nil, err
		}
		product.Components = models.ProductComponents(req.Components)
	}
	err = s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		return s.productRepo.Update(exec, product)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) DeleteProduct(id int64) error {
	err := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		return s.productRepo.SoftDelete(exec, id)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
