package services

import (
	"errors"
	"fmt"
	"strings"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// --- Material DTOs ---

type CreateMaterialRequest struct {
	Name          string           `json:"name" binding:"required"`
	Unit          string           `json:"unit"`
	CurrentStock  *decimal.Decimal `json:"currentStock"`
	MinStockLevel *decimal.Decimal `json:"minStockLevel"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice"`
	IsOrderType   bool             `json:"isOrderType"`
}

// UpdateMaterialRequest edits catalogue fields. Stock is changed only through the stock operations.
type UpdateMaterialRequest struct {
	Name              *string          `json:"name"`
	Unit              *string          `json:"unit"`
	MinStockLevel     *decimal.Decimal `json:"minStockLevel"`
	SellingPrice      *decimal.Decimal `json:"sellingPrice"`
	ClearSellingPrice bool             `json:"clearSellingPrice"`
	IsOrderType       *bool            `json:"isOrderType"`
}

type StockCountRequest struct {
	ActualStock *decimal.Decimal `json:"actualStock" binding:"required"`
	Notes       *string          `json:"notes"`
}

type AdjustStockRequest struct {
	NewStock *decimal.Decimal `json:"newStock" binding:"required"`
	Reason   *string          `json:"reason"`
}

type StockQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   *string         `json:"reason"`
}

type PurchaseReceiptRequest struct {
	Quantity  decimal.Decimal `json:"quantity"`
	Supplier  *string         `json:"supplier"`
	Reference *string         `json:"reference"`
}

// StockChangeResult is returned by every stock operation.
type StockChangeResult struct {
	Material *models.Material        `json:"material"`
	Record   *models.InventoryRecord `json:"record"`
}

// --- MaterialService Interface ---
type MaterialService interface {
	CreateMaterial(req CreateMaterialRequest, actor models.Actor) (*models.Material, error)
	GetMaterial(id int64) (*models.Material, error)
	ListMaterials(includeInactive bool, page, pageSize int) ([]models.Material, int, error)
	ListLowStock() ([]models.Material, error)
	UpdateMaterial(id int64, req UpdateMaterialRequest) (*models.Material, error)
	DeleteMaterial(id int64) error

	RecordStockCount(id int64, req StockCountRequest, actor models.Actor) (*StockChangeResult, error)
	AdjustStock(id int64, req AdjustStockRequest, actor models.Actor) (*StockChangeResult, error)
	RecordWastage(id int64, req StockQuantityRequest, actor models.Actor) (*StockChangeResult, error)
	Withdraw(id int64, req StockQuantityRequest, actor models.Actor) (*StockChangeResult, error)
	ReceivePurchase(id int64, req PurchaseReceiptRequest, actor models.Actor) (*StockChangeResult, error)
	ListInventoryRecords(filters models.InventoryRecordFilters) ([]models.InventoryRecord, int, error)

	// ConsumeForOrder decrements stock for a completed order inside the caller's transaction.
	ConsumeForOrder(exec repositories.SQLExecutor, materialID int64, quantity decimal.Decimal, orderID int64, actor models.Actor) (*models.Material, error)
	// NotifyIfLowStock publishes a low stock event when m sits at or below its minimum.
	NotifyIfLowStock(m *models.Material, actor models.Actor)
}

// --- materialService Implementation ---
type materialService struct {
	materialRepo  repositories.MaterialRepository
	inventoryRepo repositories.InventoryRecordRepository
	tx            repositories.TxRunner
	events        EventPublisher
}

// NewMaterialService creates a new instance of MaterialService.
func NewMaterialService(materialRepo repositories.MaterialRepository, inventoryRepo repositories.InventoryRecordRepository, tx repositories.TxRunner, events EventPublisher) MaterialService {
	return &materialService{materialRepo: materialRepo, inventoryRepo: inventoryRepo, tx: tx, events: events}
}

// stockMutation describes one ledger-producing stock change.
type stockMutation struct {
	recordType models.InventoryRecordType
	// target returns the new absolute stock before clamping at zero.
	target    func(current decimal.Decimal) decimal.Decimal
	reason    *string
	notes     *string
	reference *string
	orderID   *int64
}

// applyStock is the single funnel for stock changes: it locks the material,
// writes the clamped stock and exactly one ledger record.
func (s *materialService) applyStock(exec repositories.SQLExecutor, materialID int64, actor models.Actor, m stockMutation) (*StockChangeResult, error) {
	mat, err := s.materialRepo.GetByIDForUpdate(exec, materialID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}

	previous := mat.CurrentStock
	next := m.target(previous)
	if next.IsNegative() {
		next = decimal.Zero
	}

	if err := s.materialRepo.SetStock(exec, mat.ID, next); err != nil {
		return nil, err
	}
	record := &models.InventoryRecord{
		MaterialID:    mat.ID,
		Type:          m.recordType,
		PreviousStock: previous,
		SystemStock:   previous,
		ActualStock:   next,
		Difference:    next.Sub(previous),
		Reason:        m.reason,
		Notes:         m.notes,
		OrderID:       m.orderID,
		Reference:     m.reference,
		MaterialName:  mat.Name,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		record.CreatedBy = &uid
	}
	if _, err := s.inventoryRepo.Create(exec, record); err != nil {
		return nil, err
	}
	mat.CurrentStock = next
	return &StockChangeResult{Material: mat, Record: record}, nil
}

func (s *materialService) runStock(materialID int64, actor models.Actor, m stockMutation) (*StockChangeResult, error) {
	var res *StockChangeResult
	err := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		var err error
		res, err = s.applyStock(exec, materialID, actor, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info().Int64("material_id", materialID).Str("type", string(m.recordType)).
		Str("previous", res.Record.PreviousStock.String()).Str("current", res.Material.CurrentStock.String()).
		Msg("Stock changed")
	s.NotifyIfLowStock(res.Material, actor)
	return res, nil
}

func (s *materialService) CreateMaterial(req CreateMaterialRequest, actor models.Actor) (*models.Material, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationErr("name is required")
	}
	mat := &models.Material{Name: name, Unit: strings.TrimSpace(req.Unit), IsOrderType: req.IsOrderType}
	if mat.Unit == "" {
		mat.Unit = "m"
	}
	if req.MinStockLevel != nil {
		if req.MinStockLevel.IsNegative() {
			return nil, validationErr("minStockLevel must not be negative")
		}
		mat.MinStockLevel = *req.MinStockLevel
	}
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return nil, validationErr("sellingPrice must not be negative")
		}
		mat.SellingPrice = decimal.NewNullDecimal(*req.SellingPrice)
	}
	initial := decimal.Zero
	if req.CurrentStock != nil {
		if req.CurrentStock.IsNegative() {
			return nil, validationErr("currentStock must not be negative")
		}
		initial = *req.CurrentStock
	}

	err := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		if _, err := s.materialRepo.Create(exec, mat); err != nil {
			return err
		}
		if !initial.IsPositive() {
			return nil
		}
		reason := "initial stock"
		res, err := s.applyStock(exec, mat.ID, actor, stockMutation{
			recordType: models.InventoryAdjustment,
			target:     func(decimal.Decimal) decimal.Decimal { return initial },
			reason:     &reason,
		})
		if err != nil {
			return err
		}
		mat.CurrentStock = res.Material.CurrentStock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mat, nil
}

func (s *materialService) GetMaterial(id int64) (*models.Material, error) {
	m, err := s.materialRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *materialService) ListMaterials(includeInactive bool, page, pageSize int) ([]models.Material, int, error) {
	return s.materialRepo.List(includeInactive, page, pageSize)
}

func (s *materialService) ListLowStock() ([]models.Material, error) {
	return s.materialRepo.ListLowStock()
}

func (s *materialService) UpdateMaterial(id int64, req UpdateMaterialRequest) (*models.Material, error) {
	mat, err := s.GetMaterial(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationErr("name must not be empty")
		}
		mat.Name = name
	}
	if req.Unit != nil {
		mat.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.MinStockLevel != nil {
		if req.MinStockLevel.IsNegative() {
			return nil, validationErr("minStockLevel must not be negative")
		}
		mat.MinStockLevel = *req.MinStockLevel
	}
	switch {
	case req.ClearSellingPrice:
		mat.SellingPrice = decimal.NullDecimal{}
	case req.SellingPrice != nil:
		if req.SellingPrice.IsNegative() {
			return nil, validationErr("sellingPrice must not be negative")
		}
		mat.SellingPrice = decimal.NewNullDecimal(*req.SellingPrice)
	}
	if req.IsOrderType != nil {
		mat.IsOrderType = *req.IsOrderType
	}
	err = s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		return s.materialRepo.Update(exec, mat)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, err
	}
	return mat, nil
}

func (s *materialService) DeleteMaterial(id int64) error {
	err := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		return s.materialRepo.SoftDelete(exec, id)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrMaterialNotFound
	}
	return err
}

func (s *materialService) RecordStockCount(id int64, req StockCountRequest, actor models.Actor) (*StockChangeResult, error) {
	if req.ActualStock == nil {
		return nil, validationErr("actualStock is required")
	}
	if req.ActualStock.IsNegative() {
		return nil, validationErr("actualStock must not be negative")
	}
	actual := *req.ActualStock
	return s.runStock(id, actor, stockMutation{
		recordType: models.InventoryDailyCount,
		target:     func(decimal.Decimal) decimal.Decimal { return actual },
		notes:      req.Notes,
	})
}

// AdjustStock sets the stock to an absolute value.
func (s *materialService) AdjustStock(id int64, req AdjustStockRequest, actor models.Actor) (*StockChangeResult, error) {
	if req.NewStock == nil {
		return nil, validationErr("newStock is required")
	}
	if req.NewStock.IsNegative() {
		return nil, validationErr("newStock must not be negative")
	}
	newStock := *req.NewStock
	return s.runStock(id, actor, stockMutation{
		recordType: models.InventoryAdjustment,
		target:     func(decimal.Decimal) decimal.Decimal { return newStock },
		reason:     req.Reason,
	})
}

func (s *materialService) RecordWastage(id int64, req StockQuantityRequest, actor models.Actor) (*StockChangeResult, error) {
	if !req.Quantity.IsPositive() {
		return nil, validationErr("quantity must be positive")
	}
	return s.runStock(id, actor, stockMutation{
		recordType: models.InventoryWastage,
		target:     func(cur decimal.Decimal) decimal.Decimal { return cur.Sub(req.Quantity) },
		reason:     req.Reason,
	})
}

func (s *materialService) Withdraw(id int64, req StockQuantityRequest, actor models.Actor) (*StockChangeResult, error) {
	if !req.Quantity.IsPositive() {
		return nil, validationErr("quantity must be positive")
	}
	return s.runStock(id, actor, stockMutation{
		recordType: models.InventoryUsage,
		target:     func(cur decimal.Decimal) decimal.Decimal { return cur.Sub(req.Quantity) },
		reason:     req.Reason,
	})
}

func (s *materialService) ReceivePurchase(id int64, req PurchaseReceiptRequest, actor models.Actor) (*StockChangeResult, error) {
	if !req.Quantity.IsPositive() {
		return nil, validationErr("quantity must be positive")
	}
	var reason *string
	if req.Supplier != nil && strings.TrimSpace(*req.Supplier) != "" {
		r := fmt.Sprintf("purchase from %s", strings.TrimSpace(*req.Supplier))
		reason = &r
	}
	return s.runStock(id, actor, stockMutation{
		recordType: models.InventoryPurchase,
		target:     func(cur decimal.Decimal) decimal.Decimal { return cur.Add(req.Quantity) },
		reason:     reason,
		reference:  req.Reference,
	})
}

func (s *materialService) ListInventoryRecords(filters models.InventoryRecordFilters) ([]models.InventoryRecord, int, error) {
	if filters.Type != nil && !models.InventoryRecordType(*filters.Type).Valid() {
		return nil, 0, validationErr("unknown inventory record type %q", *filters.Type)
	}
	return s.inventoryRepo.List(filters)
}

func (s *materialService) ConsumeForOrder(exec repositories.SQLExecutor, materialID int64, quantity decimal.Decimal, orderID int64, actor models.Actor) (*models.Material, error) {
	reason := fmt.Sprintf("order #%d completed", orderID)
	oid := orderID
	res, err := s.applyStock(exec, materialID, actor, stockMutation{
		recordType: models.InventoryUsage,
		target:     func(cur decimal.Decimal) decimal.Decimal { return cur.Sub(quantity) },
		reason:     &reason,
		orderID:    &oid,
	})
	if err != nil {
		return nil, err
	}
	return res.Material, nil
}

func (s *materialService) NotifyIfLowStock(m *models.Material, actor models.Actor) {
	if m == nil || !m.IsLowStock() || s.events == nil {
		return
	}
	msg := fmt.Sprintf("Material %q is low on stock: %s %s left (minimum %s)", m.Name, m.CurrentStock, m.Unit, m.MinStockLevel)
	s.events.Publish(NewDomainEvent(EventMaterialLowStock, actor.UserID, m.ID, "material", msg))
}
