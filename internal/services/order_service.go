package services

import (
	"errors"
	"fmt"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// --- Order DTOs ---

// CreateOrderRequest needs a client unless an invoice is given.
type CreateOrderRequest struct {
	ClientID    *int64           `json:"client"`
	InvoiceID   *int64           `json:"invoice"`
	MaterialID  *int64           `json:"material"`
	ProductID   *int64           `json:"product"`
	Type        *string          `json:"type"`
	TotalPrice  *decimal.Decimal `json:"totalPrice"`
	Repeats     *int             `json:"repeats"`
	SheetWidth  *decimal.Decimal `json:"sheetWidth"`
	SheetHeight *decimal.Decimal `json:"sheetHeight"`
	Deposit     *decimal.Decimal `json:"deposit"`
	Notes       *string          `json:"notes"`
	DesignLink  *string          `json:"designLink"`
	OrderState  *string          `json:"orderState"`
}

// --- OrderService Interface ---
type OrderService interface {
	CreateOrder(req CreateOrderRequest, actor models.Actor) (*models.Order, error)
	GetOrder(orderID int64) (*models.Order, error)
	ListOrders(filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrder(orderID int64, update OrderUpdate, actor models.Actor) (*models.Order, error)
	DeleteOrder(orderID int64, actor models.Actor) error
}

// OrderServiceDeps groups the collaborators of the order service.
type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Materials repositories.MaterialRepository
	Products  repositories.ProductRepository
	Clients   repositories.ClientRepository
	Invoices  repositories.InvoiceRepository
	Stock     MaterialService
	Totals    InvoiceRecalculator
	Tx        repositories.TxRunner
	Events    EventPublisher
	Stats     StatsInvalidator
}

// --- orderService Implementation ---
type orderService struct {
	deps OrderServiceDeps
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(deps OrderServiceDeps) OrderService {
	return &orderService{deps: deps}
}

// writeOutcome carries what the post-commit effects need.
type writeOutcome struct {
	order        *models.Order
	invoiceIDs   []int64
	consumed     *models.Material
	stockApplied bool
}

func (s *orderService) CreateOrder(req CreateOrderRequest, actor models.Actor) (*models.Order, error) {
	if req.ClientID == nil && req.InvoiceID == nil {
		return nil, validationErr("client is required unless the order belongs to an invoice")
	}
	state := models.OrderStatePending
	if req.OrderState != nil {
		state = models.OrderState(*req.OrderState)
	}
	check := orderPatch{
		TotalPrice: req.TotalPrice, Deposit: req.Deposit, SheetWidth: req.SheetWidth,
		SheetHeight: req.SheetHeight, Repeats: req.Repeats, OrderState: req.OrderState,
	}
	if err := check.validate(); err != nil {
		return nil, err
	}

	order := &models.Order{
		ClientID:   req.ClientID,
		InvoiceID:  req.InvoiceID,
		MaterialID: req.MaterialID,
		ProductID:  req.ProductID,
		Repeats:    1,
		OrderState: state,
		Notes:      req.Notes,
		DesignLink: req.DesignLink,
	}
	if req.Repeats != nil {
		order.Repeats = *req.Repeats
	}
	if req.SheetWidth != nil {
		order.SheetWidth = *req.SheetWidth
	}
	if req.SheetHeight != nil {
		order.SheetHeight = *req.SheetHeight
	}
	if req.Deposit != nil {
		order.Deposit = *req.Deposit
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		order.CreatedBy = &uid
	}

	var out writeOutcome
	err := s.deps.Tx.WithinTx(func(exec repositories.SQLExecutor) error {
		if err := s.attachParties(exec, order, OptionalID{Set: req.ClientID != nil, ID: req.ClientID}, OptionalID{Set: req.InvoiceID != nil, ID: req.InvoiceID}); err != nil {
			return err
		}

		product, material, err := s.loadSelection(exec, order.ProductID, order.MaterialID, true)
		if err != nil {
			return err
		}
		order.OrderSize = OrderSize(&order.Repeats, &order.SheetHeight)
		priced, err := ResolvePrice(PricingInput{
			Product: product, Material: material, OrderSize: order.OrderSize,
			ManualType: req.Type, ManualPrice: req.TotalPrice,
		})
		if err != nil {
			return err
		}
		order.Type, order.TotalPrice = priced.Type, priced.TotalPrice
		order.SyncRemaining()

		if err := s.guardCompletion(order, material); err != nil {
			return err
		}
		if _, err := s.deps.Orders.Create(exec, order); err != nil {
			return err
		}
		out.order = order
		out.invoiceIDs = invoiceSet(nil, order.InvoiceID)
		return s.consumeIfCompleted(exec, order, material, actor, &out)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(out, actor, NewDomainEvent(EventOrderCreated, actor.UserID, order.ID, "order",
		fmt.Sprintf("New order #%d (%s) for %s", order.ID, order.Type, order.ClientSnapshot.Name)))
	return s.reload(order), nil
}

func (s *orderService) GetOrder(orderID int64) (*models.Order, error) {
	o, err := s.deps.Orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *orderService) ListOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.State != nil && !models.OrderState(*filters.State).Valid() {
		return nil, 0, validationErr("invalid state filter %q", *filters.State)
	}
	return s.deps.Orders.List(filters)
}

func (s *orderService) UpdateOrder(orderID int64, update OrderUpdate, actor models.Actor) (*models.Order, error) {
	if update == nil {
		return nil, ErrForbidden
	}
	p := update.patch()
	if err := p.validate(); err != nil {
		return nil, err
	}

	var out writeOutcome
	var wasDeducted bool
	err := s.deps.Tx.WithinTx(func(exec repositories.SQLExecutor) error {
		order, err := s.deps.Orders.GetByIDForUpdate(exec, orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		wasDeducted = order.StockDeducted
		previousInvoice := order.InvoiceID
		previousSize := order.OrderSize

		if err := s.attachParties(exec, order, p.Client, p.Invoice); err != nil {
			return err
		}
		if order.ClientID == nil && order.InvoiceID == nil {
			return validationErr("client is required unless the order belongs to an invoice")
		}
		if p.ClientName != nil {
			order.ClientSnapshot.Name = *p.ClientName
		}

		selectionChanged := p.Material.changes(order.MaterialID) || p.Product.changes(order.ProductID)
		if p.Material.Set {
			order.MaterialID = p.Material.ID
		}
		if p.Product.Set {
			order.ProductID = p.Product.ID
		}

		// Unspecified dimensions keep their persisted values.
		if p.Repeats != nil {
			order.Repeats = *p.Repeats
		}
		if p.SheetWidth != nil {
			order.SheetWidth = *p.SheetWidth
		}
		if p.SheetHeight != nil {
			order.SheetHeight = *p.SheetHeight
		}
		order.OrderSize = OrderSize(&order.Repeats, &order.SheetHeight)
		sizeChanged := !order.OrderSize.Equal(previousSize)

		if p.OrderState != nil {
			order.OrderState = models.OrderState(*p.OrderState)
		}
		needsStock := order.OrderState == models.OrderStateDone && !order.StockDeducted
		reprice := selectionChanged || (sizeChanged && (order.MaterialID != nil || order.ProductID != nil))

		var material *models.Material
		if reprice || (needsStock && order.MaterialID != nil) {
			var product *models.Product
			product, material, err = s.loadSelection(exec, order.ProductID, order.MaterialID, selectionChanged)
			if err != nil {
				return err
			}
			if reprice {
				manualPrice := p.TotalPrice
				if manualPrice == nil {
					current := order.TotalPrice
					manualPrice = &current
				}
				manualType := p.Type
				if manualType == nil {
					current := order.Type
					manualType = &current
				}
				priced, err := ResolvePrice(PricingInput{
					Product: product, Material: material, OrderSize: order.OrderSize,
					ManualType: manualType, ManualPrice: manualPrice,
				})
				if err != nil {
					return err
				}
				order.Type, order.TotalPrice = priced.Type, priced.TotalPrice
			}
		}
		if !reprice {
			if p.TotalPrice != nil {
				order.TotalPrice = *p.TotalPrice
			}
			if p.Type != nil && order.MaterialID == nil && order.ProductID == nil {
				order.Type = *p.Type
			}
		}

		if p.Deposit != nil {
			order.Deposit = *p.Deposit
		}
		if p.Notes != nil {
			order.Notes = p.Notes
		}
		if p.DesignLink != nil {
			order.DesignLink = p.DesignLink
		}
		order.SyncRemaining()

		if err := s.guardCompletion(order, material); err != nil {
			return err
		}
		if err := s.deps.Orders.Update(exec, order); err != nil {
			return err
		}
		out.order = order
		out.invoiceIDs = invoiceSet(previousInvoice, order.InvoiceID)
		return s.consumeIfCompleted(exec, order, material, actor, &out)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order := out.order
	event := NewDomainEvent(EventOrderUpdated, actor.UserID, order.ID, "order",
		fmt.Sprintf("Order #%d updated (%s)", order.ID, order.OrderState))
	if out.stockApplied && !wasDeducted {
		event = NewDomainEvent(EventOrderCompleted, actor.UserID, order.ID, "order",
			fmt.Sprintf("Order #%d completed", order.ID))
	}
	s.afterCommit(out, actor, event)
	return s.reload(order), nil
}

// DeleteOrder removes an order. Only admins may delete past the pending state.
// Stock already consumed by a completed order is not restored.
func (s *orderService) DeleteOrder(orderID int64, actor models.Actor) error {
	var out writeOutcome
	err := s.deps.Tx.WithinTx(func(exec repositories.SQLExecutor) error {
		order, err := s.deps.Orders.GetByIDForUpdate(exec, orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !actor.IsAdmin() && order.OrderState != models.OrderStatePending {
			return fmt.Errorf("%w: only pending orders can be deleted", ErrForbidden)
		}
		if err := s.deps.Orders.Delete(exec, orderID); err != nil {
			return err
		}
		out.order = order
		out.invoiceIDs = invoiceSet(nil, order.InvoiceID)
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	s.afterCommit(out, actor, NewDomainEvent(EventOrderDeleted, actor.UserID, orderID, "order",
		fmt.Sprintf("Order #%d deleted", orderID)))
	return nil
}

// attachParties applies client and invoice changes and refreshes the client snapshot.
func (s *orderService) attachParties(exec repositories.SQLExecutor, order *models.Order, client, invoice OptionalID) error {
	if invoice.Set {
		order.InvoiceID = invoice.ID
		if invoice.ID != nil {
			inv, err := s.deps.Invoices.GetByID(exec, *invoice.ID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return validationErr("invoice %d does not exist", *invoice.ID)
				}
				return err
			}
			if order.ClientID == nil && !client.Set {
				order.ClientSnapshot = inv.ClientSnapshot
			}
		}
	}
	if client.Set {
		order.ClientID = client.ID
		if client.ID != nil {
			c, err := s.deps.Clients.GetClientByID(*client.ID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return validationErr("client %d does not exist", *client.ID)
				}
				return err
			}
			order.ClientSnapshot = c.Snapshot()
		}
	}
	return nil
}

// loadSelection fetches the product and locks the material row. With
// requireActive, soft-deleted entries are rejected.
func (s *orderService) loadSelection(exec repositories.SQLExecutor, productID, materialID *int64, requireActive bool) (*models.Product, *models.Material, error) {
	var product *models.Product
	var material *models.Material
	if productID != nil {
		p, err := s.deps.Products.GetByID(*productID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, validationErr("product %d does not exist", *productID)
			}
			return nil, nil, err
		}
		if requireActive && !p.IsActive {
			return nil, nil, validationErr("product %q is inactive", p.Name)
		}
		product = p
	}
	if materialID != nil {
		m, err := s.deps.Materials.GetByIDForUpdate(exec, *materialID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, validationErr("material %d does not exist", *materialID)
			}
			return nil, nil, err
		}
		if requireActive && !m.IsActive {
			return nil, nil, validationErr("material %q is inactive", m.Name)
		}
		material = m
	}
	return product, material, nil
}

// guardCompletion blocks entering done when the material cannot cover the order size.
func (s *orderService) guardCompletion(order *models.Order, material *models.Material) error {
	if order.OrderState != models.OrderStateDone || order.StockDeducted || material == nil {
		return nil
	}
	if material.CurrentStock.LessThan(order.OrderSize) {
		return &InsufficientStockError{
			MaterialID:   material.ID,
			MaterialName: material.Name,
			Required:     order.OrderSize,
			Available:    material.CurrentStock,
			Shortage:     order.OrderSize.Sub(material.CurrentStock),
		}
	}
	return nil
}

// consumeIfCompleted decrements stock at most once per order, guarded by the
// stock_deducted compare-and-swap.
func (s *orderService) consumeIfCompleted(exec repositories.SQLExecutor, order *models.Order, material *models.Material, actor models.Actor, out *writeOutcome) error {
	if order.OrderState != models.OrderStateDone || order.StockDeducted || material == nil {
		return nil
	}
	swapped, err := s.deps.Orders.MarkStockDeducted(exec, order.ID)
	if err != nil {
		return err
	}
	if !swapped {
		return nil
	}
	consumed, err := s.deps.Stock.ConsumeForOrder(exec, material.ID, order.OrderSize, order.ID, actor)
	if err != nil {
		return err
	}
	order.StockDeducted = true
	out.consumed = consumed
	out.stockApplied = true
	return nil
}

// afterCommit runs the best-effort effects. Failures are logged only.
func (s *orderService) afterCommit(out writeOutcome, actor models.Actor, event DomainEvent) {
	for _, invoiceID := range out.invoiceIDs {
		if _, err := s.deps.Totals.Recalculate(invoiceID); err != nil {
			log.Warn().Err(err).Int64("invoice_id", invoiceID).Int64("order_id", event.RelatedID).Msg("Invoice recalculation failed")
		}
	}
	if out.consumed != nil && s.deps.Stock != nil {
		s.deps.Stock.NotifyIfLowStock(out.consumed, actor)
	}
	if s.deps.Events != nil {
		s.deps.Events.Publish(event)
	}
	if s.deps.Stats != nil {
		s.deps.Stats.InvalidateStats()
	}
}

// reload returns the populated order, falling back to the written copy.
func (s *orderService) reload(order *models.Order) *models.Order {
	fresh, err := s.deps.Orders.GetByID(order.ID)
	if err != nil {
		log.Warn().Err(err).Int64("order_id", order.ID).Msg("Reloading order after write failed")
		return order
	}
	return fresh
}

func invoiceSet(previous, current *int64) []int64 {
	var ids []int64
	if previous != nil {
		ids = append(ids, *previous)
	}
	if current != nil && (previous == nil || *current != *previous) {
		ids = append(ids, *current)
	}
	return ids
}
