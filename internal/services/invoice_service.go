package services

import (
	"errors"
	"fmt"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// --- Invoice DTOs ---

type CreateInvoiceRequest struct {
	ClientID int64            `json:"client" binding:"required"`
	Tax      *decimal.Decimal `json:"tax"`
	Shipping *decimal.Decimal `json:"shipping"`
	Discount *decimal.Decimal `json:"discount"`
	Notes    *string          `json:"notes"`
}

type UpdateInvoiceRequest struct {
	Tax      *decimal.Decimal `json:"tax"`
	Shipping *decimal.Decimal `json:"shipping"`
	Discount *decimal.Decimal `json:"discount"`
	Notes    *string          `json:"notes"`
}

// InvoiceRecalculator rebuilds an invoice's derived totals from its orders.
type InvoiceRecalculator interface {
	Recalculate(invoiceID int64) (*models.Invoice, error)
}

// StatsInvalidator drops cached dashboard figures after a write.
type StatsInvalidator interface {
	InvalidateStats()
}

// --- InvoiceService Interface ---
type InvoiceService interface {
	InvoiceRecalculator
	CreateInvoice(req CreateInvoiceRequest, actor models.Actor) (*models.Invoice, error)
	GetInvoice(invoiceID int64) (*models.Invoice, error)
	ListInvoices(filters models.InvoiceFilters) ([]models.Invoice, int, error)
	UpdateInvoice(invoiceID int64, req UpdateInvoiceRequest, actor models.Actor) (*models.Invoice, error)
	DeleteInvoice(invoiceID int64, actor models.Actor) error
}

// --- invoiceService Implementation ---
type invoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	orderRepo   repositories.OrderRepository
	clientRepo  repositories.ClientRepository
	tx          repositories.TxRunner
	events      EventPublisher
	stats       StatsInvalidator
}

// NewInvoiceService creates a new instance of InvoiceService.
func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, orderRepo repositories.OrderRepository, clientRepo repositories.ClientRepository,
	tx repositories.TxRunner, events EventPublisher, stats StatsInvalidator) InvoiceService {
	return &invoiceService{invoiceRepo: invoiceRepo, orderRepo: orderRepo, clientRepo: clientRepo, tx: tx, events: events, stats: stats}
}

func nonNegative(field string, v *decimal.Decimal) error {
	if v != nil && v.IsNegative() {
		return validationErr("%s must not be negative", field)
	}
	return nil
}

// Recalculate is a full, idempotent recompute from the current child orders.
func (s *invoiceService) Recalculate(invoiceID int64) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		var err error
		inv, err = s.invoiceRepo.GetByID(exec, invoiceID)
		if err != nil {
			return err
		}
		orders, err := s.orderRepo.ListByInvoice(exec, invoiceID)
		if err != nil {
			return err
		}
		RecomputeInvoiceTotals(orders, inv.Tax, inv.Shipping, inv.Discount).Apply(inv)
		inv.Orders = orders
		return s.invoiceRepo.UpdateTotals(exec, inv)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) CreateInvoice(req CreateInvoiceRequest, actor models.Actor) (*models.Invoice, error) {
	client, err := s.clientRepo.GetClientByID(req.ClientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, validationErr("client %d does not exist", req.ClientID)
		}
		return nil, err
	}

	inv := &models.Invoice{ClientID: client.ID, ClientSnapshot: client.Snapshot(), Notes: req.Notes}
	if actor.UserID != 0 {
		uid := actor.UserID
		inv.CreatedBy = &uid
	}
	// Financial fields are honoured for admins only.
	if actor.IsAdmin() {
		for field, v := range map[string]*decimal.Decimal{"tax": req.Tax, "shipping": req.Shipping, "discount": req.Discount} {
			if err := nonNegative(field, v); err != nil {
				return nil, err
			}
		}
		if req.Tax != nil {
			inv.Tax = *req.Tax
		}
		if req.Shipping != nil {
			inv.Shipping = *req.Shipping
		}
		if req.Discount != nil {
			inv.Discount = *req.Discount
		}
	}
	RecomputeInvoiceTotals(nil, inv.Tax, inv.Shipping, inv.Discount).Apply(inv)

	err = s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		_, err := s.invoiceRepo.Create(exec, inv)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(NewDomainEvent(EventInvoiceCreated, actor.UserID, inv.ID, "invoice",
		fmt.Sprintf("Invoice #%d created for %s", inv.ID, inv.ClientSnapshot.Name)))
	return inv, nil
}

// GetInvoice recomputes the totals before returning, so reads are always fresh.
func (s *invoiceService) GetInvoice(invoiceID int64) (*models.Invoice, error) {
	return s.Recalculate(invoiceID)
}

func (s *invoiceService) ListInvoices(filters models.InvoiceFilters) ([]models.Invoice, int, error) {
	return s.invoiceRepo.List(filters)
}

func (s *invoiceService) UpdateInvoice(invoiceID int64, req UpdateInvoiceRequest, actor models.Actor) (*models.Invoice, error) {
	if actor.IsAdmin() {
		for field, v := range map[string]*decimal.Decimal{"tax": req.Tax, "shipping": req.Shipping, "discount": req.Discount} {
			if err := nonNegative(field, v); err != nil {
				return nil, err
			}
		}
	}

	var inv *models.Invoice
	err := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		var err error
		inv, err = s.invoiceRepo.GetByID(exec, invoiceID)
		if err != nil {
			return err
		}
		if actor.IsAdmin() {
			if req.Tax != nil {
				inv.Tax = *req.Tax
			}
			if req.Shipping != nil {
				inv.Shipping = *req.Shipping
			}
			if req.Discount != nil {
				inv.Discount = *req.Discount
			}
		}
		if req.Notes != nil {
			inv.Notes = req.Notes
		}
		orders, err := s.orderRepo.ListByInvoice(exec, invoiceID)
		if err != nil {
			return err
		}
		RecomputeInvoiceTotals(orders, inv.Tax, inv.Shipping, inv.Discount).Apply(inv)
		inv.Orders = orders
		if err := s.invoiceRepo.Update(exec, inv); err != nil {
			return err
		}
		return s.invoiceRepo.UpdateTotals(exec, inv)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	s.afterWrite(NewDomainEvent(EventInvoiceUpdated, actor.UserID, inv.ID, "invoice",
		fmt.Sprintf("Invoice #%d updated", inv.ID)))
	return inv, nil
}

// DeleteInvoice removes the invoice together with its orders.
func (s *invoiceService) DeleteInvoice(invoiceID int64, actor models.Actor) error {
	err := s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		return s.invoiceRepo.Delete(exec, invoiceID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvoiceNotFound
		}
		return err
	}
	s.afterWrite(NewDomainEvent(EventInvoiceDeleted, actor.UserID, invoiceID, "invoice",
		fmt.Sprintf("Invoice #%d deleted", invoiceID)))
	return nil
}

func (s *invoiceService) afterWrite(event DomainEvent) {
	if s.events != nil {
		s.events.Publish(event)
	}
	if s.stats != nil {
		s.stats.InvalidateStats()
	}
	log.Debug().Str("event", string(event.Type)).Int64("invoice_id", event.RelatedID).Msg("Invoice write committed")
}
