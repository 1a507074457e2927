package services

import (
	"bytes"
	"encoding/json"

	"factory_crm_backend/internal/models"

	"github.com/shopspring/decimal"
)

// OptionalID distinguishes an absent reference from an explicit null.
type OptionalID struct {
	Set bool
	ID  *int64
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.ID = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.ID = &id
	return nil
}

// SetTo builds a present OptionalID pointing at id.
func SetTo(id int64) OptionalID {
	return OptionalID{Set: true, ID: &id}
}

// changes reports whether o would replace current.
func (o OptionalID) changes(current *int64) bool {
	if !o.Set {
		return false
	}
	if o.ID == nil || current == nil {
		return o.ID != current
	}
	return *o.ID != *current
}

// OrderUpdatePayload is the wire shape of PUT /orders/:id. It is narrowed to
// a role-specific update before reaching the service.
type OrderUpdatePayload struct {
	Client      OptionalID       `json:"client"`
	Invoice     OptionalID       `json:"invoice"`
	Material    OptionalID       `json:"material"`
	Product     OptionalID       `json:"product"`
	Type        *string          `json:"type"`
	TotalPrice  *decimal.Decimal `json:"totalPrice"`
	Repeats     *int             `json:"repeats"`
	SheetWidth  *decimal.Decimal `json:"sheetWidth"`
	SheetHeight *decimal.Decimal `json:"sheetHeight"`
	Deposit     *decimal.Decimal `json:"deposit"`
	Notes       *string          `json:"notes"`
	DesignLink  *string          `json:"designLink"`
	OrderState  *string          `json:"orderState"`
	ClientName  *string          `json:"clientName"`
}

// orderPatch is the normalised change applied by the order service.
type orderPatch OrderUpdatePayload

// OrderUpdate is a role-specific order change.
type OrderUpdate interface {
	patch() orderPatch
}

// AdminOrderUpdate may change every field.
type AdminOrderUpdate struct {
	OrderUpdatePayload
}

func (u AdminOrderUpdate) patch() orderPatch { return orderPatch(u.OrderUpdatePayload) }

// DesignerOrderUpdate cannot set totalPrice or move the order to another client or invoice.
type DesignerOrderUpdate struct {
	OrderState  *string
	DesignLink  *string
	Material    OptionalID
	Product     OptionalID
	SheetWidth  *decimal.Decimal
	SheetHeight *decimal.Decimal
	Repeats     *int
	Notes       *string
	Deposit     *decimal.Decimal
	ClientName  *string
}

func (u DesignerOrderUpdate) patch() orderPatch {
	return orderPatch{
		OrderState:  u.OrderState,
		DesignLink:  u.DesignLink,
		Material:    u.Material,
		Product:     u.Product,
		SheetWidth:  u.SheetWidth,
		SheetHeight: u.SheetHeight,
		Repeats:     u.Repeats,
		Notes:       u.Notes,
		Deposit:     u.Deposit,
		ClientName:  u.ClientName,
	}
}

// WorkerOrderUpdate changes the production state only.
type WorkerOrderUpdate struct {
	OrderState *string
}

func (u WorkerOrderUpdate) patch() orderPatch { return orderPatch{OrderState: u.OrderState} }

// FinancialOrderUpdate changes payment fields and notes.
type FinancialOrderUpdate struct {
	Deposit    *decimal.Decimal
	TotalPrice *decimal.Decimal
	Notes      *string
}

func (u FinancialOrderUpdate) patch() orderPatch {
	return orderPatch{Deposit: u.Deposit, TotalPrice: u.TotalPrice, Notes: u.Notes}
}

// NewOrderUpdate narrows p to the fields role may change. Fields outside the
// role's set are dropped. Roles without update rights get ErrForbidden.
func NewOrderUpdate(role string, p OrderUpdatePayload) (OrderUpdate, error) {
	switch role {
	case models.RoleAdmin:
		return AdminOrderUpdate{OrderUpdatePayload: p}, nil
	case models.RoleDesigner:
		return DesignerOrderUpdate{
			OrderState:  p.OrderState,
			DesignLink:  p.DesignLink,
			Material:    p.Material,
			Product:     p.Product,
			SheetWidth:  p.SheetWidth,
			SheetHeight: p.SheetHeight,
			Repeats:     p.Repeats,
			Notes:       p.Notes,
			Deposit:     p.Deposit,
			ClientName:  p.ClientName,
		}, nil
	case models.RoleWorker:
		return WorkerOrderUpdate{OrderState: p.OrderState}, nil
	case models.RoleFinancial:
		return FinancialOrderUpdate{Deposit: p.Deposit, TotalPrice: p.TotalPrice, Notes: p.Notes}, nil
	}
	return nil, ErrForbidden
}

// Scales of the order columns. Inputs finer than these would be rounded on write.
const (
	dimensionPlaces = 3
	moneyPlaces     = 2
)

func maxPlaces(field string, v *decimal.Decimal, places int32) error {
	if v != nil && !v.Equal(v.Round(places)) {
		return validationErr("%s allows at most %d decimal places", field, places)
	}
	return nil
}

// validate checks value ranges before any persistence work.
func (p orderPatch) validate() error {
	for field, v := range map[string]*decimal.Decimal{
		"totalPrice": p.TotalPrice, "deposit": p.Deposit, "sheetWidth": p.SheetWidth, "sheetHeight": p.SheetHeight,
	} {
		if err := nonNegative(field, v); err != nil {
			return err
		}
	}
	for field, v := range map[string]*decimal.Decimal{"sheetWidth": p.SheetWidth, "sheetHeight": p.SheetHeight} {
		if err := maxPlaces(field, v, dimensionPlaces); err != nil {
			return err
		}
	}
	for field, v := range map[string]*decimal.Decimal{"totalPrice": p.TotalPrice, "deposit": p.Deposit} {
		if err := maxPlaces(field, v, moneyPlaces); err != nil {
			return err
		}
	}
	if p.Repeats != nil && *p.Repeats < 0 {
		return validationErr("repeats must not be negative")
	}
	if p.OrderState != nil && !models.OrderState(*p.OrderState).Valid() {
		return validationErr("invalid orderState %q", *p.OrderState)
	}
	return nil
}
