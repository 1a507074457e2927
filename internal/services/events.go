package services

import (
	"time"

	"factory_crm_backend/internal/models"

	"github.com/oklog/ulid/v2"
)

// EventType names a domain event.
type EventType string

const (
	EventOrderCreated     EventType = "order.created"
	EventOrderUpdated     EventType = "order.updated"
	EventOrderCompleted   EventType = "order.completed"
	EventOrderDeleted     EventType = "order.deleted"
	EventInvoiceCreated   EventType = "invoice.created"
	EventInvoiceUpdated   EventType = "invoice.updated"
	EventInvoiceDeleted   EventType = "invoice.deleted"
	EventMaterialLowStock EventType = "material.low_stock"
)

var eventRecipients = map[EventType][]string{
	EventOrderCreated:     {models.RoleAdmin, models.RoleDesigner, models.RoleWorker},
	EventOrderUpdated:     {models.RoleAdmin, models.RoleDesigner, models.RoleWorker, models.RoleFinancial},
	EventOrderCompleted:   {models.RoleAdmin, models.RoleDesigner, models.RoleWorker, models.RoleFinancial},
	EventOrderDeleted:     {models.RoleAdmin, models.RoleDesigner, models.RoleWorker, models.RoleFinancial},
	EventInvoiceCreated:   {models.RoleAdmin, models.RoleFinancial},
	EventInvoiceUpdated:   {models.RoleAdmin, models.RoleFinancial},
	EventInvoiceDeleted:   {models.RoleAdmin, models.RoleFinancial},
	EventMaterialLowStock: {models.RoleAdmin},
}

// DomainEvent is a business fact published after a successful write.
type DomainEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	OccurredAt  time.Time `json:"occurredAt"`
	ActorID     int64     `json:"actorId"`
	RelatedID   int64     `json:"relatedId"`
	RelatedType string    `json:"relatedType"`
	Message     string    `json:"message"`
	Roles       []string  `json:"-"`
}

// NewDomainEvent stamps a new event with a ULID and its recipient roles.
func NewDomainEvent(t EventType, actorID, relatedID int64, relatedType, message string) DomainEvent {
	return DomainEvent{
		ID:          ulid.Make().String(),
		Type:        t,
		OccurredAt:  time.Now().UTC(),
		ActorID:     actorID,
		RelatedID:   relatedID,
		RelatedType: relatedType,
		Message:     message,
		Roles:       eventRecipients[t],
	}
}

// TargetsRole reports whether role is among the event's recipients.
func (e DomainEvent) TargetsRole(role string) bool {
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// EventPublisher accepts events without blocking the caller.
type EventPublisher interface {
	Publish(event DomainEvent)
}
