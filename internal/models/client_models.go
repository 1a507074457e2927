package models

import "time"

// Client represents a customer factory.
type Client struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	FactoryName *string   `json:"factoryName,omitempty" db:"factory_name"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ClientSnapshot is the copy of client identity frozen on an order or invoice
// at creation time. Later edits to the client do not touch it.
type ClientSnapshot struct {
	Name        string  `json:"name"`
	Phone       *string `json:"phone,omitempty"`
	FactoryName *string `json:"factoryName,omitempty"`
}

// Snapshot captures the client's current identity fields.
func (c *Client) Snapshot() ClientSnapshot {
	return ClientSnapshot{Name: c.Name, Phone: c.Phone, FactoryName: c.FactoryName}
}
