package models

import "time"

// Notification is a per-recipient message created by the event fan-out.
// Only the read state changes after creation.
type Notification struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user" db:"user_id"`
	Type        string     `json:"type" db:"type"`
	Message     string     `json:"message" db:"message"`
	RelatedID   *int64     `json:"relatedId,omitempty" db:"related_id"`
	RelatedType *string    `json:"relatedType,omitempty" db:"related_type"`
	Read        bool       `json:"read" db:"read"`
	ReadAt      *time.Time `json:"readAt,omitempty" db:"read_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
