package models

import "time"

// Role names carried in the JWT role claim.
const (
	RoleAdmin        = "admin"
	RoleReceptionist = "receptionist"
	RoleDesigner     = "designer"
	RoleWorker       = "worker"
	RoleFinancial    = "financial"
)

// AllRoles lists every role a user may hold.
var AllRoles = []string{RoleAdmin, RoleReceptionist, RoleDesigner, RoleWorker, RoleFinancial}

// IsValidRole reports whether role is one of AllRoles.
func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a staff account of the factory.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username" db:"username"`
	FullName  *string   `json:"fullName,omitempty" db:"full_name"`
	Role      string    `json:"role" db:"role"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Actor identifies the authenticated user behind an operation.
type Actor struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
