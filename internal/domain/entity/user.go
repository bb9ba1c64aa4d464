package entity

import "time"

// Roles válidos para User.
const (
	RoleCEO    = "ceo"
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// IsValidRole indica si el rol pertenece al catálogo.
func IsValidRole(role string) bool {
	switch role {
	case RoleCEO, RoleAdmin, RoleSeller:
		return true
	}
	return false
}

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Username     string // único global
	PasswordHash string // bcrypt hash
	Name         string
	PhoneNumber  string
	Role         string // ceo, admin, seller
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
