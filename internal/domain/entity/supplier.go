package entity

import "time"

// Supplier proveedor: contraparte de las importaciones (entradas de stock).
type Supplier struct {
	ID          string
	CompanyID   string
	Name        string
	Region      string
	PhoneNumber string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
