package entity

import "time"

// Customer cliente de la empresa: contraparte de las ventas.
type Customer struct {
	ID          string
	CompanyID   string
	Name        string
	Region      string
	PhoneNumber string
	Active      bool
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
