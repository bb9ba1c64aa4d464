package entity

import "time"

// Product representa un artículo del catálogo. No se borra físicamente: Active=false
// lo retira y elimina su balance de inventario.
type Product struct {
	ID          string
	CompanyID   string
	Name        string
	Description string
	Category    string
	Active      bool
	CreatedBy   string // UserID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
