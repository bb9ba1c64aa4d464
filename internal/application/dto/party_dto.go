package dto

import "time"

// PartyRequest entrada común para crear o actualizar proveedores y clientes.
type PartyRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Region      string `json:"region" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Region      string    `json:"region"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerResponse salida de un cliente.
type CustomerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Region      string    `json:"region"`
	PhoneNumber string    `json:"phone_number"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
