package entity

import "time"

// InventoryBalance es el agregado de stock de un producto (uno por producto).
// QuantityOnHand = Σ entradas − Σ salidas de los asientos vigentes; nunca negativo.
// IncomingIDs/OutgoingIDs se derivan de ledger_entries (no se mantienen a mano).
type InventoryBalance struct {
	CompanyID      string
	ProductID      string
	ProductName    string
	QuantityOnHand int64
	UnitPrice      Money // último precio de entrada
	IncomingIDs    []string
	OutgoingIDs    []string
	UpdatedAt      time.Time
}
