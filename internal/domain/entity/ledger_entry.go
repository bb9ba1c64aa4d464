package entity

import "time"

// Tipos de asiento del libro de inventario.
const (
	EntryKindIncoming = "IN"  // entrada (Income)
	EntryKindOutgoing = "OUT" // salida (Outgoing)
)

// LedgerEntry asiento inmutable de un único movimiento de stock.
// CurrentStock es la foto del balance del producto después de aplicar el asiento.
type LedgerEntry struct {
	ID             string
	CompanyID      string
	Kind           string
	ProductID      string
	TransactionID  string // vacío si el asiento se registró suelto
	CounterpartyID string // proveedor en entradas; vacío o cliente en salidas
	Quantity       int64  // siempre > 0
	UnitPrice      Money
	CurrentStock   int64
	CreatedAt      time.Time
	CreatedBy      string
}
