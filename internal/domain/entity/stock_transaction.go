package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de stock.
const (
	TransactionKindImport = "IMPORT" // entrada de mercancía desde un proveedor
	TransactionKindSale   = "SALE"   // venta a un cliente
)

// Métodos de pago admitidos.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentDebit    = "debit"
)

// IsValidPaymentMethod valida contra la enumeración cerrada.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentDebit:
		return true
	}
	return false
}

// EntryKindFor devuelve el tipo de asiento que genera cada tipo de transacción.
func EntryKindFor(kind string) string {
	if kind == TransactionKindSale {
		return EntryKindOutgoing
	}
	return EntryKindIncoming
}

// TransactionLine línea (producto, cantidad, precio) de una importación o venta.
type TransactionLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
}

// StockTransaction documento padre (Import o Sale) que agrupa los asientos creados juntos.
// Se revierte como unidad; solo PaymentMethod es editable después de creado.
type StockTransaction struct {
	ID              string
	CompanyID       string
	Kind            string
	CounterpartyID  string // proveedor (IMPORT) o cliente (SALE)
	Lines           []TransactionLine
	PaymentMethod   string
	Totals          map[string]decimal.Decimal // total por moneda
	AdditionalCosts decimal.Decimal            // solo IMPORT
	DiscountPercent decimal.Decimal            // solo SALE, 0..100
	EntryIDs        []string                   // derivado de ledger_entries
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
