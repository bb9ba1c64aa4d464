package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money importe con moneda (ISO 4217, p. ej. USD, UZS).
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// RecordMovementRequest entrada para registrar una entrada o salida suelta.
type RecordMovementRequest struct {
	ProductID      string `json:"product_id" validate:"required,uuid"`
	Quantity       int64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice      Money  `json:"unit_price" validate:"required"`
	CounterpartyID string `json:"counterparty_id"`
}

// LedgerEntryResponse asiento del libro de inventario.
type LedgerEntryResponse struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	ProductID      string    `json:"product_id"`
	TransactionID  string    `json:"transaction_id,omitempty"`
	CounterpartyID string    `json:"counterparty_id,omitempty"`
	Quantity       int64     `json:"quantity"`
	UnitPrice      Money     `json:"unit_price"`
	CurrentStock   int64     `json:"current_stock"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// BalanceResponse balance de stock de un producto con sus asientos vigentes.
type BalanceResponse struct {
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	QuantityOnHand int64     `json:"quantity_on_hand"`
	UnitPrice      Money     `json:"unit_price"`
	IncomingIDs    []string  `json:"incoming_ids"`
	OutgoingIDs    []string  `json:"outgoing_ids"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BalanceListResponse lista paginada de balances.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// DailyIncomeResponse entradas agregadas por día.
type DailyIncomeResponse struct {
	Date        string `json:"date"`
	TotalIncome int64  `json:"total_income"`
}

// IncomeReportResponse reporte de entradas en un período.
type IncomeReportResponse struct {
	From  time.Time             `json:"from"`
	To    time.Time             `json:"to"`
	Items []DailyIncomeResponse `json:"items"`
}
