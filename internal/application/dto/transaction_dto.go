package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLineRequest línea de una importación o venta.
type TransactionLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice Money  `json:"unit_price" validate:"required"`
}

// CreateTransactionRequest entrada para crear una importación (proveedor) o una venta (cliente).
// Totals es opcional: si no viene se calcula por moneda a partir de las líneas.
type CreateTransactionRequest struct {
	CounterpartyID  string                     `json:"counterparty_id"`
	Lines           []TransactionLineRequest   `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod   string                     `json:"payment_method" validate:"required,oneof=cash card transfer debit"`
	Totals          map[string]decimal.Decimal `json:"totals"`
	AdditionalCosts decimal.Decimal            `json:"additional_costs"`
	DiscountPercent decimal.Decimal            `json:"discount_percent"`
}

// UpdatePaymentMethodRequest único cambio permitido sobre una transacción creada.
type UpdatePaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash card transfer debit"`
}

// TransactionLineResponse línea guardada.
type TransactionLineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice Money  `json:"unit_price"`
}

// TransactionResponse salida de una importación o venta.
type TransactionResponse struct {
	ID              string                     `json:"id"`
	Kind            string                     `json:"kind"`
	CounterpartyID  string                     `json:"counterparty_id,omitempty"`
	Lines           []TransactionLineResponse  `json:"lines"`
	PaymentMethod   string                     `json:"payment_method"`
	Totals          map[string]decimal.Decimal `json:"totals"`
	AdditionalCosts decimal.Decimal            `json:"additional_costs"`
	DiscountPercent decimal.Decimal            `json:"discount_percent"`
	EntryIDs        []string                   `json:"entry_ids"`
	Entries         []LedgerEntryResponse      `json:"entries,omitempty"`
	CreatedBy       string                     `json:"created_by,omitempty"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// TransactionListResponse lista paginada de transacciones.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// DailySalesResponse ventas agregadas por día y moneda.
type DailySalesResponse struct {
	Date          string          `json:"date"`
	Currency      string          `json:"currency"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	SalesCount    int             `json:"sales_count"`
}

// SalesReportResponse reporte de ventas en un período.
type SalesReportResponse struct {
	From  time.Time            `json:"from"`
	To    time.Time            `json:"to"`
	Items []DailySalesResponse `json:"items"`
}
