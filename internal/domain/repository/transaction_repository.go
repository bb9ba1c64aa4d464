package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

// TransactionFilter filtro de listado de importaciones/ventas.
type TransactionFilter struct {
	CompanyID string
	Kind      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// DailySalesResult agregado diario de ventas por moneda.
type DailySalesResult struct {
	Date          string // YYYY-MM-DD
	Currency      string
	TotalQuantity int64
	TotalSales    decimal.Decimal // Σ cantidad × precio de venta
	SalesCount    int
}

// TransactionRepository puerto de persistencia de Import/Sale.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	// GetByID devuelve nil, nil si no existe. EntryIDs se rellena desde ledger_entries.
	GetByID(ctx context.Context, id string) (*entity.StockTransaction, error)
	UpdatePaymentMethod(ctx context.Context, id, method string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TransactionFilter) ([]*entity.StockTransaction, int, error)
	SalesReport(ctx context.Context, filter ReportFilter) ([]DailySalesResult, error)
}
