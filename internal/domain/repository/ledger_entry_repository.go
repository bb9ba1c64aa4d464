package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

// ReportFilter filtro común para los reportes diarios.
type ReportFilter struct {
	CompanyID  string
	ProductID  string
	CustomerID string
	From       time.Time
	To         time.Time
}

// DailyIncomeResult suma de entradas de un día.
type DailyIncomeResult struct {
	Date        string // YYYY-MM-DD
	TotalIncome int64
}

// LedgerEntryRepository puerto de persistencia de asientos. Es la única fuente de verdad de las
// relaciones asiento→producto y asiento→transacción.
type LedgerEntryRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	// ListByTransaction devuelve los asientos en orden de creación.
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.LedgerEntry, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.LedgerEntry, error)
	Delete(ctx context.Context, id string) error
	// SumByProduct devuelve Σ cantidades de entradas y salidas vigentes del producto.
	SumByProduct(ctx context.Context, productID string) (incoming, outgoing int64, err error)
	IncomeReport(ctx context.Context, filter ReportFilter) ([]DailyIncomeResult, error)
}
