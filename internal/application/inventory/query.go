package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/inventory"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

// ListTransactionsInput filtros del listado: days (today | last-week | last-month) o rango from/to.
type ListTransactionsInput struct {
	CompanyID string
	Kind      string
	Days      string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

func (uc *LedgerUseCase) getTransaction(ctx context.Context, companyID, kind, id string) (*entity.StockTransaction, error) {
	txn, err := uc.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil || txn.CompanyID != companyID || (kind != "" && txn.Kind != kind) {
		return nil, domain.ErrNotFound
	}
	return txn, nil
}

// GetTransaction devuelve la transacción con sus asientos.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, companyID, kind, id string) (*entity.StockTransaction, []*entity.LedgerEntry, error) {
	txn, err := uc.getTransaction(ctx, companyID, kind, id)
	if err != nil {
		return nil, nil, err
	}
	entries, err := uc.repos.Entries.ListByTransaction(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return txn, entries, nil
}

// ListTransactions lista importaciones o ventas, más recientes primero. Devuelve también el total.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, in ListTransactionsInput) ([]*entity.StockTransaction, int, error) {
	from, to, err := inventory.ResolveWindow(in.Days, in.From, in.To, uc.now())
	if err != nil {
		return nil, 0, err
	}
	return uc.repos.Transactions.List(ctx, repository.TransactionFilter{
		CompanyID: in.CompanyID,
		Kind:      in.Kind,
		From:      from,
		To:        to,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
}

// GetBalance balance del producto con sus asientos vigentes. Usa la caché si hay un snapshot.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, companyID, productID string) (*entity.InventoryBalance, error) {
	if cached, err := uc.cache.Get(ctx, companyID, productID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		uc.log.Debug().Err(err).Str("product_id", productID).Msg("lectura de caché fallida")
	}
	// La generación se lee antes que la BD: si una mutación invalida entre medias, Set no guarda nada.
	version, verErr := uc.cache.Version(ctx, companyID, productID)
	b, err := uc.repos.Balances.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if verErr != nil {
		uc.log.Debug().Err(verErr).Str("product_id", productID).Msg("lectura de generación fallida; no se cachea")
		return b, nil
	}
	if err := uc.cache.Set(ctx, b, version); err != nil {
		uc.log.Debug().Err(err).Str("product_id", productID).Msg("escritura de caché fallida")
	}
	return b, nil
}

// ListBalances lista balances de productos activos; search filtra por nombre.
func (uc *LedgerUseCase) ListBalances(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.InventoryBalance, int, error) {
	return uc.repos.Balances.List(ctx, companyID, search, limit, offset)
}

// Reconcile recalcula Σ entradas − Σ salidas desde el libro y lo compara con el balance guardado.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, companyID, productID string) (*inventory.Reconciliation, error) {
	product, err := findActiveProduct(ctx, uc.repos.Products, companyID, productID)
	if err != nil {
		return nil, err
	}
	b, err := uc.repos.Balances.Get(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	var stock int64
	if b != nil {
		stock = b.QuantityOnHand
	}
	incoming, outgoing, err := uc.repos.Entries.SumByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	r := inventory.Reconcile(product.ID, stock, incoming, outgoing)
	if !r.Consistent {
		uc.log.Warn().
			Str("product_id", product.ID).
			Int64("quantity_on_hand", stock).
			Int64("expected", r.Expected).
			Msg("balance descuadrado frente al libro")
	}
	return &r, nil
}

// IncomeReport entradas por día. Sin rango usa el último mes.
func (uc *LedgerUseCase) IncomeReport(ctx context.Context, companyID, productID string, from, to *time.Time) ([]repository.DailyIncomeResult, time.Time, time.Time, error) {
	start, end, err := inventory.ReportWindow(from, to, uc.now())
	if err != nil {
		return nil, start, end, err
	}
	rows, err := uc.repos.Entries.IncomeReport(ctx, repository.ReportFilter{
		CompanyID: companyID,
		ProductID: productID,
		From:      start,
		To:        end,
	})
	return rows, start, end, err
}

// SalesReport ventas por día y moneda. Sin rango usa el último mes.
func (uc *LedgerUseCase) SalesReport(ctx context.Context, companyID, productID, customerID string, from, to *time.Time) ([]repository.DailySalesResult, time.Time, time.Time, error) {
	start, end, err := inventory.ReportWindow(from, to, uc.now())
	if err != nil {
		return nil, start, end, err
	}
	rows, err := uc.repos.Transactions.SalesReport(ctx, repository.ReportFilter{
		CompanyID:  companyID,
		ProductID:  productID,
		CustomerID: customerID,
		From:       start,
		To:         end,
	})
	return rows, start, end, err
}
