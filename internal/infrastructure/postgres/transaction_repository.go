package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// Columnas de la transacción; los ids de asientos salen de ledger_entries.
const transactionColumns = `t.id, t.company_id, t.kind, t.counterparty_id, t.lines, t.payment_method, t.totals,
	t.additional_costs, t.discount_percent, t.created_by, t.created_at, t.updated_at,
	ARRAY(SELECT e.id::text FROM ledger_entries e WHERE e.transaction_id = t.id ORDER BY e.seq)`

// TransactionRepo importaciones y ventas sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador de transacciones. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create inserta la cabecera; las líneas y totales se guardan como JSONB.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.StockTransaction) error {
	lines, err := json.Marshal(t.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}
	totals := t.Totals
	if totals == nil {
		totals = map[string]decimal.Decimal{}
	}
	totalsJSON, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("marshal totals: %w", err)
	}
	query := `
		INSERT INTO stock_transactions (id, company_id, kind, counterparty_id, lines, payment_method, totals,
			additional_costs, discount_percent, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.q.Exec(ctx, query,
		t.ID, t.CompanyID, t.Kind, nullable(t.CounterpartyID), lines, t.PaymentMethod, totalsJSON,
		t.AdditionalCosts, t.DiscountPercent, nullable(t.CreatedBy), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene la transacción con sus asientos; nil, nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions t WHERE t.id = $1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// UpdatePaymentMethod única modificación permitida de una transacción confirmada.
func (r *TransactionRepo) UpdatePaymentMethod(ctx context.Context, id, method string, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_transactions SET payment_method = $2, updated_at = $3 WHERE id = $1`,
		id, method, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment method: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la cabecera. Falla por FK si quedan asientos que la referencian.
func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM stock_transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista transacciones filtradas, más recientes primero, con el total sin paginar.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.StockTransaction, int, error) {
	where := squirrel.And{squirrel.Eq{"t.company_id": f.CompanyID}}
	if f.Kind != "" {
		where = append(where, squirrel.Eq{"t.kind": f.Kind})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"t.created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"t.created_at": *f.To})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("stock_transactions t").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count transactions: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	qb := psql.Select(transactionColumns).From("stock_transactions t").Where(where).
		OrderBy("t.created_at DESC", "t.id")
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list transactions: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

// SalesReport agrega los asientos de salida de ventas por día y moneda.
func (r *TransactionRepo) SalesReport(ctx context.Context, f repository.ReportFilter) ([]repository.DailySalesResult, error) {
	qb := psql.Select(
		"to_char(e.created_at, 'YYYY-MM-DD') AS day",
		"e.currency",
		"SUM(e.quantity)::bigint",
		"SUM(e.quantity * e.unit_price)",
		"COUNT(DISTINCT e.transaction_id)",
	).From("ledger_entries e").
		Join("stock_transactions t ON t.id = e.transaction_id").
		Where(squirrel.Eq{
			"e.company_id": f.CompanyID,
			"e.kind":       entity.EntryKindOutgoing,
			"t.kind":       entity.TransactionKindSale,
		}).
		GroupBy("day", "e.currency").OrderBy("day", "e.currency")
	qb = applyWindow(qb, "e.created_at", f)
	if f.ProductID != "" {
		qb = qb.Where(squirrel.Eq{"e.product_id": f.ProductID})
	}
	if f.CustomerID != "" {
		qb = qb.Where(squirrel.Eq{"t.counterparty_id": f.CustomerID})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sales report: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sales report: %w", err)
	}
	defer rows.Close()
	out := []repository.DailySalesResult{}
	for rows.Next() {
		var d repository.DailySalesResult
		if err := rows.Scan(&d.Date, &d.Currency, &d.TotalQuantity, &d.TotalSales, &d.SalesCount); err != nil {
			return nil, fmt.Errorf("scan sales report: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.StockTransaction, error) {
	var t entity.StockTransaction
	var counterparty, createdBy *string
	var lines, totals []byte
	err := row.Scan(&t.ID, &t.CompanyID, &t.Kind, &counterparty, &lines, &t.PaymentMethod, &totals,
		&t.AdditionalCosts, &t.DiscountPercent, &createdBy, &t.CreatedAt, &t.UpdatedAt, &t.EntryIDs)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lines, &t.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal lines: %w", err)
	}
	if err := json.Unmarshal(totals, &t.Totals); err != nil {
		return nil, fmt.Errorf("unmarshal totals: %w", err)
	}
	t.CounterpartyID, t.CreatedBy = deref(counterparty), deref(createdBy)
	return &t, nil
}
