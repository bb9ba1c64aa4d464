package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

const entryColumns = `id, company_id, kind, product_id, transaction_id, counterparty_id, quantity,
	unit_price, currency, current_stock, created_at, created_by`

// LedgerEntryRepo asientos del libro sobre PostgreSQL (usable con pool o tx).
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador de asientos. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

// Create inserta el asiento. Las FK garantizan que producto y transacción existen.
func (r *LedgerEntryRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, company_id, kind, product_id, transaction_id, counterparty_id, quantity,
			unit_price, currency, current_stock, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.CompanyID, e.Kind, e.ProductID, nullable(e.TransactionID), nullable(e.CounterpartyID), e.Quantity,
		e.UnitPrice.Amount, e.UnitPrice.Currency, e.CurrentStock, e.CreatedAt, nullable(e.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByTransaction asientos de la transacción en orden de inserción.
func (r *LedgerEntryRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.LedgerEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE transaction_id = $1 ORDER BY seq`, transactionID)
}

// ListByProduct asientos vigentes del producto en orden de inserción.
func (r *LedgerEntryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.LedgerEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE product_id = $1 ORDER BY seq`, productID)
}

func (r *LedgerEntryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Delete borra el asiento (solo al revertir su transacción).
func (r *LedgerEntryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SumByProduct Σ entradas y Σ salidas del producto.
func (r *LedgerEntryRepo) SumByProduct(ctx context.Context, productID string) (int64, int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE kind = 'IN'), 0)::bigint,
		       COALESCE(SUM(quantity) FILTER (WHERE kind = 'OUT'), 0)::bigint
		FROM ledger_entries WHERE product_id = $1`
	var in, out int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&in, &out); err != nil {
		return 0, 0, fmt.Errorf("sum ledger entries: %w", err)
	}
	return in, out, nil
}

// IncomeReport cantidades de entrada agrupadas por día.
func (r *LedgerEntryRepo) IncomeReport(ctx context.Context, f repository.ReportFilter) ([]repository.DailyIncomeResult, error) {
	qb := psql.Select("to_char(created_at, 'YYYY-MM-DD') AS day", "SUM(quantity)::bigint").
		From("ledger_entries").
		Where(squirrel.Eq{"company_id": f.CompanyID, "kind": entity.EntryKindIncoming}).
		GroupBy("day").OrderBy("day")
	qb = applyWindow(qb, "created_at", f)
	if f.ProductID != "" {
		qb = qb.Where(squirrel.Eq{"product_id": f.ProductID})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build income report: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("income report: %w", err)
	}
	defer rows.Close()
	out := []repository.DailyIncomeResult{}
	for rows.Next() {
		var d repository.DailyIncomeResult
		if err := rows.Scan(&d.Date, &d.TotalIncome); err != nil {
			return nil, fmt.Errorf("scan income report: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func applyWindow(qb squirrel.SelectBuilder, column string, f repository.ReportFilter) squirrel.SelectBuilder {
	if !f.From.IsZero() {
		qb = qb.Where(squirrel.GtOrEq{column: f.From})
	}
	if !f.To.IsZero() {
		qb = qb.Where(squirrel.LtOrEq{column: f.To})
	}
	return qb
}

func scanEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var txID, counterparty, createdBy *string
	err := row.Scan(&e.ID, &e.CompanyID, &e.Kind, &e.ProductID, &txID, &counterparty, &e.Quantity,
		&e.UnitPrice.Amount, &e.UnitPrice.Currency, &e.CurrentStock, &e.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	e.TransactionID, e.CounterpartyID, e.CreatedBy = deref(txID), deref(counterparty), deref(createdBy)
	return &e, nil
}
