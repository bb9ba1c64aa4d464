package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// Columnas del balance con nombre de producto y referencias derivadas de ledger_entries.
const balanceColumns = `b.company_id, b.product_id, p.name, b.quantity_on_hand, b.unit_price, b.currency, b.updated_at,
	ARRAY(SELECT e.id::text FROM ledger_entries e WHERE e.product_id = b.product_id AND e.kind = 'IN' ORDER BY e.seq),
	ARRAY(SELECT e.id::text FROM ledger_entries e WHERE e.product_id = b.product_id AND e.kind = 'OUT' ORDER BY e.seq)`

// BalanceRepo agregado de stock por producto sobre PostgreSQL (usable con pool o tx).
// Increment y Decrement son una sola sentencia UPDATE; no hay lectura-modificación-escritura.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de balances. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

// Ensure crea el balance en cero; si ya existe no hace nada (restricción única por producto).
func (r *BalanceRepo) Ensure(ctx context.Context, companyID, productID string, price entity.Money) error {
	query := `
		INSERT INTO inventory_balances (product_id, company_id, quantity_on_hand, unit_price, currency, updated_at)
		VALUES ($1, $2, 0, $3, $4, now())
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, companyID, price.Amount, price.Currency); err != nil {
		return fmt.Errorf("ensure balance: %w", err)
	}
	return nil
}

// Increment suma qty y, si price no es nil, fija el último precio de entrada.
func (r *BalanceRepo) Increment(ctx context.Context, productID string, qty int64, price *entity.Money) (int64, error) {
	query := `
		UPDATE inventory_balances
		SET quantity_on_hand = quantity_on_hand + $2, updated_at = now()
		WHERE product_id = $1
		RETURNING quantity_on_hand`
	args := []any{productID, qty}
	if price != nil {
		query = `
			UPDATE inventory_balances
			SET quantity_on_hand = quantity_on_hand + $2, unit_price = $3, currency = $4, updated_at = now()
			WHERE product_id = $1
			RETURNING quantity_on_hand`
		args = append(args, price.Amount, price.Currency)
	}
	var onHand int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&onHand); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("increment balance: %w", err)
	}
	return onHand, nil
}

// Decrement resta qty solo si hay existencias suficientes (UPDATE condicional).
func (r *BalanceRepo) Decrement(ctx context.Context, productID string, qty int64) (int64, error) {
	query := `
		UPDATE inventory_balances
		SET quantity_on_hand = quantity_on_hand - $2, updated_at = now()
		WHERE product_id = $1 AND quantity_on_hand >= $2
		RETURNING quantity_on_hand`
	var onHand int64
	err := r.q.QueryRow(ctx, query, productID, qty).Scan(&onHand)
	if err == nil {
		return onHand, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("decrement balance: %w", err)
	}
	// Sin filas: o no hay balance o no alcanza.
	var available int64
	err = r.q.QueryRow(ctx, `SELECT quantity_on_hand FROM inventory_balances WHERE product_id = $1`, productID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return 0, &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
}

// Get devuelve el balance con sus referencias; nil, nil si no existe.
func (r *BalanceRepo) Get(ctx context.Context, productID string) (*entity.InventoryBalance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM inventory_balances b JOIN products p ON p.id = b.product_id
		WHERE b.product_id = $1`
	b, err := scanBalance(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// List balances de productos activos ordenados por nombre; devuelve también el total sin paginar.
func (r *BalanceRepo) List(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.InventoryBalance, int, error) {
	where := squirrel.And{
		squirrel.Eq{"b.company_id": companyID},
		squirrel.Eq{"p.active": true},
	}
	if search != "" {
		where = append(where, squirrel.ILike{"p.name": "%" + search + "%"})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").
		From("inventory_balances b").Join("products p ON p.id = b.product_id").
		Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count balances: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count balances: %w", err)
	}

	qb := psql.Select(balanceColumns).
		From("inventory_balances b").Join("products p ON p.id = b.product_id").
		Where(where).OrderBy("p.name", "b.product_id")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	if offset > 0 {
		qb = qb.Offset(uint64(offset))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list balances: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, total, rows.Err()
}

// DeleteByProduct borra el balance (al desactivar el producto).
func (r *BalanceRepo) DeleteByProduct(ctx context.Context, productID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_balances WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete balance: %w", err)
	}
	return nil
}

func scanBalance(row pgx.Row) (*entity.InventoryBalance, error) {
	var b entity.InventoryBalance
	err := row.Scan(&b.CompanyID, &b.ProductID, &b.ProductName, &b.QuantityOnHand,
		&b.UnitPrice.Amount, &b.UnitPrice.Currency, &b.UpdatedAt, &b.IncomingIDs, &b.OutgoingIDs)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
