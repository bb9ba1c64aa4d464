package repository

import (
	"context"

	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

// BalanceRepository puerto del agregado de stock por producto.
// Increment y Decrement son actualizaciones atómicas (una sola sentencia condicional),
// nunca lectura-modificación-escritura.
type BalanceRepository interface {
	// Ensure crea el balance en cero si no existe; idempotente (restricción única por producto).
	Ensure(ctx context.Context, companyID, productID string, price entity.Money) error
	// Increment suma qty y, si price no es nil, fija el precio (última escritura gana).
	// Devuelve la cantidad resultante o domain.ErrNotFound si no hay balance.
	Increment(ctx context.Context, productID string, qty int64, price *entity.Money) (int64, error)
	// Decrement resta qty solo si quantity_on_hand >= qty. Devuelve domain.ErrNotFound si no hay balance
	// o *domain.InsufficientStockError con la cantidad disponible.
	Decrement(ctx context.Context, productID string, qty int64) (int64, error)
	// Get devuelve el balance con las referencias derivadas de asientos; nil, nil si no existe.
	Get(ctx context.Context, productID string) (*entity.InventoryBalance, error)
	// List lista balances de productos activos; search filtra por nombre de producto.
	List(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.InventoryBalance, int, error)
	DeleteByProduct(ctx context.Context, productID string) error
}
