package inventory

import (
	"context"

	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Products     repository.ProductRepository
	Balances     repository.BalanceRepository
	Entries      repository.LedgerEntryRepository
	Transactions repository.TransactionRepository
	Suppliers    repository.SupplierRepository
	Customers    repository.CustomerRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de todo lo aplicado; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// BalanceCache caché de lectura de balances. Get devuelve nil, nil en un fallo de caché.
// Cada producto tiene una generación que Invalidate incrementa: Set solo guarda la foto si la
// generación sigue siendo la leída con Version antes de consultar la BD.
type BalanceCache interface {
	Get(ctx context.Context, companyID, productID string) (*entity.InventoryBalance, error)
	Version(ctx context.Context, companyID, productID string) (int64, error)
	Set(ctx context.Context, balance *entity.InventoryBalance, version int64) error
	Invalidate(ctx context.Context, companyID string, productIDs ...string) error
}

// NopBalanceCache no guarda nada; se usa cuando no hay Redis configurado.
type NopBalanceCache struct{}

func (NopBalanceCache) Get(context.Context, string, string) (*entity.InventoryBalance, error) {
	return nil, nil
}

func (NopBalanceCache) Version(context.Context, string, string) (int64, error) { return 0, nil }

func (NopBalanceCache) Set(context.Context, *entity.InventoryBalance, int64) error { return nil }

func (NopBalanceCache) Invalidate(context.Context, string, ...string) error { return nil }
