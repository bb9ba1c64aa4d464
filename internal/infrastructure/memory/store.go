// Package memory implementa los puertos de persistencia en memoria, con el mismo contrato que los
// repositorios PostgreSQL: updates condicionales de stock y rollback completo en TxRunner.Run.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ombor-api/internal/application/inventory"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	companies    map[string]entity.Company
	users        map[string]entity.User
	products     map[string]entity.Product
	suppliers    map[string]entity.Supplier
	customers    map[string]entity.Customer
	balances     map[string]entity.InventoryBalance // por product_id
	entries      []entity.LedgerEntry               // orden de inserción
	transactions map[string]entity.StockTransaction
}

func newState() *state {
	return &state{
		companies:    map[string]entity.Company{},
		users:        map[string]entity.User{},
		products:     map[string]entity.Product{},
		suppliers:    map[string]entity.Supplier{},
		customers:    map[string]entity.Customer{},
		balances:     map[string]entity.InventoryBalance{},
		transactions: map[string]entity.StockTransaction{},
	}
}

// clone copia profunda usada como punto de restauración de Run.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	c.entries = append([]entity.LedgerEntry(nil), s.entries...)
	for k, v := range s.transactions {
		c.transactions[k] = copyTransaction(v)
	}
	return c
}

func copyTransaction(t entity.StockTransaction) entity.StockTransaction {
	t.Lines = append([]entity.TransactionLine(nil), t.Lines...)
	totals := make(map[string]decimal.Decimal, len(t.Totals))
	for k, v := range t.Totals {
		totals[k] = v
	}
	t.Totals = totals
	t.EntryIDs = nil
	return t
}

// Store base de datos en memoria. Un único mutex serializa todas las operaciones.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn con el almacén bloqueado. Si fn falla se restaura el estado previo (rollback).
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(s.repos(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Repos repositorios fuera de transacción: cada llamada toma el mutex.
func (s *Store) Repos() inventory.TxRepos {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) inventory.TxRepos {
	b := base{s: s, inTx: inTx}
	return inventory.TxRepos{
		Products:     &ProductRepo{base: b},
		Balances:     &BalanceRepo{base: b},
		Entries:      &LedgerEntryRepo{base: b},
		Transactions: &TransactionRepo{base: b},
		Suppliers:    &SupplierRepo{base: b},
		Customers:    &CustomerRepo{base: b},
	}
}

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo {
	return &UserRepo{base: base{s: s}}
}

// Companies repositorio de empresas.
func (s *Store) Companies() *CompanyRepo {
	return &CompanyRepo{base: base{s: s}}
}

// base comparte el almacén; dentro de Run el mutex ya está tomado.
type base struct {
	s    *Store
	inTx bool
}

func (b base) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

func (b base) state() *state {
	return b.s.st
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
