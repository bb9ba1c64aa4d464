package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

var (
	_ repository.BalanceRepository     = (*BalanceRepo)(nil)
	_ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
)

const dayLayout = "2006-01-02"

// BalanceRepo balances en memoria, uno por producto.
type BalanceRepo struct{ base }

func (r *BalanceRepo) Ensure(_ context.Context, companyID, productID string, price entity.Money) error {
	defer r.lock()()
	if _, ok := r.state().balances[productID]; ok {
		return nil
	}
	r.state().balances[productID] = entity.InventoryBalance{
		CompanyID: companyID,
		ProductID: productID,
		UnitPrice: price,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (r *BalanceRepo) Increment(_ context.Context, productID string, qty int64, price *entity.Money) (int64, error) {
	defer r.lock()()
	b, ok := r.state().balances[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	b.QuantityOnHand += qty
	if price != nil {
		b.UnitPrice = *price
	}
	b.UpdatedAt = time.Now()
	r.state().balances[productID] = b
	return b.QuantityOnHand, nil
}

func (r *BalanceRepo) Decrement(_ context.Context, productID string, qty int64) (int64, error) {
	defer r.lock()()
	b, ok := r.state().balances[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if b.QuantityOnHand < qty {
		return 0, &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: b.QuantityOnHand}
	}
	b.QuantityOnHand -= qty
	b.UpdatedAt = time.Now()
	r.state().balances[productID] = b
	return b.QuantityOnHand, nil
}

func (r *BalanceRepo) Get(_ context.Context, productID string) (*entity.InventoryBalance, error) {
	defer r.lock()()
	b, ok := r.state().balances[productID]
	if !ok {
		return nil, nil
	}
	out := r.withRefs(b)
	return &out, nil
}

// withRefs completa nombre de producto y asientos vigentes.
func (r *BalanceRepo) withRefs(b entity.InventoryBalance) entity.InventoryBalance {
	b.ProductName = r.state().products[b.ProductID].Name
	b.IncomingIDs, b.OutgoingIDs = nil, nil
	for _, e := range r.state().entries {
		if e.ProductID != b.ProductID {
			continue
		}
		if e.Kind == entity.EntryKindIncoming {
			b.IncomingIDs = append(b.IncomingIDs, e.ID)
		} else {
			b.OutgoingIDs = append(b.OutgoingIDs, e.ID)
		}
	}
	return b
}

func (r *BalanceRepo) List(_ context.Context, companyID, search string, limit, offset int) ([]*entity.InventoryBalance, int, error) {
	defer r.lock()()
	search = strings.ToLower(search)
	var out []*entity.InventoryBalance
	for _, b := range r.state().balances {
		p, ok := r.state().products[b.ProductID]
		if b.CompanyID != companyID || !ok || !p.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		withRefs := r.withRefs(b)
		out = append(out, &withRefs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return page(out, limit, offset), len(out), nil
}

func (r *BalanceRepo) DeleteByProduct(_ context.Context, productID string) error {
	defer r.lock()()
	delete(r.state().balances, productID)
	return nil
}

// LedgerEntryRepo asientos en memoria, en orden de inserción.
type LedgerEntryRepo struct{ base }

func (r *LedgerEntryRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.products[e.ProductID]; !ok {
		return fmt.Errorf("insert ledger entry: producto %s inexistente", e.ProductID)
	}
	if e.TransactionID != "" {
		if _, ok := st.transactions[e.TransactionID]; !ok {
			return fmt.Errorf("insert ledger entry: transacción %s inexistente", e.TransactionID)
		}
	}
	for _, existing := range st.entries {
		if existing.ID == e.ID {
			return domain.ErrDuplicate
		}
	}
	st.entries = append(st.entries, *e)
	return nil
}

func (r *LedgerEntryRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.LedgerEntry, error) {
	defer r.lock()()
	return r.filter(func(e entity.LedgerEntry) bool { return e.TransactionID == transactionID }), nil
}

func (r *LedgerEntryRepo) ListByProduct(_ context.Context, productID string) ([]*entity.LedgerEntry, error) {
	defer r.lock()()
	return r.filter(func(e entity.LedgerEntry) bool { return e.ProductID == productID }), nil
}

func (r *LedgerEntryRepo) filter(keep func(entity.LedgerEntry) bool) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for _, e := range r.state().entries {
		if keep(e) {
			e := e
			out = append(out, &e)
		}
	}
	return out
}

func (r *LedgerEntryRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	st := r.state()
	for i, e := range st.entries {
		if e.ID == id {
			st.entries = append(st.entries[:i:i], st.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *LedgerEntryRepo) SumByProduct(_ context.Context, productID string) (int64, int64, error) {
	defer r.lock()()
	var in, out int64
	for _, e := range r.state().entries {
		if e.ProductID != productID {
			continue
		}
		if e.Kind == entity.EntryKindIncoming {
			in += e.Quantity
		} else {
			out += e.Quantity
		}
	}
	return in, out, nil
}

func (r *LedgerEntryRepo) IncomeReport(_ context.Context, f repository.ReportFilter) ([]repository.DailyIncomeResult, error) {
	defer r.lock()()
	byDay := map[string]int64{}
	for _, e := range r.state().entries {
		if e.Kind != entity.EntryKindIncoming || e.CompanyID != f.CompanyID || !inWindow(e.CreatedAt, f) {
			continue
		}
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		byDay[e.CreatedAt.Format(dayLayout)] += e.Quantity
	}
	out := make([]repository.DailyIncomeResult, 0, len(byDay))
	for day, total := range byDay {
		out = append(out, repository.DailyIncomeResult{Date: day, TotalIncome: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func inWindow(t time.Time, f repository.ReportFilter) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}

// TransactionRepo importaciones y ventas en memoria.
type TransactionRepo struct{ base }

func (r *TransactionRepo) Create(_ context.Context, t *entity.StockTransaction) error {
	defer r.lock()()
	if _, ok := r.state().transactions[t.ID]; ok {
		return domain.ErrDuplicate
	}
	r.state().transactions[t.ID] = copyTransaction(*t)
	return nil
}

func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.StockTransaction, error) {
	defer r.lock()()
	t, ok := r.state().transactions[id]
	if !ok {
		return nil, nil
	}
	out := r.withEntries(t)
	return &out, nil
}

func (r *TransactionRepo) withEntries(t entity.StockTransaction) entity.StockTransaction {
	t = copyTransaction(t)
	for _, e := range r.state().entries {
		if e.TransactionID == t.ID {
			t.EntryIDs = append(t.EntryIDs, e.ID)
		}
	}
	return t
}

func (r *TransactionRepo) UpdatePaymentMethod(_ context.Context, id, method string, updatedAt time.Time) error {
	defer r.lock()()
	t, ok := r.state().transactions[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.PaymentMethod = method
	t.UpdatedAt = updatedAt
	r.state().transactions[id] = t
	return nil
}

func (r *TransactionRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.transactions[id]; !ok {
		return domain.ErrNotFound
	}
	for _, e := range st.entries {
		if e.TransactionID == id {
			return fmt.Errorf("delete transaction: el asiento %s aún la referencia", e.ID)
		}
	}
	delete(st.transactions, id)
	return nil
}

func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.StockTransaction, int, error) {
	defer r.lock()()
	var out []*entity.StockTransaction
	for _, t := range r.state().transactions {
		if t.CompanyID != f.CompanyID || (f.Kind != "" && t.Kind != f.Kind) {
			continue
		}
		if f.From != nil && t.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && t.CreatedAt.After(*f.To) {
			continue
		}
		withEntries := r.withEntries(t)
		out = append(out, &withEntries)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), len(out), nil
}

// SalesReport agrega los asientos de salida de ventas por día y moneda.
func (r *TransactionRepo) SalesReport(_ context.Context, f repository.ReportFilter) ([]repository.DailySalesResult, error) {
	defer r.lock()()
	type key struct{ day, currency string }
	acc := map[key]*repository.DailySalesResult{}
	sales := map[key]map[string]struct{}{}
	for _, e := range r.state().entries {
		if e.Kind != entity.EntryKindOutgoing || e.CompanyID != f.CompanyID || e.TransactionID == "" || !inWindow(e.CreatedAt, f) {
			continue
		}
		t, ok := r.state().transactions[e.TransactionID]
		if !ok || t.Kind != entity.TransactionKindSale {
			continue
		}
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		if f.CustomerID != "" && t.CounterpartyID != f.CustomerID {
			continue
		}
		k := key{e.CreatedAt.Format(dayLayout), e.UnitPrice.Currency}
		row, ok := acc[k]
		if !ok {
			row = &repository.DailySalesResult{Date: k.day, Currency: k.currency, TotalSales: decimal.Zero}
			acc[k] = row
			sales[k] = map[string]struct{}{}
		}
		row.TotalQuantity += e.Quantity
		row.TotalSales = row.TotalSales.Add(e.UnitPrice.Amount.Mul(decimal.NewFromInt(e.Quantity)))
		sales[k][e.TransactionID] = struct{}{}
	}
	out := make([]repository.DailySalesResult, 0, len(acc))
	for k, row := range acc {
		row.SalesCount = len(sales[k])
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}
