package inventory_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ombor-api/internal/application/inventory"
	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
	"github.com/jhoicas/Ombor-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ombor-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID  = "company-1"
	otherCo    = "company-2"
	userID     = "user-1"
	customerID = "customer-1"
	supplierID = "supplier-1"
)

type fixture struct {
	store *memory.Store
	uc    *inventory.LedgerUseCase
}

func newFixture(t *testing.T, productIDs ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	now := time.Now()
	for _, id := range productIDs {
		require.NoError(t, repos.Products.Create(ctx, &entity.Product{
			ID: id, CompanyID: companyID, Name: "Producto " + id, Active: true, CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{
		ID: customerID, CompanyID: companyID, Name: "Cliente", Region: "Tashkent", PhoneNumber: "998", Active: true,
	}))
	require.NoError(t, repos.Suppliers.Create(ctx, &entity.Supplier{
		ID: supplierID, CompanyID: companyID, Name: "Proveedor", Region: "Samarkand", PhoneNumber: "998", Active: true,
	}))
	return &fixture{
		store: store,
		uc:    inventory.NewLedgerUseCase(store, repos, nil, zerolog.Nop(), entity.CurrencyUSD),
	}
}

func usd(v int64) entity.Money {
	return entity.Money{Amount: decimal.NewFromInt(v), Currency: entity.CurrencyUSD}
}

func (f *fixture) in(t *testing.T, productID string, qty int64) *entity.LedgerEntry {
	t.Helper()
	e, err := f.uc.RecordIncoming(context.Background(), inventory.MovementInput{
		CompanyID: companyID, UserID: userID, ProductID: productID, Quantity: qty, UnitPrice: usd(100),
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) out(productID string, qty int64) (*entity.LedgerEntry, error) {
	return f.uc.RecordOutgoing(context.Background(), inventory.MovementInput{
		CompanyID: companyID, UserID: userID, ProductID: productID, Quantity: qty, UnitPrice: usd(120),
	})
}

func (f *fixture) stock(t *testing.T, productID string) int64 {
	t.Helper()
	b, err := f.store.Repos().Balances.Get(context.Background(), productID)
	require.NoError(t, err)
	if b == nil {
		return 0
	}
	return b.QuantityOnHand
}

func (f *fixture) sale(lines ...entity.TransactionLine) (*entity.StockTransaction, error) {
	return f.uc.CreateTransaction(context.Background(), inventory.CreateTransactionInput{
		Kind: entity.TransactionKindSale, CompanyID: companyID, UserID: userID,
		CounterpartyID: customerID, Lines: lines, PaymentMethod: entity.PaymentCash,
	})
}

func line(productID string, qty int64) entity.TransactionLine {
	return entity.TransactionLine{ProductID: productID, Quantity: qty, UnitPrice: usd(120)}
}

func assertConsistent(t *testing.T, f *fixture, productID string) {
	t.Helper()
	r, err := f.uc.Reconcile(context.Background(), companyID, productID)
	require.NoError(t, err)
	assert.True(t, r.Consistent, "balance descuadrado: %+v", r)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas y salidas sueltas
// ──────────────────────────────────────────────────────────────────────────────

func TestEntradaSalida_EscenarioCompleto(t *testing.T) {
	f := newFixture(t, "P")

	e := f.in(t, "P", 10)
	assert.Equal(t, entity.EntryKindIncoming, e.Kind)
	assert.Equal(t, int64(10), e.CurrentStock)
	assert.Equal(t, int64(10), f.stock(t, "P"))

	o, err := f.out("P", 3)
	require.NoError(t, err)
	assert.Equal(t, entity.EntryKindOutgoing, o.Kind)
	assert.Equal(t, int64(7), o.CurrentStock)
	assert.Equal(t, int64(7), f.stock(t, "P"))

	_, err = f.out("P", 10)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(10), ise.Requested)
	assert.Equal(t, int64(7), ise.Available)
	assert.Equal(t, int64(7), f.stock(t, "P"), "una salida rechazada no cambia el stock")

	b, err := f.uc.GetBalance(context.Background(), companyID, "P")
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID}, b.IncomingIDs)
	assert.Equal(t, []string{o.ID}, b.OutgoingIDs)
	assert.True(t, decimal.NewFromInt(100).Equal(b.UnitPrice.Amount), "la salida no cambia el precio del balance")

	assertConsistent(t, f, "P")
}

func TestEntrada_PrecioUltimaEscrituraGana(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 1)
	_, err := f.uc.RecordIncoming(context.Background(), inventory.MovementInput{
		CompanyID: companyID, ProductID: "P", Quantity: 1,
		UnitPrice: entity.Money{Amount: decimal.NewFromInt(90000), Currency: entity.CurrencyUZS},
	})
	require.NoError(t, err)

	b, err := f.uc.GetBalance(context.Background(), companyID, "P")
	require.NoError(t, err)
	assert.Equal(t, entity.CurrencyUZS, b.UnitPrice.Currency)
	assert.Equal(t, int64(2), b.QuantityOnHand)
}

func TestEntrada_CreacionDeBalanceIdempotente(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 2)
	f.in(t, "P", 5)

	list, total, err := f.uc.ListBalances(context.Background(), companyID, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "debe existir un único balance por producto")
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].QuantityOnHand)
	assert.Len(t, list[0].IncomingIDs, 2)
}

func TestMovimiento_Validaciones(t *testing.T) {
	f := newFixture(t, "P")
	ctx := context.Background()

	cases := []struct {
		name string
		in   inventory.MovementInput
		want error
	}{
		{"cantidad cero", inventory.MovementInput{CompanyID: companyID, ProductID: "P", Quantity: 0, UnitPrice: usd(1)}, domain.ErrInvalidInput},
		{"cantidad negativa", inventory.MovementInput{CompanyID: companyID, ProductID: "P", Quantity: -1, UnitPrice: usd(1)}, domain.ErrInvalidInput},
		{"sin precio", inventory.MovementInput{CompanyID: companyID, ProductID: "P", Quantity: 1}, domain.ErrInvalidInput},
		{"producto inexistente", inventory.MovementInput{CompanyID: companyID, ProductID: "X", Quantity: 1, UnitPrice: usd(1)}, domain.ErrNotFound},
		{"producto de otra empresa", inventory.MovementInput{CompanyID: otherCo, ProductID: "P", Quantity: 1, UnitPrice: usd(1)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RecordIncoming(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, f.stock(t, "P"))
}

func TestEntrada_MonedaPorDefecto(t *testing.T) {
	f := newFixture(t, "P")
	e, err := f.uc.RecordIncoming(context.Background(), inventory.MovementInput{
		CompanyID: companyID, ProductID: "P", Quantity: 1,
		UnitPrice: entity.Money{Amount: decimal.NewFromInt(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CurrencyUSD, e.UnitPrice.Currency)
}

func TestSalida_ProductoInactivo(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 3)
	require.NoError(t, f.store.Repos().Products.Deactivate(context.Background(), "P"))

	_, err := f.out("P", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSalida_SinBalanceEsStockInsuficiente(t *testing.T) {
	f := newFixture(t, "P")
	_, err := f.out("P", 1)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Zero(t, ise.Available)
}

// Salidas concurrentes sobre el mismo producto: nunca se vende más de lo que hay.
func TestSalida_ConcurrenteNoSobrevende(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 30)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.out("P", 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, ok)
	assert.Zero(t, f.stock(t, "P"))
	assertConsistent(t, f, "P")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones (importaciones / ventas)
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_YReversion_RestauraStock(t *testing.T) {
	f := newFixture(t, "P")
	ctx := context.Background()
	f.in(t, "P", 10)
	_, err := f.out("P", 3)
	require.NoError(t, err)

	txn, err := f.sale(line("P", 7))
	require.NoError(t, err)
	require.Len(t, txn.EntryIDs, 1)
	assert.Zero(t, f.stock(t, "P"))

	got, entries, err := f.uc.GetTransaction(ctx, companyID, entity.TransactionKindSale, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.EntryIDs, got.EntryIDs)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(0), entries[0].CurrentStock)

	require.NoError(t, f.uc.ReverseTransaction(ctx, companyID, entity.TransactionKindSale, txn.ID))
	assert.Equal(t, int64(7), f.stock(t, "P"))

	left, err := f.store.Repos().Entries.ListByTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Empty(t, left, "no deben quedar asientos de la transacción revertida")

	_, _, err = f.uc.GetTransaction(ctx, companyID, "", txn.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assertConsistent(t, f, "P")
}

func TestImportacion_YReversion(t *testing.T) {
	f := newFixture(t, "A", "B")
	ctx := context.Background()
	f.in(t, "A", 4)

	txn, err := f.uc.CreateTransaction(ctx, inventory.CreateTransactionInput{
		Kind: entity.TransactionKindImport, CompanyID: companyID, UserID: userID, CounterpartyID: supplierID,
		Lines: []entity.TransactionLine{
			{ProductID: "A", Quantity: 6, UnitPrice: usd(10)},
			{ProductID: "B", Quantity: 3, UnitPrice: usd(20)},
		},
		PaymentMethod:   entity.PaymentTransfer,
		AdditionalCosts: decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.stock(t, "A"))
	assert.Equal(t, int64(3), f.stock(t, "B"))
	assert.True(t, decimal.NewFromInt(135).Equal(txn.Totals[entity.CurrencyUSD]), txn.Totals[entity.CurrencyUSD].String())

	require.NoError(t, f.uc.ReverseTransaction(ctx, companyID, entity.TransactionKindImport, txn.ID))
	assert.Equal(t, int64(4), f.stock(t, "A"))
	assert.Zero(t, f.stock(t, "B"))
	assertConsistent(t, f, "A")
	assertConsistent(t, f, "B")
}

func TestVenta_MultilineaFallaSinAplicarNada(t *testing.T) {
	f := newFixture(t, "A", "B")
	ctx := context.Background()
	f.in(t, "A", 10)
	f.in(t, "B", 2)

	_, err := f.sale(line("A", 5), line("B", 5))
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "B", ise.ProductID)

	assert.Equal(t, int64(10), f.stock(t, "A"), "la línea válida no debe aplicarse")
	assert.Equal(t, int64(2), f.stock(t, "B"))

	list, total, err := f.uc.ListTransactions(ctx, inventory.ListTransactionsInput{CompanyID: companyID, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	entries, err := f.store.Repos().Entries.ListByProduct(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "solo debe quedar la entrada inicial")
}

func TestVenta_LineasRepetidasCompitenPorElMismoStock(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 10)

	_, err := f.sale(line("P", 6), line("P", 6))
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(12), ise.Requested)
	assert.Equal(t, int64(10), ise.Available)
	assert.Equal(t, int64(10), f.stock(t, "P"))
}

func TestImportacion_ProductoInexistenteRevierteLineasPrevias(t *testing.T) {
	f := newFixture(t, "A")
	_, err := f.uc.CreateTransaction(context.Background(), inventory.CreateTransactionInput{
		Kind: entity.TransactionKindImport, CompanyID: companyID,
		Lines:         []entity.TransactionLine{{ProductID: "A", Quantity: 3, UnitPrice: usd(1)}, {ProductID: "X", Quantity: 1, UnitPrice: usd(1)}},
		PaymentMethod: entity.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.stock(t, "A"))
}

func TestTransaccion_Validaciones(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 5)
	ctx := context.Background()
	base := inventory.CreateTransactionInput{
		Kind: entity.TransactionKindSale, CompanyID: companyID, CounterpartyID: customerID,
		Lines: []entity.TransactionLine{line("P", 1)}, PaymentMethod: entity.PaymentCard,
	}

	cases := []struct {
		name   string
		mutate func(in *inventory.CreateTransactionInput)
		want   error
	}{
		{"método de pago inválido", func(in *inventory.CreateTransactionInput) { in.PaymentMethod = "crypto" }, domain.ErrInvalidInput},
		{"sin líneas", func(in *inventory.CreateTransactionInput) { in.Lines = nil }, domain.ErrInvalidInput},
		{"tipo desconocido", func(in *inventory.CreateTransactionInput) { in.Kind = "RETURN" }, domain.ErrInvalidInput},
		{"venta sin cliente", func(in *inventory.CreateTransactionInput) { in.CounterpartyID = "" }, domain.ErrInvalidInput},
		{"cliente inexistente", func(in *inventory.CreateTransactionInput) { in.CounterpartyID = "nadie" }, domain.ErrNotFound},
		{"descuento fuera de rango", func(in *inventory.CreateTransactionInput) { in.DiscountPercent = decimal.NewFromInt(120) }, domain.ErrInvalidInput},
		{"línea sin precio", func(in *inventory.CreateTransactionInput) {
			in.Lines = []entity.TransactionLine{{ProductID: "P", Quantity: 1}}
		}, domain.ErrInvalidInput},
		{"totales con moneda inválida", func(in *inventory.CreateTransactionInput) {
			in.Totals = map[string]decimal.Decimal{"dollars": decimal.NewFromInt(1)}
		}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			_, err := f.uc.CreateTransaction(ctx, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, int64(5), f.stock(t, "P"))
}

func TestVenta_DescuentoYTotalesDelCliente(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 5)
	ctx := context.Background()

	txn, err := f.uc.CreateTransaction(ctx, inventory.CreateTransactionInput{
		Kind: entity.TransactionKindSale, CompanyID: companyID, CounterpartyID: customerID,
		Lines: []entity.TransactionLine{line("P", 2)}, PaymentMethod: entity.PaymentCash,
		DiscountPercent: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(216).Equal(txn.Totals[entity.CurrencyUSD]), txn.Totals[entity.CurrencyUSD].String())

	given := map[string]decimal.Decimal{entity.CurrencyUSD: decimal.NewFromInt(200)}
	txn, err = f.uc.CreateTransaction(ctx, inventory.CreateTransactionInput{
		Kind: entity.TransactionKindSale, CompanyID: companyID, CounterpartyID: customerID,
		Lines: []entity.TransactionLine{line("P", 1)}, PaymentMethod: entity.PaymentCash, Totals: given,
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(txn.Totals[entity.CurrencyUSD]))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversión
// ──────────────────────────────────────────────────────────────────────────────

func TestReversion_ImportacionYaVendidaFalla(t *testing.T) {
	f := newFixture(t, "P")
	ctx := context.Background()
	imp, err := f.uc.CreateTransaction(ctx, inventory.CreateTransactionInput{
		Kind: entity.TransactionKindImport, CompanyID: companyID,
		Lines: []entity.TransactionLine{{ProductID: "P", Quantity: 5, UnitPrice: usd(10)}}, PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)
	_, err = f.sale(line("P", 4))
	require.NoError(t, err)

	err = f.uc.ReverseTransaction(ctx, companyID, entity.TransactionKindImport, imp.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(1), f.stock(t, "P"), "el stock nunca queda negativo")

	got, entries, err := f.uc.GetTransaction(ctx, companyID, entity.TransactionKindImport, imp.ID)
	require.NoError(t, err, "la importación sigue existiendo tras la reversión fallida")
	assert.Len(t, entries, 1)
	assert.Equal(t, imp.ID, got.ID)
	assertConsistent(t, f, "P")
}

func TestReversion_BalanceInexistenteSeOmite(t *testing.T) {
	f := newFixture(t, "P")
	ctx := context.Background()
	f.in(t, "P", 5)
	txn, err := f.sale(line("P", 2))
	require.NoError(t, err)

	require.NoError(t, f.store.Repos().Balances.DeleteByProduct(ctx, "P"))

	require.NoError(t, f.uc.ReverseTransaction(ctx, companyID, entity.TransactionKindSale, txn.ID))
	left, err := f.store.Repos().Entries.ListByTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestReversion_NoEncontrada(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 5)
	txn, err := f.sale(line("P", 1))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, f.uc.ReverseTransaction(ctx, companyID, "", "no-existe"), domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.ReverseTransaction(ctx, otherCo, "", txn.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.ReverseTransaction(ctx, companyID, entity.TransactionKindImport, txn.ID), domain.ErrNotFound)
	assert.Equal(t, int64(4), f.stock(t, "P"))
}

func TestActualizarMetodoDePago(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 5)
	txn, err := f.sale(line("P", 1))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.uc.UpdatePaymentMethod(ctx, companyID, entity.TransactionKindSale, txn.ID, "cheque")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.uc.UpdatePaymentMethod(ctx, companyID, entity.TransactionKindSale, txn.ID, entity.PaymentDebit)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentDebit, out.PaymentMethod)

	got, _, err := f.uc.GetTransaction(ctx, companyID, entity.TransactionKindSale, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentDebit, got.PaymentMethod)
	assert.Equal(t, txn.EntryIDs, got.EntryIDs, "los asientos no cambian")
}

// Secuencia aleatoria de operaciones: el balance siempre cuadra con el libro.
func TestInvariante_SecuenciaAleatoria(t *testing.T) {
	products := []string{"A", "B", "C"}
	f := newFixture(t, products...)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	var created []string

	for i := 0; i < 200; i++ {
		p := products[rng.Intn(len(products))]
		qty := int64(rng.Intn(8) + 1)
		switch rng.Intn(5) {
		case 0:
			f.in(t, p, qty)
		case 1:
			_, _ = f.out(p, qty)
		case 2:
			txn, err := f.uc.CreateTransaction(ctx, inventory.CreateTransactionInput{
				Kind: entity.TransactionKindImport, CompanyID: companyID,
				Lines: []entity.TransactionLine{{ProductID: p, Quantity: qty, UnitPrice: usd(5)}}, PaymentMethod: entity.PaymentCash,
			})
			require.NoError(t, err)
			created = append(created, txn.ID)
		case 3:
			if txn, err := f.sale(line(p, qty), line(products[rng.Intn(len(products))], 1)); err == nil {
				created = append(created, txn.ID)
			}
		case 4:
			if len(created) > 0 {
				idx := rng.Intn(len(created))
				if err := f.uc.ReverseTransaction(ctx, companyID, "", created[idx]); err == nil {
					created = append(created[:idx], created[idx+1:]...)
				}
			}
		}
		for _, id := range products {
			assert.GreaterOrEqual(t, f.stock(t, id), int64(0))
		}
	}
	for _, id := range products {
		assertConsistent(t, f, id)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestListarTransacciones_FiltroDias(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 5)
	_, err := f.sale(line("P", 1))
	require.NoError(t, err)
	ctx := context.Background()

	list, total, err := f.uc.ListTransactions(ctx, inventory.ListTransactionsInput{
		CompanyID: companyID, Kind: entity.TransactionKindSale, Days: "today", Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Len(t, list[0].EntryIDs, 1)

	_, _, err = f.uc.ListTransactions(ctx, inventory.ListTransactionsInput{CompanyID: companyID, Days: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportes(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 5)
	f.in(t, "P", 3)
	_, err := f.sale(line("P", 2))
	require.NoError(t, err)
	_, err = f.sale(line("P", 1))
	require.NoError(t, err)
	ctx := context.Background()
	today := time.Now().Format("2006-01-02")

	income, _, _, err := f.uc.IncomeReport(ctx, companyID, "", nil, nil)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, today, income[0].Date)
	assert.Equal(t, int64(8), income[0].TotalIncome)

	sales, _, _, err := f.uc.SalesReport(ctx, companyID, "P", customerID, nil, nil)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, int64(3), sales[0].TotalQuantity)
	assert.Equal(t, 2, sales[0].SalesCount)
	assert.True(t, decimal.NewFromInt(360).Equal(sales[0].TotalSales))

	from, to := time.Now(), time.Now().Add(-time.Hour)
	_, _, _, err = f.uc.SalesReport(ctx, companyID, "", "", &from, &to)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconcile_DetectaDescuadre(t *testing.T) {
	f := newFixture(t, "P")
	ctx := context.Background()
	f.in(t, "P", 5)
	_, err := f.store.Repos().Balances.Increment(ctx, "P", 2, nil)
	require.NoError(t, err)

	r, err := f.uc.Reconcile(ctx, companyID, "P")
	require.NoError(t, err)
	assert.False(t, r.Consistent)
	assert.Equal(t, int64(2), r.Drift)
}

// ──────────────────────────────────────────────────────────────────────────────
// Caché de balances
// ──────────────────────────────────────────────────────────────────────────────

type recordingCache struct {
	mu          sync.Mutex
	items       map[string]*entity.InventoryBalance
	versions    map[string]int64
	invalidated []string
}

func (c *recordingCache) Get(_ context.Context, _, productID string) (*entity.InventoryBalance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[productID], nil
}

func (c *recordingCache) Version(_ context.Context, _, productID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[productID], nil
}

func (c *recordingCache) Set(_ context.Context, b *entity.InventoryBalance, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[b.ProductID] != version {
		return nil
	}
	c.items[b.ProductID] = b
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, _ string, productIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range productIDs {
		delete(c.items, id)
		c.versions[id]++
	}
	c.invalidated = append(c.invalidated, productIDs...)
	return nil
}

func TestCache_SeInvalidaTrasMutacion(t *testing.T) {
	f := newFixture(t, "P")
	rc := &recordingCache{items: map[string]*entity.InventoryBalance{}, versions: map[string]int64{}}
	uc := inventory.NewLedgerUseCase(f.store, f.store.Repos(), rc, zerolog.Nop(), entity.CurrencyUSD)
	ctx := context.Background()

	_, err := uc.RecordIncoming(ctx, inventory.MovementInput{CompanyID: companyID, ProductID: "P", Quantity: 4, UnitPrice: usd(1)})
	require.NoError(t, err)
	b, err := uc.GetBalance(ctx, companyID, "P")
	require.NoError(t, err)
	assert.Equal(t, int64(4), b.QuantityOnHand)
	require.Contains(t, rc.items, "P", "GetBalance guarda el snapshot")

	_, err = uc.RecordOutgoing(ctx, inventory.MovementInput{CompanyID: companyID, ProductID: "P", Quantity: 1, UnitPrice: usd(2)})
	require.NoError(t, err)
	assert.NotContains(t, rc.items, "P")

	b, err = uc.GetBalance(ctx, companyID, "P")
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.QuantityOnHand)
	assert.Equal(t, []string{"P", "P"}, rc.invalidated)
}

func TestGetBalance_OtraEmpresa(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 1)
	_, err := f.uc.GetBalance(context.Background(), otherCo, "P")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// hookedBalances ejecuta hook una sola vez, justo después de leer el balance de la BD.
type hookedBalances struct {
	repository.BalanceRepository
	once sync.Once
	hook func()
}

func (h *hookedBalances) Get(ctx context.Context, productID string) (*entity.InventoryBalance, error) {
	b, err := h.BalanceRepository.Get(ctx, productID)
	h.once.Do(h.hook)
	return b, err
}

func TestGetBalance_MutacionConcurrenteNoDejaFotoVieja(t *testing.T) {
	f := newFixture(t, "P")
	f.in(t, "P", 10)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	balanceCache := cache.NewRedisBalanceCache(client, 5*time.Minute, zerolog.Nop())

	var uc *inventory.LedgerUseCase
	repos := f.store.Repos()
	repos.Balances = &hookedBalances{
		BalanceRepository: repos.Balances,
		hook: func() {
			// Entre la lectura de la BD y el Set de la caché entra otra escritura.
			_, err := uc.RecordIncoming(ctx, inventory.MovementInput{
				CompanyID: companyID, UserID: userID, ProductID: "P", Quantity: 5, UnitPrice: usd(100),
			})
			require.NoError(t, err)
		},
	}
	uc = inventory.NewLedgerUseCase(f.store, repos, balanceCache, zerolog.Nop(), entity.CurrencyUSD)

	first, err := uc.GetBalance(ctx, companyID, "P")
	require.NoError(t, err)
	assert.Equal(t, int64(10), first.QuantityOnHand, "la lectura empezó antes de la escritura")
	assert.False(t, mr.Exists("ombor:balance:"+companyID+":P"), "no se guarda la foto leída antes de invalidar")

	b, err := uc.GetBalance(ctx, companyID, "P")
	require.NoError(t, err)
	assert.Equal(t, int64(15), b.QuantityOnHand)
	assert.Equal(t, f.stock(t, "P"), b.QuantityOnHand)

	cached, err := balanceCache.Get(ctx, companyID, "P")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, int64(15), cached.QuantityOnHand)
}
