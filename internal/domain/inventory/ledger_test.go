package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/inventory"
)

func usd(v int64) entity.Money {
	return entity.Money{Amount: decimal.NewFromInt(v), Currency: entity.CurrencyUSD}
}

func TestValidateLine(t *testing.T) {
	cases := []struct {
		name string
		line entity.TransactionLine
		ok   bool
	}{
		{"línea válida", entity.TransactionLine{ProductID: "p1", Quantity: 3, UnitPrice: usd(10)}, true},
		{"sin producto", entity.TransactionLine{Quantity: 3, UnitPrice: usd(10)}, false},
		{"cantidad cero", entity.TransactionLine{ProductID: "p1", Quantity: 0, UnitPrice: usd(10)}, false},
		{"cantidad negativa", entity.TransactionLine{ProductID: "p1", Quantity: -2, UnitPrice: usd(10)}, false},
		{"precio ausente", entity.TransactionLine{ProductID: "p1", Quantity: 1}, false},
		{"moneda inválida", entity.TransactionLine{ProductID: "p1", Quantity: 1,
			UnitPrice: entity.Money{Amount: decimal.NewFromInt(1), Currency: "usd"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.ValidateLine(tc.line)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			}
		})
	}
}

func TestNormalizeLine_MonedaPorDefecto(t *testing.T) {
	line := entity.TransactionLine{ProductID: "p1", Quantity: 1,
		UnitPrice: entity.Money{Amount: decimal.NewFromInt(5)}}
	out := inventory.NormalizeLine(line, entity.CurrencyUZS)
	assert.Equal(t, entity.CurrencyUZS, out.UnitPrice.Currency)

	line.UnitPrice.Currency = entity.CurrencyUSD
	assert.Equal(t, entity.CurrencyUSD, inventory.NormalizeLine(line, entity.CurrencyUZS).UnitPrice.Currency)
}

func TestDemandByProduct_AgrupaLineasRepetidas(t *testing.T) {
	lines := []entity.TransactionLine{
		{ProductID: "b", Quantity: 2},
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 5},
	}
	got := inventory.DemandByProduct(lines)
	require.Len(t, got, 2)
	assert.Equal(t, inventory.ProductDemand{ProductID: "a", Quantity: 1}, got[0])
	assert.Equal(t, inventory.ProductDemand{ProductID: "b", Quantity: 7}, got[1])
}

func TestCheckAvailability(t *testing.T) {
	stock := map[string]int64{"a": 10, "b": 3}
	lookup := func(id string) (int64, error) { return stock[id], nil }

	assert.NoError(t, inventory.CheckAvailability([]inventory.ProductDemand{{ProductID: "a", Quantity: 10}, {ProductID: "b", Quantity: 3}}, lookup))

	err := inventory.CheckAvailability([]inventory.ProductDemand{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 4}}, lookup)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "b", ise.ProductID)
	assert.Equal(t, int64(4), ise.Requested)
	assert.Equal(t, int64(3), ise.Available)

	// Producto sin balance: disponible 0
	err = inventory.CheckAvailability([]inventory.ProductDemand{{ProductID: "c", Quantity: 1}}, lookup)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	boom := errors.New("db caída")
	err = inventory.CheckAvailability([]inventory.ProductDemand{{ProductID: "a", Quantity: 1}}, func(string) (int64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestComputeTotals(t *testing.T) {
	lines := []entity.TransactionLine{
		{ProductID: "a", Quantity: 2, UnitPrice: usd(100)},
		{ProductID: "b", Quantity: 3, UnitPrice: entity.Money{Amount: decimal.NewFromInt(1000), Currency: entity.CurrencyUZS}},
		{ProductID: "c", Quantity: 1, UnitPrice: usd(50)},
	}

	t.Run("importación con costos adicionales", func(t *testing.T) {
		got := inventory.ComputeTotals(entity.TransactionKindImport, lines, decimal.NewFromInt(25), decimal.Zero, entity.CurrencyUSD)
		assert.True(t, decimal.NewFromInt(275).Equal(got[entity.CurrencyUSD]), got[entity.CurrencyUSD].String())
		assert.True(t, decimal.NewFromInt(3000).Equal(got[entity.CurrencyUZS]))
	})

	t.Run("venta con descuento", func(t *testing.T) {
		got := inventory.ComputeTotals(entity.TransactionKindSale, lines, decimal.Zero, decimal.NewFromInt(10), entity.CurrencyUSD)
		assert.True(t, decimal.NewFromInt(225).Equal(got[entity.CurrencyUSD]), got[entity.CurrencyUSD].String())
		assert.True(t, decimal.NewFromInt(2700).Equal(got[entity.CurrencyUZS]))
	})

	t.Run("venta ignora costos adicionales", func(t *testing.T) {
		got := inventory.ComputeTotals(entity.TransactionKindSale, lines, decimal.NewFromInt(99), decimal.Zero, entity.CurrencyUSD)
		assert.True(t, decimal.NewFromInt(250).Equal(got[entity.CurrencyUSD]))
	})
}

func TestValidDiscount(t *testing.T) {
	assert.True(t, inventory.ValidDiscount(decimal.Zero))
	assert.True(t, inventory.ValidDiscount(decimal.NewFromInt(100)))
	assert.False(t, inventory.ValidDiscount(decimal.NewFromInt(-1)))
	assert.False(t, inventory.ValidDiscount(decimal.NewFromInt(101)))
}

func TestReconcile(t *testing.T) {
	r := inventory.Reconcile("p", 7, 10, 3)
	assert.True(t, r.Consistent)
	assert.Equal(t, int64(7), r.Expected)
	assert.Zero(t, r.Drift)

	r = inventory.Reconcile("p", 9, 10, 3)
	assert.False(t, r.Consistent)
	assert.Equal(t, int64(2), r.Drift)
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 30, 0, 0, time.UTC)

	from, to, err := inventory.ResolveWindow(inventory.WindowToday, nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, 15, to.Day())

	from, to, err = inventory.ResolveWindow(inventory.WindowLastWeek, nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), *from)
	assert.Equal(t, now, *to)

	from, _, err = inventory.ResolveWindow(inventory.WindowLastMonth, nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, time.February, from.Month())

	a, b := now.AddDate(0, 0, -2), now
	from, to, err = inventory.ResolveWindow("", &a, &b, now)
	require.NoError(t, err)
	assert.Equal(t, a, *from)
	assert.Equal(t, b, *to)

	from, to, err = inventory.ResolveWindow("", nil, nil, now)
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)

	_, _, err = inventory.ResolveWindow("ayer", nil, nil, now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = inventory.ResolveWindow("", &b, &a, now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportWindow_PorDefectoUltimoMes(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	from, to, err := inventory.ReportWindow(nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, -1, 0), from)
	assert.Equal(t, now, to)

	start := now.AddDate(0, 0, -3)
	from, to, err = inventory.ReportWindow(&start, nil, now)
	require.NoError(t, err)
	assert.Equal(t, start, from)
	assert.Equal(t, now, to)
}
