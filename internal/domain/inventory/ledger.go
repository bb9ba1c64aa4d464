package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ValidateLine valida una línea de movimiento: producto, cantidad entera positiva y precio presente.
func ValidateLine(line entity.TransactionLine) error {
	if line.ProductID == "" || line.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	if !line.UnitPrice.Valid() {
		return domain.ErrInvalidInput
	}
	return nil
}

// NormalizeLine aplica la moneda por defecto cuando la línea no la trae.
func NormalizeLine(line entity.TransactionLine, defaultCurrency string) entity.TransactionLine {
	if line.UnitPrice.Currency == "" {
		line.UnitPrice.Currency = defaultCurrency
	}
	return line
}

// ProductDemand cantidad total pedida de un producto dentro de una transacción.
type ProductDemand struct {
	ProductID string
	Quantity  int64
}

// DemandByProduct agrupa las líneas por producto (orden estable por ProductID).
// Sirve para la pasada de validación previa: dos líneas del mismo producto compiten por el mismo stock.
func DemandByProduct(lines []entity.TransactionLine) []ProductDemand {
	sum := make(map[string]int64, len(lines))
	for _, l := range lines {
		sum[l.ProductID] += l.Quantity
	}
	out := make([]ProductDemand, 0, len(sum))
	for id, q := range sum {
		out = append(out, ProductDemand{ProductID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// CheckAvailability compara la demanda con el stock disponible y devuelve el primer faltante.
// available se consulta por producto; un producto sin balance tiene 0.
func CheckAvailability(demand []ProductDemand, available func(productID string) (int64, error)) error {
	for _, d := range demand {
		have, err := available(d.ProductID)
		if err != nil {
			return err
		}
		if have < d.Quantity {
			return &domain.InsufficientStockError{ProductID: d.ProductID, Requested: d.Quantity, Available: have}
		}
	}
	return nil
}

// ComputeTotals calcula el total por moneda de las líneas.
// IMPORT: suma additionalCosts en la moneda por defecto. SALE: aplica discountPercent (0..100) a cada moneda.
func ComputeTotals(kind string, lines []entity.TransactionLine, additionalCosts, discountPercent decimal.Decimal, defaultCurrency string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, l := range lines {
		sub := l.UnitPrice.Amount.Mul(decimal.NewFromInt(l.Quantity))
		totals[l.UnitPrice.Currency] = totals[l.UnitPrice.Currency].Add(sub)
	}
	switch kind {
	case entity.TransactionKindImport:
		if additionalCosts.GreaterThan(decimal.Zero) {
			totals[defaultCurrency] = totals[defaultCurrency].Add(additionalCosts)
		}
	case entity.TransactionKindSale:
		if discountPercent.GreaterThan(decimal.Zero) {
			factor := hundred.Sub(discountPercent).Div(hundred)
			for cur, v := range totals {
				totals[cur] = v.Mul(factor).Round(2)
			}
		}
	}
	return totals
}

// ValidDiscount indica si el porcentaje de descuento está en [0, 100].
func ValidDiscount(p decimal.Decimal) bool {
	return !p.LessThan(decimal.Zero) && !p.GreaterThan(hundred)
}

// Reconciliation resultado de recalcular un balance desde el libro.
type Reconciliation struct {
	ProductID      string `json:"product_id"`
	QuantityOnHand int64  `json:"quantity_on_hand"`
	IncomingTotal  int64  `json:"incoming_total"`
	OutgoingTotal  int64  `json:"outgoing_total"`
	Expected       int64  `json:"expected"`
	Drift          int64  `json:"drift"` // QuantityOnHand - Expected
	Consistent     bool   `json:"consistent"`
}

// Reconcile compara el balance guardado con Σ entradas − Σ salidas.
func Reconcile(productID string, onHand, incoming, outgoing int64) Reconciliation {
	expected := incoming - outgoing
	return Reconciliation{
		ProductID:      productID,
		QuantityOnHand: onHand,
		IncomingTotal:  incoming,
		OutgoingTotal:  outgoing,
		Expected:       expected,
		Drift:          onHand - expected,
		Consistent:     onHand == expected && onHand >= 0,
	}
}
