package entity

import "github.com/shopspring/decimal"

// Monedas aceptadas históricamente por el negocio. Cualquier código ISO 4217 de 3 letras es válido.
const (
	CurrencyUSD = "USD"
	CurrencyUZS = "UZS"
)

// Money importe con su moneda (precio unitario de un movimiento o del balance).
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Valid indica si el importe es positivo y la moneda tiene forma de código ISO (3 letras mayúsculas).
func (m Money) Valid() bool {
	if !m.Amount.GreaterThan(decimal.Zero) {
		return false
	}
	return IsCurrencyCode(m.Currency)
}

// IsCurrencyCode valida el formato del código de moneda.
func IsCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
