package pricecap

import "github.com/shopspring/decimal"

// Money is a monetary amount in major units (dollars, not cents).
// Values are constructed fresh per parse and never mutated.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	RawText  string          `json:"rawText,omitempty"`
}

// SameCurrency reports whether m and other are denominated in the same currency.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}
