package money

import (
	"strings"

	"github.com/fwojciec/pricecap"
)

// Format renders m in its currency's canonical form, e.g. "$1,234.56",
// "€1.234,56" or "AED 3,200.00". The output parses back to the same amount.
func Format(m pricecap.Money) string {
	cur, ok := Lookup(m.Currency)
	if !ok {
		cur = Currency{Code: strings.ToUpper(m.Currency), Decimal: '.', Thousands: ',', MinorUnits: 2}
	}

	fixed := m.Amount.Abs().StringFixed(int32(cur.MinorUnits))
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if m.Amount.IsNegative() {
		b.WriteByte('-')
	}
	if cur.Symbol != "" {
		b.WriteString(cur.Symbol)
	} else {
		b.WriteString(cur.Code)
		b.WriteByte(' ')
	}
	b.WriteString(group(whole, cur.Thousands))
	if frac != "" {
		b.WriteByte(cur.Decimal)
		b.WriteString(frac)
	}
	return b.String()
}

func group(digits string, sep byte) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
