package money

import (
	"regexp"
	"strings"
)

var fromPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfrom\b`),
	regexp.MustCompile(`(?i)\bstart(?:ing|s)?\s+(?:at|from)\b`),
	regexp.MustCompile(`(?i)\bas\s+low\s+as\b`),
	regexp.MustCompile(`(?i)\b(?:desde|ab)\b`),
	regexp.MustCompile(`(?i)(?:^|\s)à\s+partir\s+de\b`),
}

var perNightPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/\s*(?:night|nite|nt)\b`),
	regexp.MustCompile(`(?i)\b(?:per|a|each)\s+night\b`),
	regexp.MustCompile(`(?i)\bnightly\b`),
	regexp.MustCompile(`(?i)\b(?:pro\s+nacht|par\s+nuit|por\s+noche)\b`),
}

var perPersonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/\s*(?:person|guest|adult|pax|traveler|traveller|pp)\b`),
	regexp.MustCompile(`(?i)\b(?:per|each)\s+(?:person|guest|adult|traveler|traveller|pax)\b`),
	regexp.MustCompile(`(?i)\bpp\b`),
	regexp.MustCompile(`(?i)\b(?:pro\s+person|par\s+personne|por\s+persona)\b`),
}

// IsFromPrice reports whether text carries a "from"/"starting at" qualifier.
func IsFromPrice(text string) bool { return matchAny(fromPatterns, text) }

// IsPerNight reports whether text carries a per-night qualifier.
func IsPerNight(text string) bool { return matchAny(perNightPatterns, text) }

// IsPerPerson reports whether text carries a per-person qualifier.
func IsPerPerson(text string) bool { return matchAny(perPersonPatterns, text) }

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var (
	groupedNumberRe = regexp.MustCompile(`\d{1,3}(?:[.,'’ ]\d{3})+(?:[.,]\d{1,2})?|\d+[.,]\d{2}(?:\D|$)`)

	amountRe = func() *regexp.Regexp {
		syms := allSymbols()
		for i, s := range syms {
			syms[i] = regexp.QuoteMeta(s)
		}
		sym := strings.Join(append(syms, `\b[Kk]r\b\.?`), "|")
		codes := strings.Join(Codes(), "|")
		num := `\d[\d.,'’]*`
		return regexp.MustCompile(
			`(?:` + sym + `)\s?-?` + num +
				`|\b(?:` + codes + `)\s?-?` + num +
				`|` + num + `\s?(?:` + sym + `|(?:` + codes + `)\b)`)
	}()

	nonDigitRe = regexp.MustCompile(`\D`)
)

// maxPlainPriceLen bounds text that has no currency indicator but may still be
// a bare formatted amount.
const maxPlainPriceLen = 40

// LooksLikePrice is a cheap pre-parse filter: text must contain a digit and
// either a currency indicator or a short numeral with grouping or decimal
// punctuation.
func LooksLikePrice(text string) bool {
	if !strings.ContainsAny(text, "0123456789") {
		return false
	}
	if HasCurrencyIndicator(text) {
		return true
	}
	return len(text) <= maxPlainPriceLen && groupedNumberRe.MatchString(text)
}

// CountAmounts returns the number of distinct currency-marked amounts in text.
// "$50 or 50 USD" counts once.
func CountAmounts(text string) int {
	seen := make(map[string]struct{})
	for _, m := range amountRe.FindAllString(Normalize(text), -1) {
		digits := nonDigitRe.ReplaceAllString(strings.TrimRight(m, ".,'’ "), "")
		if digits == "" {
			continue
		}
		seen[strings.TrimLeft(digits, "0")] = struct{}{}
	}
	return len(seen)
}
