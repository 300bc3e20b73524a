package money

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fwojciec/pricecap"
	"github.com/shopspring/decimal"
)

// DefaultMax is the upper bound applied when Options.Max is zero.
const DefaultMax = pricecap.DefaultMaxAmount

// Parse warnings.
const (
	WarnNoNumber        = "no numeric value found"
	WarnMalformed       = "malformed number"
	WarnMixedSeparators = "repeated decimal separator"
	WarnLongFraction    = "unusual decimal precision"
	WarnNegative        = "negative amount"
	WarnZero            = "zero amount"
	WarnBelowMin        = "amount below minimum"
	WarnAboveMax        = "amount above maximum"
)

// Options constrain a parse.
type Options struct {
	// DefaultCurrency is used when nothing is detected and no
	// ExpectedCurrency is set. It does not count as a hint.
	DefaultCurrency string

	// ExpectedCurrency is the caller's expectation. It is used as the
	// fallback currency and as a hint for separator disambiguation.
	ExpectedCurrency string

	// Min is inclusive when non-zero. Max of zero means DefaultMax.
	Min float64
	Max float64

	AllowZero     bool
	AllowNegative bool
}

// Result is the outcome of parsing one piece of text. Money is nil when
// no valid amount could be produced.
type Result struct {
	Money      *pricecap.Money
	Confidence int
	Warnings   []string

	IsFromPrice bool
	IsPerNight  bool
	IsPerPerson bool

	CurrencyDetected bool
	Ambiguous        bool
}

// OK reports whether the parse produced an amount.
func (r Result) OK() bool { return r.Money != nil }

var (
	groupSpaceRe = regexp.MustCompile(`(\d)[\x{00A0}\x{202F}\x{2009}](\d)`)
	asciiGroupRe = regexp.MustCompile(`(\d) (\d{3})([^\d]|$)`)
	isoTokenRe   = regexp.MustCompile(`(?:^|[^A-Za-z])([A-Z]{3})(?:[^A-Za-z]|$)`)
	numberRunRe  = regexp.MustCompile(`\d[\d.,'’]*`)
	canonicalRe  = regexp.MustCompile(`\$\s?\d{1,3}(?:,\d{3})*\.\d{2}(?:[^\d]|$)`)

	zeroWidth = strings.NewReplacer(
		"\u200b", "",
		"\u200c", "",
		"\u200d", "",
		"\u2060", "",
		"\ufeff", "",
	)
)

// Normalize removes zero-width characters and digit-group spaces and
// collapses every other whitespace run to a single space. A plain space is
// a group separator only when exactly three digits follow it, as in
// "1 234,56".
func Normalize(text string) string {
	s := zeroWidth.Replace(text)
	s = replaceUntilStable(s, groupSpaceRe, "$1$2")
	s = replaceUntilStable(s, asciiGroupRe, "$1$2$3")
	return strings.Join(strings.Fields(s), " ")
}

// replaceUntilStable reapplies re until nothing changes, so that adjacent
// groups sharing a digit ("1 234 567") are all joined.
func replaceUntilStable(s string, re *regexp.Regexp, repl string) string {
	for {
		next := re.ReplaceAllString(s, repl)
		if next == s {
			return s
		}
		s = next
	}
}

// Parse extracts a single monetary amount from text.
func Parse(text string, opts Options) Result {
	normalized := Normalize(text)

	var r Result
	r.IsFromPrice = IsFromPrice(normalized)
	r.IsPerNight = IsPerNight(normalized)
	r.IsPerPerson = IsPerPerson(normalized)

	code, krona, detected := detectCurrency(normalized)
	if expected := strings.ToUpper(opts.ExpectedCurrency); krona && kronaCodes[expected] {
		code = expected
	}
	r.CurrencyDetected = detected
	hinted := detected
	if !detected {
		switch {
		case opts.ExpectedCurrency != "":
			code, hinted = strings.ToUpper(opts.ExpectedCurrency), true
		case opts.DefaultCurrency != "":
			code = strings.ToUpper(opts.DefaultCurrency)
		default:
			code = "USD"
		}
	}
	cur, ok := Lookup(code)
	if !ok {
		cur = Currency{Code: code, Decimal: '.', Thousands: ',', MinorUnits: 2}
		hinted = false
	}

	marked := markCurrency(normalized)
	run, start := pickRun(marked)
	if run == "" {
		r.Warnings = append(r.Warnings, WarnNoNumber)
		return r
	}

	numeral, ambiguous, warnings := resolveSeparators(run, cur, hinted)
	r.Ambiguous = ambiguous
	r.Warnings = append(r.Warnings, warnings...)

	amount, err := decimal.NewFromString(numeral)
	if err != nil {
		r.Warnings = append(r.Warnings, WarnMalformed)
		return r
	}
	if isNegated(marked[:start]) {
		amount = amount.Neg()
	}

	if w := validate(amount, opts); w != "" {
		r.Warnings = append(r.Warnings, w)
		return r
	}

	r.Money = &pricecap.Money{Amount: amount, Currency: cur.Code, RawText: strings.TrimSpace(text)}
	r.Confidence = confidence(normalized, amount, r)
	return r
}

// DetectCurrency returns the currency code indicated by text, checking ISO
// codes before symbols.
func DetectCurrency(text string) (string, bool) {
	code, _, ok := detectCurrency(text)
	return code, ok
}

// detectCurrency also reports whether the code came from the shared krona
// sign, which the caller's expected currency may refine.
func detectCurrency(text string) (code string, krona bool, ok bool) {
	for _, m := range isoTokenRe.FindAllStringSubmatch(text, -1) {
		if _, ok := registry[m[1]]; ok {
			return m[1], false, true
		}
	}
	for _, table := range symbolTables() {
		for _, s := range table {
			if strings.Contains(text, s.text) {
				return s.code, false, true
			}
		}
	}
	if kronaRe.MatchString(text) {
		return kronaDefault, true, true
	}
	return "", false, false
}

// HasCurrencyIndicator reports whether text carries any known ISO code or symbol.
func HasCurrencyIndicator(text string) bool {
	_, ok := DetectCurrency(text)
	return ok
}

// currencyMark stands in for a stripped currency indicator so that the
// amount next to it can be found.
const currencyMark = "\x00"

var symbolMarker = func() *strings.Replacer {
	var pairs []string
	for _, s := range allSymbols() {
		pairs = append(pairs, s, currencyMark)
	}
	return strings.NewReplacer(pairs...)
}()

// StripCurrency removes every currency symbol and registered ISO token.
func StripCurrency(text string) string {
	return strings.ReplaceAll(markCurrency(text), currencyMark, " ")
}

// markCurrency replaces every currency symbol and registered ISO token
// with currencyMark.
func markCurrency(text string) string {
	s := symbolMarker.Replace(text)
	s = isoTokenRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := isoTokenRe.FindStringSubmatch(m)
		if _, ok := registry[sub[1]]; !ok {
			return m
		}
		return strings.Replace(m, sub[1], currencyMark, 1)
	})
	return kronaRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := kronaRe.FindStringSubmatch(m)
		return strings.Replace(m, sub[1], currencyMark, 1)
	})
}

// pickRun returns the digit-and-separator run holding the amount and its
// byte offset. A run written next to a currency indicator wins over any
// other, so "10 nights $45" reads 45. Otherwise, and among several marked
// runs, the longest run wins and the first breaks a tie.
func pickRun(marked string) (string, int) {
	var best string
	bestAt := -1
	bestMarked := false
	for _, loc := range numberRunRe.FindAllStringIndex(marked, -1) {
		run := strings.TrimRightFunc(marked[loc[0]:loc[1]], func(r rune) bool { return !unicode.IsDigit(r) })
		isMarked := nextToMark(marked, loc[0], loc[0]+len(run))
		if (isMarked && !bestMarked) || (isMarked == bestMarked && len(run) > len(best)) {
			best, bestAt, bestMarked = run, loc[0], isMarked
		}
	}
	return best, bestAt
}

// nextToMark reports whether a currency mark sits right before
// text[start:end], allowing spaces and a sign, or right after it, allowing
// spaces.
func nextToMark(text string, start, end int) bool {
	before := strings.TrimRight(text[:start], " -−")
	after := strings.TrimLeft(text[end:], " ")
	return strings.HasSuffix(before, currencyMark) || strings.HasPrefix(after, currencyMark)
}

func isNegated(prefix string) bool {
	p := strings.TrimRight(prefix, " "+currencyMark)
	return strings.HasSuffix(p, "-") || strings.HasSuffix(p, "−")
}

// resolveSeparators turns a run such as "1.234,56" into a plain decimal
// numeral. ambiguous is set for a single separator followed by exactly three
// digits.
func resolveSeparators(run string, cur Currency, hinted bool) (numeral string, ambiguous bool, warnings []string) {
	s := strings.NewReplacer("'", "", "’", "").Replace(run)

	dots, commas := strings.Count(s, "."), strings.Count(s, ",")
	switch {
	case dots == 0 && commas == 0:
		return s, false, nil

	case dots > 0 && commas > 0:
		dec, thou := ",", "."
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			dec, thou = ".", ","
		}
		s = strings.ReplaceAll(s, thou, "")
		if strings.Count(s, dec) > 1 {
			warnings = append(warnings, WarnMixedSeparators)
			last := strings.LastIndex(s, dec)
			s = strings.ReplaceAll(s[:last], dec, "") + s[last:]
		}
		return strings.Replace(s, dec, ".", 1), false, warnings
	}

	sep := "."
	if commas > 0 {
		sep = ","
	}
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, ""), false, nil
	}

	idx := strings.Index(s, sep)
	frac := len(s) - idx - 1
	switch {
	case frac == 3:
		if hinted && cur.MinorUnits > 0 && sep[0] == cur.Decimal && sep[0] != cur.Thousands {
			return strings.Replace(s, sep, ".", 1), true, nil
		}
		return strings.Replace(s, sep, "", 1), true, nil
	case frac > 3:
		warnings = append(warnings, WarnLongFraction)
	}
	return strings.Replace(s, sep, ".", 1), false, warnings
}

func validate(amount decimal.Decimal, opts Options) string {
	if amount.IsNegative() && !opts.AllowNegative {
		return WarnNegative
	}
	if amount.IsZero() && !opts.AllowZero {
		return WarnZero
	}
	if opts.Min != 0 && amount.LessThan(decimal.NewFromFloat(opts.Min)) {
		return WarnBelowMin
	}
	limit := opts.Max
	if limit == 0 {
		limit = DefaultMax
	}
	if amount.GreaterThan(decimal.NewFromFloat(limit)) {
		return WarnAboveMax
	}
	return ""
}

var (
	lowPlausible  = decimal.NewFromInt(10)
	highPlausible = decimal.NewFromInt(100_000)
)

func confidence(text string, amount decimal.Decimal, r Result) int {
	c := 100 - 10*len(r.Warnings)
	if !r.CurrencyDetected {
		c -= 15
	}
	if r.Ambiguous {
		c -= 10
	}
	abs := amount.Abs()
	if abs.LessThan(lowPlausible) || abs.GreaterThan(highPlausible) {
		c -= 10
	}
	if r.IsFromPrice {
		c -= 5
	}
	if canonicalRe.MatchString(text) {
		c += 10
	}
	return max(0, min(100, c))
}
