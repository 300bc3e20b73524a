// Package money parses and formats monetary text from web pages.
//
// Parsing is deliberately tolerant: it normalizes whitespace, detects the
// currency from ISO codes and symbols, and resolves the decimal/thousands
// separator ambiguity using the currency's conventions. Every parse returns
// a 0..100 confidence and the warnings that lowered it.
package money

import (
	"regexp"
	"sort"
	"strings"
)

// Currency describes how a currency is conventionally written.
type Currency struct {
	Code string

	// Symbol is the prefix Format writes. Empty means the code followed by a space.
	Symbol string

	Decimal    byte
	Thousands  byte
	MinorUnits int
}

var registry = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"EUR": {Code: "EUR", Symbol: "€", Decimal: ',', Thousands: '.', MinorUnits: 2},
	"GBP": {Code: "GBP", Symbol: "£", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"JPY": {Code: "JPY", Symbol: "¥", Decimal: '.', Thousands: ',', MinorUnits: 0},
	"CNY": {Code: "CNY", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"INR": {Code: "INR", Symbol: "₹", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"CAD": {Code: "CAD", Symbol: "CA$", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"AUD": {Code: "AUD", Symbol: "A$", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"NZD": {Code: "NZD", Symbol: "NZ$", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"HKD": {Code: "HKD", Symbol: "HK$", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"SGD": {Code: "SGD", Symbol: "S$", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"CHF": {Code: "CHF", Decimal: '.', Thousands: '\'', MinorUnits: 2},
	"AED": {Code: "AED", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"MXN": {Code: "MXN", Symbol: "MX$", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"BRL": {Code: "BRL", Symbol: "R$", Decimal: ',', Thousands: '.', MinorUnits: 2},
	"KRW": {Code: "KRW", Symbol: "₩", Decimal: '.', Thousands: ',', MinorUnits: 0},
	"THB": {Code: "THB", Symbol: "฿", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"TRY": {Code: "TRY", Symbol: "₺", Decimal: ',', Thousands: '.', MinorUnits: 2},
	"ILS": {Code: "ILS", Symbol: "₪", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"SEK": {Code: "SEK", Decimal: ',', Thousands: '.', MinorUnits: 2},
	"NOK": {Code: "NOK", Decimal: ',', Thousands: '.', MinorUnits: 2},
	"DKK": {Code: "DKK", Decimal: ',', Thousands: '.', MinorUnits: 2},
	"PLN": {Code: "PLN", Decimal: ',', Thousands: '.', MinorUnits: 2},
	"ZAR": {Code: "ZAR", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"SAR": {Code: "SAR", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"QAR": {Code: "QAR", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"KWD": {Code: "KWD", Decimal: '.', Thousands: ',', MinorUnits: 3},
	"BHD": {Code: "BHD", Decimal: '.', Thousands: ',', MinorUnits: 3},
	"PHP": {Code: "PHP", Symbol: "₱", Decimal: '.', Thousands: ',', MinorUnits: 2},
	"VND": {Code: "VND", Symbol: "₫", Decimal: ',', Thousands: '.', MinorUnits: 0},
}

// Lookup returns the registry entry for an ISO-4217 code.
func Lookup(code string) (Currency, bool) {
	c, ok := registry[strings.ToUpper(code)]
	return c, ok
}

// Codes returns every supported currency code in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

type symbol struct {
	text string
	code string
}

// Detection tables, checked in this order. Prefixed forms are listed
// longest first so that "CA$" wins over "A$" and "US$" over "S$".
var (
	prefixedSymbols = []symbol{
		{"CA$", "CAD"},
		{"NZ$", "NZD"},
		{"HK$", "HKD"},
		{"US$", "USD"},
		{"MX$", "MXN"},
		{"CN¥", "CNY"},
		{"C$", "CAD"},
		{"R$", "BRL"},
		{"A$", "AUD"},
		{"S$", "SGD"},
	}

	unambiguousSymbols = []symbol{
		{"€", "EUR"},
		{"£", "GBP"},
		{"₹", "INR"},
	}

	yenSymbols = []symbol{
		{"¥", "JPY"},
		{"￥", "JPY"},
	}

	dollarSymbols = []symbol{
		{"$", "USD"},
	}

	otherSymbols = []symbol{
		{"₩", "KRW"},
		{"฿", "THB"},
		{"₺", "TRY"},
		{"₪", "ILS"},
		{"₱", "PHP"},
		{"₫", "VND"},
		{"zł", "PLN"},
	}
)

// The krona sign is letters, so it only counts standing alone ("kr 1.234,50",
// "450 kr."), never inside a word. Swedish, Norwegian and Danish prices all
// use it; it reads as SEK unless the caller expects one of the others.
var (
	kronaRe = regexp.MustCompile(`(?i)(?:^|[^\pL])(kr\.?)(?:[^\pL]|$)`)

	kronaCodes = map[string]bool{"SEK": true, "NOK": true, "DKK": true}
)

const kronaDefault = "SEK"

// symbolTables returns the detection tables in priority order.
func symbolTables() [][]symbol {
	return [][]symbol{prefixedSymbols, unambiguousSymbols, yenSymbols, dollarSymbols, otherSymbols}
}

// allSymbols returns every symbol text, longest first.
func allSymbols() []string {
	var out []string
	for _, table := range symbolTables() {
		for _, s := range table {
			out = append(out, s.text)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}
