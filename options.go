package pricecap

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Resource bounds. They exist purely to cap worst-case latency on
// pathological or adversarial markup; hitting either degrades to best effort
// with whatever was found so far.
const (
	// DefaultMaxNodes is the number of text nodes the scanner visits before it
	// stops and keeps the candidates it already has.
	DefaultMaxNodes = 2000

	// DefaultMaxDepth bounds recursive text extraction below a single element.
	DefaultMaxDepth = 20
)

// Heuristic thresholds shared across packages.
const (
	// MinCandidateScore is the lowest top score an extraction can succeed with.
	MinCandidateScore = 20

	// DefaultMaxAmount is the upper bound for a parsed amount unless a
	// PriceRange says otherwise.
	DefaultMaxAmount = 10_000_000

	// MaxTopCandidates is the number of scored candidates kept in Evidence.
	MaxTopCandidates = 5
)

// PageType classifies the page the price is being extracted from.
type PageType string

// Supported page types. The empty value is treated as PageTypeUnknown.
const (
	PageTypeUnknown      PageType = "unknown"
	PageTypeSearch       PageType = "search"
	PageTypeDetails      PageType = "details"
	PageTypeCheckout     PageType = "checkout"
	PageTypeBooking      PageType = "booking"
	PageTypeAvailability PageType = "availability"
)

// PageTypes lists every recognized page type.
func PageTypes() []PageType {
	return []PageType{
		PageTypeUnknown,
		PageTypeSearch,
		PageTypeDetails,
		PageTypeCheckout,
		PageTypeBooking,
		PageTypeAvailability,
	}
}

// IsCheckout reports whether the page is a checkout or booking page.
func (p PageType) IsCheckout() bool {
	return p == PageTypeCheckout || p == PageTypeBooking
}

// IsBrowsing reports whether the page lists many offers (search or availability).
func (p PageType) IsBrowsing() bool {
	return p == PageTypeSearch || p == PageTypeAvailability
}

// PageTypeDetector guesses the type of a page from its HTML, for callers
// that do not know it.
type PageTypeDetector interface {
	// DetectPageType returns PageTypeUnknown when no signal is conclusive.
	DetectPageType(html string) PageType
}

// PriceRange bounds acceptable amounts, in major units.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether amount falls inside the range (inclusive).
// A zero Max is treated as unbounded.
func (r *PriceRange) Contains(amount decimal.Decimal) bool {
	if r == nil {
		return true
	}
	if amount.LessThan(decimal.NewFromFloat(r.Min)) {
		return false
	}
	if r.Max > 0 && amount.GreaterThan(decimal.NewFromFloat(r.Max)) {
		return false
	}
	return true
}

// StabilityInfo is supplied by an external observer that re-samples the page
// over time. The engine treats it as a pure input and never stores it.
// StableDuration travels as whole milliseconds under "stableDurationMs".
type StabilityInfo struct {
	StableReadCount  int
	StableDuration   time.Duration
	PriceWasUnstable bool
}

type stabilityInfoJSON struct {
	StableReadCount  int   `json:"stableReadCount"`
	StableDurationMs int64 `json:"stableDurationMs"`
	PriceWasUnstable bool  `json:"priceWasUnstable,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s StabilityInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(stabilityInfoJSON{
		StableReadCount:  s.StableReadCount,
		StableDurationMs: s.StableDuration.Milliseconds(),
		PriceWasUnstable: s.PriceWasUnstable,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StabilityInfo) UnmarshalJSON(data []byte) error {
	var v stabilityInfoJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = StabilityInfo{
		StableReadCount:  v.StableReadCount,
		StableDuration:   time.Duration(v.StableDurationMs) * time.Millisecond,
		PriceWasUnstable: v.PriceWasUnstable,
	}
	return nil
}

// HeuristicOptions configures a single extraction pass.
type HeuristicOptions struct {
	// PageType is the caller's classification of the page. Defaults to unknown.
	PageType PageType

	// PriceRange drops candidates outside the range. Nil means no bound
	// beyond the parser's defaults (greater than 0, at most DefaultMaxAmount).
	PriceRange *PriceRange

	// ExpectedCurrency is an ISO-4217 code used as the parse hint and for
	// the currency-mismatch gate. Either case is accepted; WithDefaults
	// upper-cases it. Empty means no expectation.
	ExpectedCurrency string

	// Container is a CSS selector narrowing the scan to matching subtrees.
	// Empty scans the whole document.
	Container string

	// IncludeOffscreen keeps candidates whose rendered geometry lies outside
	// the viewport. Has no effect on unrendered HTML.
	IncludeOffscreen bool

	// Debug adds every scored candidate to Diagnostics.
	Debug bool

	// Stability is the optional observation record from a stability watcher.
	Stability *StabilityInfo

	// MaxNodes overrides DefaultMaxNodes when positive.
	MaxNodes int
}

var currencyCodeRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

// Validate returns an error if the options contain invalid fields.
func (o *HeuristicOptions) Validate() error {
	if o.PageType != "" && !o.PageType.valid() {
		return Errorf(EINVALID, "unknown page type %q", o.PageType)
	}
	if r := o.PriceRange; r != nil {
		if r.Min < 0 || r.Max < 0 {
			return Errorf(EINVALID, "price range must not be negative")
		}
		if r.Max > 0 && r.Min > r.Max {
			return Errorf(EINVALID, "price range min %v exceeds max %v", r.Min, r.Max)
		}
	}
	if o.ExpectedCurrency != "" && !currencyCodeRe.MatchString(o.ExpectedCurrency) {
		return Errorf(EINVALID, "expected currency %q is not a 3-letter code", o.ExpectedCurrency)
	}
	if s := o.Stability; s != nil {
		if s.StableReadCount < 0 || s.StableDuration < 0 {
			return Errorf(EINVALID, "stability info must not be negative")
		}
	}
	if o.MaxNodes < 0 {
		return Errorf(EINVALID, "max nodes must not be negative")
	}
	return nil
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o HeuristicOptions) WithDefaults() HeuristicOptions {
	if o.PageType == "" {
		o.PageType = PageTypeUnknown
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	o.ExpectedCurrency = strings.ToUpper(o.ExpectedCurrency)
	return o
}

func (p PageType) valid() bool {
	for _, known := range PageTypes() {
		if p == known {
			return true
		}
	}
	return false
}
