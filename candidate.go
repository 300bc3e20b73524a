package pricecap

// PriceLabel is the role a candidate price plays on the page.
type PriceLabel string

// Closed set of price labels.
const (
	LabelTotal     PriceLabel = "total"
	LabelPerNight  PriceLabel = "perNight"
	LabelPerPerson PriceLabel = "perPerson"
	LabelSubtotal  PriceLabel = "subtotal"
	LabelTaxesFees PriceLabel = "taxesFees"
	LabelDueToday  PriceLabel = "dueToday"
	LabelFrom      PriceLabel = "from"
	LabelUnknown   PriceLabel = "unknown"
)

// RawCandidate is a text node that might carry a price, together with every
// DOM-derived signal the scorer needs. Scanners fill it in; nothing
// downstream touches the document.
type RawCandidate struct {
	// Text is the trimmed text of the node.
	Text string

	// Money is the parsed amount. MoneyConfidence is the parser's 0..100 score.
	Money           Money
	MoneyConfidence int
	MoneyWarnings   []string

	// Qualifiers detected by the money parser.
	IsFromPrice bool
	IsPerNight  bool
	IsPerPerson bool

	// Path is a short CSS-like path to the owning element.
	Path string

	// NearbyText is the text of siblings and small ancestors.
	// NearbyLabels holds short label-like strings, closest first.
	NearbyText   string
	NearbyLabels []string

	// AriaLabel and TestID are taken from the element or a close ancestor.
	AriaLabel string
	TestID    string

	// Rendering signals. FontSizePx and FontWeight are zero when unknown.
	FontSizePx  float64
	FontWeight  int
	Opacity     float64
	LineThrough bool
	Visible     bool
	InViewport  bool

	// Structure signals.
	ChildElementCount  int
	PriceCount         int
	InSummaryContainer bool
	NearCheckoutButton bool
}

// CandidateFlags are the boolean evidence flags produced by scoring.
type CandidateFlags struct {
	IsInSummaryContainer   bool `json:"isInSummaryContainer"`
	HasTotalKeywordNearby  bool `json:"hasTotalKeywordNearby"`
	HasTotalKeywordInText  bool `json:"hasTotalKeywordInText"`
	HasAriaTotal           bool `json:"hasAriaTotal"`
	HasTestIDTotal         bool `json:"hasTestIdTotal"`
	IsNearCheckoutButton   bool `json:"isNearCheckoutButton"`
	IsPerNight             bool `json:"isPerNight"`
	IsFromPrice            bool `json:"isFromPrice"`
	IsPerPerson            bool `json:"isPerPerson"`
	ContainsMultiplePrices bool `json:"containsMultiplePrices"`
	PriceCountInElement    int  `json:"priceCountInElement"`
}

// HasTotalLabel reports whether "total" wording appears in or near the candidate.
func (f CandidateFlags) HasTotalLabel() bool {
	return f.HasTotalKeywordNearby || f.HasTotalKeywordInText
}

// HasSemanticTotal reports whether an aria-label or test id marks the total.
func (f CandidateFlags) HasSemanticTotal() bool {
	return f.HasAriaTotal || f.HasTestIDTotal
}

// IsDisqualified reports whether a per-night, from, or per-person qualifier is present.
func (f CandidateFlags) IsDisqualified() bool {
	return f.IsPerNight || f.IsFromPrice || f.IsPerPerson
}

// Candidate is a scored RawCandidate. Score is never negative.
type Candidate struct {
	RawCandidate

	Score     int
	Reasons   []string
	Penalties []string
	Label     PriceLabel
	Flags     CandidateFlags
}

// ScanResult is the output of a CandidateScanner.
type ScanResult struct {
	Candidates   []RawCandidate
	NodesVisited int
	// CapReached is true when the walk stopped at the node cap.
	CapReached bool
	Warnings   []string
}

// CandidateScanner discovers price-like text in an HTML document.
type CandidateScanner interface {
	// Scan walks the document (or the subtrees selected by opts.Container)
	// and returns raw candidates, each already carrying parsed Money.
	// Errors are returned only for unusable input such as an invalid
	// container selector; finding nothing is not an error.
	Scan(html string, opts HeuristicOptions) (*ScanResult, error)
}
