package pricecap

// Method identifies how a result was produced.
type Method string

// Extraction methods.
const (
	MethodHeuristic    Method = "heuristic"
	MethodSiteSpecific Method = "site-specific"
)

// PriceBreakdown decomposes a total price.
// Base equals Total minus TaxesFees whenever both are known.
type PriceBreakdown struct {
	Base        *Money `json:"base,omitempty"`
	TaxesFees   *Money `json:"taxesFees,omitempty"`
	Total       *Money `json:"total,omitempty"`
	PerNight    *Money `json:"perNight,omitempty"`
	Nights      int    `json:"nights,omitempty"`
	IsFromPrice bool   `json:"isFromPrice,omitempty"`
	IsPerPerson bool   `json:"isPerPerson,omitempty"`
	PerPerson   *Money `json:"perPerson,omitempty"`
	GuestCount  int    `json:"guestCount,omitempty"`
}

// Primary returns the headline amount: Total when known, else PerNight, else PerPerson.
func (b *PriceBreakdown) Primary() *Money {
	switch {
	case b == nil:
		return nil
	case b.Total != nil:
		return b.Total
	case b.PerNight != nil:
		return b.PerNight
	default:
		return b.PerPerson
	}
}

// CandidateScore is the audit view of a scored candidate.
type CandidateScore struct {
	Text      string   `json:"text"`
	Score     int      `json:"score"`
	Label     string   `json:"label,omitempty"`
	Reasons   []string `json:"reasons"`
	Penalties []string `json:"penalties"`
}

// Evidence is the audit record attached to every extraction attempt,
// successful or not.
type Evidence struct {
	MatchedText   string           `json:"matchedText,omitempty"`
	Amount        string           `json:"amount,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	Path          string           `json:"path,omitempty"`
	NearbyLabels  []string         `json:"nearbyLabels,omitempty"`
	TopCandidates []CandidateScore `json:"topCandidates"`
	Warnings      []string         `json:"warnings,omitempty"`
}

// Diagnostics explains how a result was reached.
type Diagnostics struct {
	SuccessfulTier string           `json:"successfulTier,omitempty"`
	TiersAttempted []string         `json:"tiersAttempted,omitempty"`
	NodesVisited   int              `json:"nodesVisited"`
	CapReached     bool             `json:"capReached,omitempty"`
	CandidateCount int              `json:"candidateCount"`
	AnchorCount    int              `json:"anchorCount"`
	Gap            int              `json:"gap"`
	Ambiguous      bool             `json:"ambiguous,omitempty"`
	Gates          []string         `json:"gates,omitempty"`
	MissingSignals []string         `json:"missingSignals,omitempty"`
	Candidates     []CandidateScore `json:"candidates,omitempty"`
}

// ExtractionResult wraps the outcome of an extraction.
//
// OK false implies Confidence is ConfidenceNone and Value is nil. OK true
// implies Value is set and Confidence is above ConfidenceNone.
type ExtractionResult[T any] struct {
	OK          bool         `json:"ok"`
	Value       *T           `json:"value,omitempty"`
	Confidence  Confidence   `json:"confidence"`
	Method      Method       `json:"method"`
	Evidence    Evidence     `json:"evidence"`
	Errors      []string     `json:"errors,omitempty"`
	LatencyMs   int64        `json:"latencyMs"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// PriceExtractor extracts a price breakdown from an HTML document.
// Implementations never panic or return errors: every failure is reported
// in the result.
type PriceExtractor interface {
	ExtractPrice(html string, opts HeuristicOptions) *ExtractionResult[PriceBreakdown]
}

// PriceTier is a named PriceExtractor that can be chained behind or in
// front of other tiers, e.g. site-specific extractors ahead of the heuristic engine.
type PriceTier interface {
	PriceExtractor

	// Name identifies the tier in Diagnostics.
	Name() string
}
