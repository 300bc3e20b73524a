package heuristic

import (
	"fmt"
	"time"

	"github.com/fwojciec/pricecap"
)

// TierName is the name the heuristic engine reports in Diagnostics.
const TierName = "heuristic"

// Failure messages reported in ExtractionResult.Errors.
const (
	ErrNoCandidates  = "no price candidates found"
	ErrLowScore      = "best candidate scored below threshold"
	ErrNoConfidence  = "best candidate not trustworthy enough"
	ErrScannerFailed = "candidate scan failed"
	ErrNoTiers       = "no extraction tier produced a result"
)

// Ensure Engine implements pricecap.PriceTier at compile time.
var _ pricecap.PriceTier = (*Engine)(nil)

// Engine is the generic, site-agnostic price extractor. It scans, scores,
// classifies and explains in one synchronous pass and never panics.
type Engine struct {
	Scanner pricecap.CandidateScanner
}

// NewEngine returns an Engine reading candidates from scanner.
func NewEngine(scanner pricecap.CandidateScanner) *Engine {
	return &Engine{Scanner: scanner}
}

// Name implements pricecap.PriceTier.
func (e *Engine) Name() string { return TierName }

// ExtractPrice implements pricecap.PriceExtractor.
func (e *Engine) ExtractPrice(html string, opts pricecap.HeuristicOptions) (result *pricecap.ExtractionResult[pricecap.PriceBreakdown]) {
	begin := time.Now()
	diag := &pricecap.Diagnostics{MissingSignals: MissingSignals(nil, opts.PageType)}
	defer func() {
		if r := recover(); r != nil {
			result = failure(pricecap.Evidence{TopCandidates: []pricecap.CandidateScore{}}, diag,
				fmt.Sprintf("internal error: %v", r))
		}
		result.LatencyMs = time.Since(begin).Milliseconds()
	}()

	emptyEvidence := pricecap.Evidence{TopCandidates: []pricecap.CandidateScore{}}
	if err := opts.Validate(); err != nil {
		return failure(emptyEvidence, diag, pricecap.ErrorMessage(err))
	}
	opts = opts.WithDefaults()

	scan, err := e.Scanner.Scan(html, opts)
	if err != nil {
		return failure(emptyEvidence, diag, fmt.Sprintf("%s: %s", ErrScannerFailed, pricecap.ErrorMessage(err)))
	}
	if scan == nil {
		scan = &pricecap.ScanResult{}
	}

	ranked := ScoreAll(scan.Candidates, opts.PageType)
	diag.NodesVisited = scan.NodesVisited
	diag.CapReached = scan.CapReached
	diag.CandidateCount = len(ranked)
	if opts.Debug {
		diag.Candidates = TopCandidates(ranked, -1)
	}

	if len(ranked) == 0 {
		return failure(BuildEvidence(nil, ranked, scan.Warnings), diag, ErrNoCandidates)
	}

	best := ranked[0]
	if best.Score < pricecap.MinCandidateScore {
		diag.MissingSignals = MissingSignals(&best, opts.PageType)
		return failure(BuildEvidence(nil, ranked, scan.Warnings), diag, ErrLowScore)
	}

	in := ClassifyInput{
		Best:             best,
		CandidateCount:   len(ranked),
		PageType:         opts.PageType,
		ExpectedCurrency: opts.ExpectedCurrency,
		Stability:        opts.Stability,
	}
	if len(ranked) > 1 {
		in.SecondBest = &ranked[1]
	}
	cls := Classify(in)
	diag.AnchorCount = cls.AnchorCount
	diag.Gap = cls.Gap
	diag.Ambiguous = cls.Ambiguous
	diag.Gates = cls.Gates
	diag.MissingSignals = cls.MissingSignals

	evidence := BuildEvidence(&best, ranked, scan.Warnings)
	if cls.Confidence == pricecap.ConfidenceNone {
		return failure(evidence, diag, ErrNoConfidence)
	}

	breakdown := AssembleBreakdown(best, ranked)
	return &pricecap.ExtractionResult[pricecap.PriceBreakdown]{
		OK:          true,
		Value:       &breakdown,
		Confidence:  cls.Confidence,
		Method:      pricecap.MethodHeuristic,
		Evidence:    evidence,
		Diagnostics: diag,
	}
}

func failure(ev pricecap.Evidence, diag *pricecap.Diagnostics, msg string) *pricecap.ExtractionResult[pricecap.PriceBreakdown] {
	return &pricecap.ExtractionResult[pricecap.PriceBreakdown]{
		Confidence:  pricecap.ConfidenceNone,
		Method:      pricecap.MethodHeuristic,
		Evidence:    ev,
		Errors:      []string{msg},
		Diagnostics: diag,
	}
}
