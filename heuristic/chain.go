package heuristic

import "github.com/fwojciec/pricecap"

// Ensure Chain implements pricecap.PriceExtractor at compile time.
var _ pricecap.PriceExtractor = (*Chain)(nil)

// Chain runs extraction tiers in order and returns the first successful
// result, typically site-specific extractors followed by an Engine.
type Chain struct {
	Tiers []pricecap.PriceTier
}

// NewChain returns a Chain over tiers.
func NewChain(tiers ...pricecap.PriceTier) *Chain {
	return &Chain{Tiers: tiers}
}

// ExtractPrice implements pricecap.PriceExtractor. Every returned result
// carries the attempted tiers; on success SuccessfulTier names the winner.
// When all tiers fail the last failure is returned.
func (c *Chain) ExtractPrice(html string, opts pricecap.HeuristicOptions) *pricecap.ExtractionResult[pricecap.PriceBreakdown] {
	var attempted []string
	var last *pricecap.ExtractionResult[pricecap.PriceBreakdown]
	var latency int64

	for _, tier := range c.Tiers {
		attempted = append(attempted, tier.Name())
		result := tier.ExtractPrice(html, opts)
		if result == nil {
			continue
		}
		latency += result.LatencyMs
		last = result
		if result.OK {
			annotate(result, attempted, tier.Name(), latency)
			return result
		}
	}

	if last == nil {
		diag := &pricecap.Diagnostics{MissingSignals: MissingSignals(nil, opts.PageType)}
		last = failure(pricecap.Evidence{TopCandidates: []pricecap.CandidateScore{}}, diag, ErrNoTiers)
	}
	annotate(last, attempted, "", latency)
	return last
}

func annotate(r *pricecap.ExtractionResult[pricecap.PriceBreakdown], attempted []string, successful string, latency int64) {
	if r.Diagnostics == nil {
		r.Diagnostics = &pricecap.Diagnostics{}
	}
	r.Diagnostics.TiersAttempted = attempted
	r.Diagnostics.SuccessfulTier = successful
	r.LatencyMs = latency
}
