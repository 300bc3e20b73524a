package mock

import "github.com/fwojciec/pricecap"

var _ pricecap.PriceTier = (*PriceTier)(nil)

// PriceTier is a mock implementation of pricecap.PriceTier.
type PriceTier struct {
	NameFn         func() string
	ExtractPriceFn func(html string, opts pricecap.HeuristicOptions) *pricecap.ExtractionResult[pricecap.PriceBreakdown]
}

func (t *PriceTier) Name() string {
	return t.NameFn()
}

func (t *PriceTier) ExtractPrice(html string, opts pricecap.HeuristicOptions) *pricecap.ExtractionResult[pricecap.PriceBreakdown] {
	return t.ExtractPriceFn(html, opts)
}
