package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pricecap"
)

// Ensure LoggingExtractor implements pricecap.PriceTier.
var _ pricecap.PriceTier = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a PriceTier with logging.
type LoggingExtractor struct {
	next   pricecap.PriceTier
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next pricecap.PriceTier, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Name delegates to the wrapped tier.
func (e *LoggingExtractor) Name() string {
	return e.next.Name()
}

// ExtractPrice delegates to the wrapped tier and logs the outcome.
func (e *LoggingExtractor) ExtractPrice(html string, opts pricecap.HeuristicOptions) (result *pricecap.ExtractionResult[pricecap.PriceBreakdown]) {
	defer func(begin time.Time) {
		attrs := []any{
			"tier", e.next.Name(),
			"pageType", opts.PageType,
			"bytes", len(html),
		}
		if result != nil {
			attrs = append(attrs,
				"ok", result.OK,
				"confidence", result.Confidence,
			)
			if m := result.Value.Primary(); m != nil {
				attrs = append(attrs, "amount", m.Amount.String(), "currency", m.Currency)
			}
			if d := result.Diagnostics; d != nil {
				attrs = append(attrs, "candidates", d.CandidateCount)
			}
			if len(result.Errors) > 0 {
				attrs = append(attrs, "errors", result.Errors)
			}
		}
		attrs = append(attrs, "duration", time.Since(begin))
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.ExtractPrice(html, opts)
}
