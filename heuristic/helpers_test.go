package heuristic_test

import (
	"github.com/fwojciec/pricecap"
	"github.com/shopspring/decimal"
)

// raw returns a visible, fully opaque, confidently parsed USD candidate.
func raw(text, amount string, opts ...func(*pricecap.RawCandidate)) pricecap.RawCandidate {
	r := pricecap.RawCandidate{
		Text:            text,
		Money:           pricecap.Money{Amount: decimal.RequireFromString(amount), Currency: "USD", RawText: text},
		MoneyConfidence: 100,
		Path:            "div.row > span#" + text,
		Opacity:         1,
		Visible:         true,
		InViewport:      true,
		PriceCount:      1,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func labeled(labels ...string) func(*pricecap.RawCandidate) {
	return func(r *pricecap.RawCandidate) {
		r.NearbyLabels = labels
		for _, l := range labels {
			r.NearbyText += l + " "
		}
	}
}

func inSummary(r *pricecap.RawCandidate) { r.InSummaryContainer = true }

func bold(r *pricecap.RawCandidate) { r.FontWeight = 700 }

func fontSize(px float64) func(*pricecap.RawCandidate) {
	return func(r *pricecap.RawCandidate) { r.FontSizePx = px }
}

// scored builds a candidate with a fixed score, bypassing the scorer.
func scored(score int, amount string, label pricecap.PriceLabel, flags pricecap.CandidateFlags) pricecap.Candidate {
	return pricecap.Candidate{
		RawCandidate: raw(amount, amount),
		Score:        score,
		Label:        label,
		Flags:        flags,
	}
}
