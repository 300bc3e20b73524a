package heuristic

import (
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/pricecap"
)

// Gate names recorded in Classification.Gates.
const (
	GateDisqualifier     = "disqualifying qualifier"
	GateMultiPrice       = "multiple prices"
	GateAmbiguous        = "ambiguous"
	GatePageIntent       = "page intent"
	GateCurrencyMismatch = "currency mismatch"
	GateStablePromotion  = "stability promotion"
	GateUnstable         = "unstable price"
)

// Anchor names recorded in Classification.MissingSignals.
const (
	SignalTotalLabel    = "total label"
	SignalSemanticTotal = "semantic total"
	SignalSummary       = "summary container"
	SignalCheckoutBtn   = "checkout button"
	SignalCheckoutPage  = "checkout page"
)

var (
	totalForRe   = regexp.MustCompile(`(?i)\btotal\s+(?:for|of)\s+\d+\s+(?:nights?|days?)\b|\btotal\s+\(?(?:before|including|incl\.?|with|after|excluding|excl\.?|plus)\s+(?:all\s+)?tax(?:es)?`)
	conversionRe = regexp.MustCompile(`(?i)\b(?:converted|conversion|approx(?:imately|\.)?|exchange\s+rate|estimated)\b|≈|~`)
)

// ClassifyInput is everything the classifier looks at.
type ClassifyInput struct {
	Best           pricecap.Candidate
	SecondBest     *pricecap.Candidate
	CandidateCount int

	PageType         pricecap.PageType
	ExpectedCurrency string
	Stability        *pricecap.StabilityInfo
}

// Classification is the classifier's verdict with the trace that produced it.
type Classification struct {
	Confidence pricecap.Confidence

	// Ceiling is the highest level the qualifier and multi-price gates allow.
	Ceiling pricecap.Confidence

	AnchorCount    int
	Gap            int
	Ambiguous      bool
	IntentBlocked  bool
	Mismatch       bool
	Gates          []string
	MissingSignals []string
}

// ClassifyContext is the page-level input to DetermineConfidence.
type ClassifyContext struct {
	PageType         pricecap.PageType
	ExpectedCurrency string
	Stability        *pricecap.StabilityInfo
}

// DetermineConfidence returns only the level Classify assigns to best.
// secondBest is nil when best is the only candidate.
func DetermineConfidence(best pricecap.Candidate, count int, secondBest *pricecap.Candidate, ctx ClassifyContext) pricecap.Confidence {
	return Classify(ClassifyInput{
		Best:             best,
		SecondBest:       secondBest,
		CandidateCount:   count,
		PageType:         ctx.PageType,
		ExpectedCurrency: ctx.ExpectedCurrency,
		Stability:        ctx.Stability,
	}).Confidence
}

// MissingSignals lists the anchors absent for c on a page of pageType. A nil
// c has none of the candidate anchors.
func MissingSignals(c *pricecap.Candidate, pageType pricecap.PageType) []string {
	_, missing := anchors(c, pageType)
	return missing
}

// anchors counts the confirming signals present for c and names the rest.
func anchors(c *pricecap.Candidate, pageType pricecap.PageType) (int, []string) {
	var f pricecap.CandidateFlags
	if c != nil {
		f = c.Flags
	}
	signals := []struct {
		name string
		ok   bool
	}{
		{SignalTotalLabel, f.HasTotalLabel()},
		{SignalSemanticTotal, f.HasSemanticTotal()},
		{SignalSummary, f.IsInSummaryContainer},
		{SignalCheckoutBtn, f.IsNearCheckoutButton},
		{SignalCheckoutPage, pageType.IsCheckout()},
	}
	count := 0
	missing := []string{}
	for _, s := range signals {
		if s.ok {
			count++
		} else {
			missing = append(missing, s.name)
		}
	}
	return count, missing
}

// Classify assigns a confidence level to the best candidate. The gates run in
// a fixed order: anchors, qualifier floor, multi-price cap, ambiguity, page
// intent, base thresholds, then currency and stability adjustments.
func Classify(in ClassifyInput) Classification {
	best := in.Best
	f := best.Flags
	var cls Classification

	totalLabel := f.HasTotalLabel()
	semantic := f.HasSemanticTotal()
	summary := f.IsInSummaryContainer
	checkoutPage := in.PageType.IsCheckout()

	cls.AnchorCount, cls.MissingSignals = anchors(&best, in.PageType)

	cls.Gap = best.Score
	if in.SecondBest != nil {
		cls.Gap = best.Score - in.SecondBest.Score
	}
	cls.Ambiguous = (in.CandidateCount >= 3 && cls.Gap < 10) || (in.CandidateCount >= 6 && cls.Gap < 15)

	cls.Ceiling = pricecap.ConfidenceHigh
	if f.IsDisqualified() {
		override := best.Score >= 70 && totalLabel && (summary || semantic) && cls.Gap >= 15 && !cls.Ambiguous
		if override {
			cls.Ceiling = pricecap.ConfidenceMedium
		} else {
			cls.Ceiling = pricecap.ConfidenceLow
		}
		cls.Gates = append(cls.Gates, GateDisqualifier)
	}
	if f.ContainsMultiplePrices && !(totalLabel && (summary || checkoutPage)) {
		cls.Ceiling = cls.Ceiling.Min(pricecap.ConfidenceMedium)
		cls.Gates = append(cls.Gates, GateMultiPrice)
	}
	if cls.Ambiguous {
		cls.Gates = append(cls.Gates, GateAmbiguous)
	}
	if in.PageType.IsBrowsing() && !totalForRe.MatchString(best.Text+" "+best.NearbyText+" "+strings.Join(best.NearbyLabels, " ")) {
		cls.IntentBlocked = true
		cls.Gates = append(cls.Gates, GatePageIntent)
	}

	level := baseLevel(best.Score, cls, totalLabel, semantic, summary, f.IsNearCheckoutButton, checkoutPage)
	level = level.Min(cls.Ceiling)

	if exp := in.ExpectedCurrency; exp != "" && !strings.EqualFold(exp, best.Money.Currency) &&
		!conversionRe.MatchString(best.Text+" "+best.NearbyText) {
		cls.Mismatch = true
		cls.Gates = append(cls.Gates, GateCurrencyMismatch)
		if level == pricecap.ConfidenceHigh {
			level = pricecap.ConfidenceMedium
		}
	}

	cls.Confidence = stabilityAdjust(level, in.Stability, cls)
	if cls.Confidence > level {
		cls.Gates = append(cls.Gates, GateStablePromotion)
	} else if cls.Confidence < level {
		cls.Gates = append(cls.Gates, GateUnstable)
	}
	return cls
}

func baseLevel(score int, cls Classification, totalLabel, semantic, summary, nearButton, checkoutPage bool) pricecap.Confidence {
	switch {
	case score >= 85 && !cls.Ambiguous && !cls.IntentBlocked && cls.Gap >= 12 &&
		((cls.AnchorCount >= 3 && totalLabel) || (totalLabel && (summary || semantic || checkoutPage))):
		return pricecap.ConfidenceHigh
	case score >= 65 && cls.AnchorCount >= 2 && cls.Gap >= 8 && !cls.Ambiguous,
		score >= 60 && totalLabel && (summary || semantic || nearButton),
		score >= 55 && semantic:
		return pricecap.ConfidenceMedium
	case score >= 40:
		return pricecap.ConfidenceLow
	}
	return pricecap.ConfidenceNone
}

// Stability thresholds.
const (
	promoteMediumReads    = 2
	promoteMediumDuration = 700 * time.Millisecond
	promoteHighReads      = 3
	promoteHighDuration   = 1000 * time.Millisecond
)

// stabilityAdjust moves level at most one step based on the observer's report.
func stabilityAdjust(level pricecap.Confidence, s *pricecap.StabilityInfo, cls Classification) pricecap.Confidence {
	if s == nil || level == pricecap.ConfidenceNone {
		return level
	}
	if s.PriceWasUnstable {
		if level == pricecap.ConfidenceHigh {
			return pricecap.ConfidenceMedium
		}
		return level
	}
	switch level {
	case pricecap.ConfidenceLow:
		if s.StableReadCount >= promoteMediumReads && s.StableDuration >= promoteMediumDuration &&
			cls.AnchorCount >= 1 && cls.Ceiling >= pricecap.ConfidenceMedium {
			return pricecap.ConfidenceMedium
		}
	case pricecap.ConfidenceMedium:
		if s.StableReadCount >= promoteHighReads && s.StableDuration >= promoteHighDuration &&
			cls.AnchorCount >= 2 && cls.Ceiling >= pricecap.ConfidenceHigh &&
			!cls.Ambiguous && !cls.IntentBlocked && !cls.Mismatch {
			return pricecap.ConfidenceHigh
		}
	}
	return level
}
