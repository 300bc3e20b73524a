package heuristic_test

import (
	"testing"
	"time"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/heuristic"
	"github.com/stretchr/testify/assert"
)

var (
	totalInSummary = pricecap.CandidateFlags{HasTotalKeywordNearby: true, IsInSummaryContainer: true}
	totalOnly      = pricecap.CandidateFlags{HasTotalKeywordNearby: true}
)

func runnerUp(score int) *pricecap.Candidate {
	c := scored(score, "50", pricecap.LabelUnknown, pricecap.CandidateFlags{})
	return &c
}

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("rates a summary total on a checkout page HIGH", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(85, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:     runnerUp(73),
			CandidateCount: 2,
			PageType:       pricecap.PageTypeCheckout,
		})

		assert.Equal(t, pricecap.ConfidenceHigh, cls.Confidence)
		assert.Equal(t, 3, cls.AnchorCount)
		assert.Equal(t, 12, cls.Gap)
		assert.False(t, cls.Ambiguous)
		assert.ElementsMatch(t, []string{heuristic.SignalSemanticTotal, heuristic.SignalCheckoutBtn}, cls.MissingSignals)
	})

	t.Run("rates the total-versus-taxes scenario HIGH", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(90, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:     runnerUp(55),
			CandidateCount: 2,
		})

		assert.Equal(t, pricecap.ConfidenceHigh, cls.Confidence)
	})

	t.Run("requires a twelve point gap for HIGH", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(85, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:     runnerUp(74),
			CandidateCount: 2,
			PageType:       pricecap.PageTypeCheckout,
		})

		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
	})

	t.Run("uses the best score as gap without a runner-up", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(42, "450", pricecap.LabelUnknown, pricecap.CandidateFlags{}),
			CandidateCount: 1,
		})

		assert.Equal(t, 42, cls.Gap)
		assert.Equal(t, pricecap.ConfidenceLow, cls.Confidence)
	})

	t.Run("returns NONE below forty", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(39, "450", pricecap.LabelUnknown, pricecap.CandidateFlags{}),
			CandidateCount: 1,
		})

		assert.Equal(t, pricecap.ConfidenceNone, cls.Confidence)
	})

	t.Run("caps per-night winners at MEDIUM with a total-label override", func(t *testing.T) {
		t.Parallel()

		flags := totalInSummary
		flags.IsPerNight = true

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(95, "99", pricecap.LabelPerNight, flags),
			SecondBest:     runnerUp(60),
			CandidateCount: 2,
			PageType:       pricecap.PageTypeCheckout,
		})

		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
		assert.Equal(t, pricecap.ConfidenceMedium, cls.Ceiling)
		assert.Contains(t, cls.Gates, heuristic.GateDisqualifier)
	})

	t.Run("caps per-night winners at LOW without an override", func(t *testing.T) {
		t.Parallel()

		flags := totalInSummary
		flags.IsPerNight = true

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(95, "99", pricecap.LabelPerNight, flags),
			SecondBest:     runnerUp(85),
			CandidateCount: 2,
			PageType:       pricecap.PageTypeCheckout,
		})

		assert.Equal(t, pricecap.ConfidenceLow, cls.Confidence)
	})

	t.Run("caps multi-price elements at MEDIUM", func(t *testing.T) {
		t.Parallel()

		flags := pricecap.CandidateFlags{HasTotalKeywordNearby: true, HasAriaTotal: true, ContainsMultiplePrices: true, PriceCountInElement: 2}

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(100, "50", pricecap.LabelTotal, flags),
			SecondBest:     runnerUp(50),
			CandidateCount: 2,
		})

		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
		assert.Contains(t, cls.Gates, heuristic.GateMultiPrice)
	})

	t.Run("lets a labeled multi-price summary reach HIGH", func(t *testing.T) {
		t.Parallel()

		flags := totalInSummary
		flags.ContainsMultiplePrices = true

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(100, "50", pricecap.LabelTotal, flags),
			SecondBest:     runnerUp(50),
			CandidateCount: 2,
		})

		assert.Equal(t, pricecap.ConfidenceHigh, cls.Confidence)
	})

	t.Run("flags near-tied candidates on a search page as ambiguous", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(60, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:     runnerUp(58),
			CandidateCount: 3,
			PageType:       pricecap.PageTypeSearch,
		})

		assert.True(t, cls.Ambiguous)
		assert.LessOrEqual(t, cls.Confidence, pricecap.ConfidenceMedium)
		assert.Contains(t, cls.Gates, heuristic.GateAmbiguous)
	})

	t.Run("treats six candidates within fifteen points as ambiguous", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(120, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:     runnerUp(106),
			CandidateCount: 6,
			PageType:       pricecap.PageTypeCheckout,
		})

		assert.True(t, cls.Ambiguous)
		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
	})

	t.Run("blocks HIGH on search pages without total-for wording", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(120, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:     runnerUp(50),
			CandidateCount: 2,
			PageType:       pricecap.PageTypeSearch,
		})

		assert.True(t, cls.IntentBlocked)
		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
	})

	t.Run("allows HIGH on search pages with total-for wording", func(t *testing.T) {
		t.Parallel()

		best := scored(120, "450", pricecap.LabelTotal, totalInSummary)
		best.NearbyText = "Total for 3 nights"

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           best,
			SecondBest:     runnerUp(50),
			CandidateCount: 2,
			PageType:       pricecap.PageTypeAvailability,
		})

		assert.False(t, cls.IntentBlocked)
		assert.Equal(t, pricecap.ConfidenceHigh, cls.Confidence)
	})

	t.Run("demotes HIGH on currency mismatch", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:             scored(120, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:       runnerUp(50),
			CandidateCount:   2,
			ExpectedCurrency: "EUR",
		})

		assert.True(t, cls.Mismatch)
		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
	})

	t.Run("keeps HIGH when conversion wording explains the mismatch", func(t *testing.T) {
		t.Parallel()

		best := scored(120, "450", pricecap.LabelTotal, totalInSummary)
		best.NearbyText = "Total, converted from EUR"

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:             best,
			SecondBest:       runnerUp(50),
			CandidateCount:   2,
			ExpectedCurrency: "EUR",
		})

		assert.Equal(t, pricecap.ConfidenceHigh, cls.Confidence)
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		in := heuristic.ClassifyInput{
			Best:           scored(70, "450", pricecap.LabelTotal, totalOnly),
			SecondBest:     runnerUp(60),
			CandidateCount: 4,
			PageType:       pricecap.PageTypeDetails,
		}

		assert.Equal(t, heuristic.Classify(in), heuristic.Classify(in))
		ctx := heuristic.ClassifyContext{PageType: pricecap.PageTypeDetails}
		assert.Equal(t, heuristic.Classify(in).Confidence, heuristic.DetermineConfidence(in.Best, in.CandidateCount, in.SecondBest, ctx))
	})
}

func TestClassify_Stability(t *testing.T) {
	t.Parallel()

	stable := &pricecap.StabilityInfo{StableReadCount: 2, StableDuration: 800 * time.Millisecond}
	veryStable := &pricecap.StabilityInfo{StableReadCount: 3, StableDuration: 1200 * time.Millisecond}

	t.Run("promotes LOW to MEDIUM", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(45, "450", pricecap.LabelTotal, totalOnly),
			CandidateCount: 1,
			Stability:      stable,
		})

		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
		assert.Contains(t, cls.Gates, heuristic.GateStablePromotion)
	})

	t.Run("does not promote without an anchor", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(45, "450", pricecap.LabelUnknown, pricecap.CandidateFlags{}),
			CandidateCount: 1,
			Stability:      veryStable,
		})

		assert.Equal(t, pricecap.ConfidenceLow, cls.Confidence)
	})

	t.Run("promotes MEDIUM to HIGH on a stronger run", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(70, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:     runnerUp(40),
			CandidateCount: 2,
			Stability:      veryStable,
		})

		assert.Equal(t, pricecap.ConfidenceHigh, cls.Confidence)
	})

	t.Run("moves at most one step", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(45, "450", pricecap.LabelTotal, totalInSummary),
			CandidateCount: 1,
			Stability:      veryStable,
		})

		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
	})

	t.Run("never promotes NONE", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(30, "450", pricecap.LabelTotal, totalInSummary),
			CandidateCount: 1,
			Stability:      veryStable,
		})

		assert.Equal(t, pricecap.ConfidenceNone, cls.Confidence)
	})

	t.Run("respects the qualifier ceiling", func(t *testing.T) {
		t.Parallel()

		flags := totalOnly
		flags.IsPerNight = true

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(45, "99", pricecap.LabelPerNight, flags),
			CandidateCount: 1,
			Stability:      stable,
		})

		assert.Equal(t, pricecap.ConfidenceLow, cls.Confidence)
	})

	t.Run("demotes HIGH when the price was unstable", func(t *testing.T) {
		t.Parallel()

		cls := heuristic.Classify(heuristic.ClassifyInput{
			Best:           scored(120, "450", pricecap.LabelTotal, totalInSummary),
			SecondBest:     runnerUp(50),
			CandidateCount: 2,
			Stability:      &pricecap.StabilityInfo{StableReadCount: 1, PriceWasUnstable: true},
		})

		assert.Equal(t, pricecap.ConfidenceMedium, cls.Confidence)
		assert.Contains(t, cls.Gates, heuristic.GateUnstable)
	})
}
