// Package heuristic turns raw price candidates into a scored, classified
// and explained price extraction.
//
// Everything here is a pure function of its inputs: the package never
// touches the network, the clock (except for latency) or shared state.
package heuristic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fwojciec/pricecap"
	"github.com/shopspring/decimal"
)

// BaseScore is the score every candidate starts from.
const BaseScore = 50

// Scoring rules. Names are recorded verbatim in Candidate.Reasons and
// Candidate.Penalties as "<rule> (+N)" or "<rule> (-N)".
const (
	RuleSummaryContainer = "summary container"
	RuleTotalNearby      = "total keyword nearby"
	RuleTotalInText      = "total keyword in text"
	RuleAriaTotal        = "aria-label total"
	RuleTestIDTotal      = "test id total"
	RuleTestIDPrice      = "test id price"
	RuleLargeFont        = "large font"
	RuleExtraLargeFont   = "extra large font"
	RuleBold             = "bold"
	RuleAmountOver200    = "amount over 200"
	RuleAmountOver500    = "amount over 500"
	RuleCheckoutSummary  = "checkout page summary"
	RuleCheckoutButton   = "near checkout button"

	RulePerNight      = "per-night qualifier"
	RuleFrom          = "from qualifier"
	RulePerPerson     = "per-person qualifier"
	RuleTaxesNearby   = "taxes or fees nearby"
	RuleWasPrice      = "strikethrough wording"
	RuleLineThrough   = "strikethrough style"
	RuleSmallFont     = "small font"
	RuleLowOpacity    = "low opacity"
	RuleMultiplePrice = "multiple prices in element"
	RuleManyChildren  = "many child elements"
	RuleHidden        = "not visible"
	RuleWeakParse     = "low parse confidence"
)

var (
	totalKeywordRe = regexp.MustCompile(`(?i)\b(?:grand\s+total|total\s+(?:price|cost|amount|due|charge|payable)|amount\s+(?:due|payable|to\s+pay)|balance\s+due|pay\s+now|you(?:'ll|\s+will)?\s+pay|checkout\s+total|order\s+total|trip\s+total|final\s+price|total)\b`)
	totalInTextRe  = regexp.MustCompile(`(?i)\btotal\b`)
	subtotalRe     = regexp.MustCompile(`(?i)\bsub[\s-]?total\b`)
	taxesRe        = regexp.MustCompile(`(?i)\b(?:tax(?:es)?|fees?|vat|gst|surcharges?|service\s+charge)\b`)
	dueTodayRe     = regexp.MustCompile(`(?i)\b(?:due|pay(?:able)?)\s+(?:today|now)\b`)
	wasPriceRe     = regexp.MustCompile(`(?i)\b(?:was|originally|regular(?:ly)?|list\s+price|previous(?:ly)?|compare\s+at)\b|\breg\.`)

	over200 = decimal.NewFromInt(200)
	over500 = decimal.NewFromInt(500)
)

// Score applies every scoring rule to raw and assigns its label and flags.
// The result never has a negative score.
func Score(raw pricecap.RawCandidate, pageType pricecap.PageType) pricecap.Candidate {
	c := pricecap.Candidate{RawCandidate: raw}
	s := &scoring{score: BaseScore, c: &c}

	aria := strings.ToLower(raw.AriaLabel)
	testID := strings.ToLower(raw.TestID)

	f := &c.Flags
	f.IsInSummaryContainer = raw.InSummaryContainer
	f.HasTotalKeywordNearby = totalKeywordRe.MatchString(raw.NearbyText) || anyMatch(totalKeywordRe, raw.NearbyLabels)
	f.HasTotalKeywordInText = totalInTextRe.MatchString(raw.Text)
	f.HasAriaTotal = strings.Contains(aria, "total")
	f.HasTestIDTotal = strings.Contains(testID, "total")
	f.IsNearCheckoutButton = raw.NearCheckoutButton
	f.IsPerNight = raw.IsPerNight
	f.IsFromPrice = raw.IsFromPrice
	f.IsPerPerson = raw.IsPerPerson
	f.PriceCountInElement = raw.PriceCount
	f.ContainsMultiplePrices = raw.PriceCount >= 2

	if f.IsInSummaryContainer {
		s.reward(RuleSummaryContainer, 25)
	}
	if f.HasTotalKeywordNearby {
		s.reward(RuleTotalNearby, 30)
	}
	if f.HasTotalKeywordInText {
		s.reward(RuleTotalInText, 20)
	}
	if f.HasAriaTotal {
		s.reward(RuleAriaTotal, 20)
	}
	switch {
	case f.HasTestIDTotal:
		s.reward(RuleTestIDTotal, 15)
	case strings.Contains(testID, "price"):
		s.reward(RuleTestIDPrice, 15)
	}
	if raw.FontSizePx >= 18 {
		s.reward(RuleLargeFont, 10)
	}
	if raw.FontSizePx >= 24 {
		s.reward(RuleExtraLargeFont, 5)
	}
	if raw.FontWeight >= 600 {
		s.reward(RuleBold, 8)
	}
	amount := raw.Money.Amount.Abs()
	if amount.GreaterThan(over200) {
		s.reward(RuleAmountOver200, 5)
	}
	if amount.GreaterThan(over500) {
		s.reward(RuleAmountOver500, 3)
	}
	if pageType.IsCheckout() && f.IsInSummaryContainer {
		s.reward(RuleCheckoutSummary, 15)
	}
	if f.IsNearCheckoutButton {
		s.reward(RuleCheckoutButton, 12)
	}

	if f.IsPerNight {
		s.penalize(RulePerNight, 35)
	}
	if f.IsFromPrice {
		s.penalize(RuleFrom, 30)
	}
	if f.IsPerPerson {
		s.penalize(RulePerPerson, 25)
	}
	surrounding := raw.Text + " " + raw.NearbyText + " " + strings.Join(raw.NearbyLabels, " ")
	if taxesRe.MatchString(surrounding) && !totalInTextRe.MatchString(surrounding) {
		s.penalize(RuleTaxesNearby, 20)
	}
	if wasPriceRe.MatchString(raw.Text) || (len(raw.NearbyLabels) > 0 && wasPriceRe.MatchString(raw.NearbyLabels[0])) {
		s.penalize(RuleWasPrice, 40)
	}
	if raw.LineThrough {
		s.penalize(RuleLineThrough, 45)
	}
	if raw.FontSizePx > 0 && raw.FontSizePx < 12 {
		s.penalize(RuleSmallFont, 10)
	}
	if raw.Opacity < 0.7 {
		s.penalize(RuleLowOpacity, 15)
	}
	if f.ContainsMultiplePrices {
		s.penalize(RuleMultiplePrice, 20)
	}
	if raw.ChildElementCount > 5 {
		s.penalize(RuleManyChildren, 15)
	}
	if !raw.Visible {
		s.penalize(RuleHidden, 30)
	}
	if raw.MoneyConfidence < 70 {
		s.penalize(RuleWeakParse, 10)
	}

	c.Score = max(0, s.score)
	c.Label = Label(c)
	return c
}

// ScoreAll scores every candidate and returns them ordered best first.
// Ties keep document order.
func ScoreAll(raws []pricecap.RawCandidate, pageType pricecap.PageType) []pricecap.Candidate {
	scored := make([]pricecap.Candidate, len(raws))
	for i, raw := range raws {
		scored[i] = Score(raw, pageType)
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Label assigns the candidate's role. Qualifiers win; otherwise the
// candidate's own text is consulted first, then its two nearest labels, and
// the first source mentioning a role decides.
func Label(c pricecap.Candidate) pricecap.PriceLabel {
	switch {
	case c.IsPerNight:
		return pricecap.LabelPerNight
	case c.IsFromPrice:
		return pricecap.LabelFrom
	case c.IsPerPerson:
		return pricecap.LabelPerPerson
	}

	sources := []string{c.Text}
	for i, l := range c.NearbyLabels {
		if i == 2 {
			break
		}
		sources = append(sources, l)
	}
	for _, text := range sources {
		if label, ok := labelOf(text); ok {
			return label
		}
	}
	return pricecap.LabelUnknown
}

func labelOf(text string) (pricecap.PriceLabel, bool) {
	switch {
	case subtotalRe.MatchString(text):
		return pricecap.LabelSubtotal, true
	case totalKeywordRe.MatchString(text) && !dueTodayRe.MatchString(text):
		return pricecap.LabelTotal, true
	case taxesRe.MatchString(text):
		return pricecap.LabelTaxesFees, true
	case dueTodayRe.MatchString(text):
		return pricecap.LabelDueToday, true
	}
	return "", false
}

type scoring struct {
	score int
	c     *pricecap.Candidate
}

func (s *scoring) reward(rule string, n int) {
	s.score += n
	s.c.Reasons = append(s.c.Reasons, fmt.Sprintf("%s (+%d)", rule, n))
}

func (s *scoring) penalize(rule string, n int) {
	s.score -= n
	s.c.Penalties = append(s.c.Penalties, fmt.Sprintf("%s (-%d)", rule, n))
}

func anyMatch(re *regexp.Regexp, texts []string) bool {
	for _, t := range texts {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}
