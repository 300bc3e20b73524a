package heuristic

import (
	"regexp"
	"strconv"

	"github.com/fwojciec/pricecap"
)

var (
	nightsRe = regexp.MustCompile(`(?i)\b(\d{1,3})\s+nights?\b`)
	guestsRe = regexp.MustCompile(`(?i)\b(\d{1,3})\s+(?:guests?|adults?|travell?ers?|people|persons?|passengers?)\b`)
)

// AssembleBreakdown builds the price breakdown around winner. all is the
// complete scored list, winner included.
func AssembleBreakdown(winner pricecap.Candidate, all []pricecap.Candidate) pricecap.PriceBreakdown {
	var b pricecap.PriceBreakdown
	m := winner.Money

	if winner.Label == pricecap.LabelPerNight {
		b.PerNight = &m
	} else {
		b.Total = &m
	}
	b.IsFromPrice = winner.IsFromPrice
	b.IsPerPerson = winner.IsPerPerson
	if winner.IsPerPerson {
		pp := m
		b.PerPerson = &pp
	}

	for i := range all {
		c := all[i]
		if sameCandidate(c, winner) || !c.Money.SameCurrency(m) {
			continue
		}
		switch {
		case c.Label == pricecap.LabelTaxesFees && b.TaxesFees == nil:
			taxes := c.Money
			b.TaxesFees = &taxes
		case c.Label == pricecap.LabelPerNight && b.PerNight == nil:
			perNight := c.Money
			b.PerNight = &perNight
		}
	}

	if b.Total != nil && b.TaxesFees != nil {
		base := b.Total.Amount.Sub(b.TaxesFees.Amount)
		if base.IsPositive() {
			b.Base = &pricecap.Money{Amount: base, Currency: b.Total.Currency}
		}
	}

	text := winner.Text + " " + winner.NearbyText
	b.Nights = firstCount(nightsRe, text)
	b.GuestCount = firstCount(guestsRe, text)
	return b
}

func sameCandidate(a, b pricecap.Candidate) bool {
	return a.Path == b.Path && a.Text == b.Text
}

func firstCount(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
