package heuristic

import "github.com/fwojciec/pricecap"

// maxEvidenceText is the rune limit for candidate text in evidence.
const maxEvidenceText = 100

// BuildEvidence records the audit trail for an attempt. winner may be nil
// when nothing qualified; the top candidates are still listed.
func BuildEvidence(winner *pricecap.Candidate, ranked []pricecap.Candidate, warnings []string) pricecap.Evidence {
	ev := pricecap.Evidence{
		TopCandidates: TopCandidates(ranked, pricecap.MaxTopCandidates),
		Warnings:      warnings,
	}
	if winner != nil {
		ev.MatchedText = winner.Text
		ev.Amount = winner.Money.Amount.String()
		ev.Currency = winner.Money.Currency
		ev.Path = winner.Path
		ev.NearbyLabels = winner.NearbyLabels
	}
	return ev
}

// TopCandidates returns the audit view of the first n ranked candidates.
// The result is never nil.
func TopCandidates(ranked []pricecap.Candidate, n int) []pricecap.CandidateScore {
	if n < 0 || n > len(ranked) {
		n = len(ranked)
	}
	out := make([]pricecap.CandidateScore, 0, n)
	for _, c := range ranked[:n] {
		out = append(out, pricecap.CandidateScore{
			Text:      truncate(c.Text, maxEvidenceText),
			Score:     c.Score,
			Label:     string(c.Label),
			Reasons:   nonNil(c.Reasons),
			Penalties: nonNil(c.Penalties),
		})
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
