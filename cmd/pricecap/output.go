package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/money"
)

// maxPrintedCandidates bounds the candidate list printed for a failed extraction.
const maxPrintedCandidates = 5

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// printResult writes a human-readable view of an extraction result.
func printResult(w io.Writer, r *pricecap.ExtractionResult[pricecap.PriceBreakdown]) {
	if !r.OK || r.Value == nil {
		fmt.Fprintln(w, "No trustworthy price found")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		printWarnings(w, r.Evidence.Warnings)
		if cands := r.Evidence.TopCandidates; len(cands) > 0 {
			fmt.Fprintln(w, "Top candidates:")
			for i, c := range cands {
				if i == maxPrintedCandidates {
					break
				}
				fmt.Fprintf(w, "  %4d  %s\n", c.Score, c.Text)
			}
		}
		return
	}

	b := r.Value
	if b.Total != nil {
		fmt.Fprintf(w, "Total:       %s\n", money.Format(*b.Total))
	}
	fmt.Fprintf(w, "Confidence:  %s\n", r.Confidence)
	if b.Base != nil {
		fmt.Fprintf(w, "Base:        %s\n", money.Format(*b.Base))
	}
	if b.TaxesFees != nil {
		fmt.Fprintf(w, "Taxes/fees:  %s\n", money.Format(*b.TaxesFees))
	}
	if b.PerNight != nil {
		line := money.Format(*b.PerNight)
		if b.Nights > 0 {
			line += fmt.Sprintf(" x %d nights", b.Nights)
		}
		fmt.Fprintf(w, "Per night:   %s\n", line)
	}
	if b.PerPerson != nil {
		line := money.Format(*b.PerPerson)
		if b.GuestCount > 0 {
			line += fmt.Sprintf(" x %d guests", b.GuestCount)
		}
		fmt.Fprintf(w, "Per person:  %s\n", line)
	}
	if b.IsFromPrice {
		fmt.Fprintln(w, "Note:        starting price, the total may be higher")
	}
	if r.Evidence.MatchedText != "" {
		fmt.Fprintf(w, "Matched:     %q\n", r.Evidence.MatchedText)
	}
	if r.Evidence.Path != "" {
		fmt.Fprintf(w, "Path:        %s\n", r.Evidence.Path)
	}
	printWarnings(w, r.Evidence.Warnings)
}

func printWarnings(w io.Writer, warnings []string) {
	if len(warnings) > 0 {
		fmt.Fprintf(w, "Warnings:    %s\n", strings.Join(warnings, "; "))
	}
}

// headline formats the primary amount of a result, or "-" when there is none.
func headline(r *pricecap.ExtractionResult[pricecap.PriceBreakdown]) string {
	if r == nil || !r.OK {
		return "-"
	}
	m := r.Value.Primary()
	if m == nil {
		return "-"
	}
	return money.Format(*m)
}

// describe returns the message of an application error, or the full text
// of any other error.
func describe(err error) string {
	if pricecap.ErrorCode(err) == pricecap.EINTERNAL {
		return err.Error()
	}
	return pricecap.ErrorMessage(err)
}
