package main

import (
	"fmt"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/money"
	"github.com/shopspring/decimal"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := pricecap.CaptureFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.URL = &c.URL
	}
	switch {
	case c.Failed:
		filter.OK = ptr(false)
	case c.Succeeded:
		filter.OK = ptr(true)
	}
	switch {
	case c.Labeled:
		filter.Labeled = ptr(true)
	case c.Unlabeled:
		filter.Labeled = ptr(false)
	}

	captures, err := deps.Captures.FindCaptures(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecap.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, captures)
	}

	if len(captures) == 0 {
		fmt.Fprintln(deps.Stdout, "No captures found. Use 'pricecap extract --save' to record one.")
		return nil
	}

	for _, cp := range captures {
		line := fmt.Sprintf("%s  %s  %-6s  %-14s  %s",
			cp.ID, cp.CreatedAt.Format("2006-01-02 15:04"), cp.Confidence, captureAmount(cp.Amount, cp.Currency), cp.URL)
		if cp.IsLabeled() {
			line += fmt.Sprintf("  (corrected: %s)", captureAmount(cp.CorrectedAmount, cp.CorrectedCurrency))
		}
		fmt.Fprintln(deps.Stdout, line)
	}

	return nil
}

// captureAmount formats a stored amount for display.
func captureAmount(amount, currency string) string {
	if amount == "" {
		return "-"
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount + " " + currency
	}
	return money.Format(pricecap.Money{Amount: d, Currency: currency})
}

func ptr[T any](v T) *T {
	return &v
}
