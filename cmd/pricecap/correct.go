package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/money"
)

// Run executes the correct command.
func (c *CorrectCmd) Run(deps *Dependencies) error {
	correction, err := c.correction()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecap.ErrorMessage(err))
		return err
	}

	capture, err := deps.Captures.CorrectCapture(deps.Ctx, c.ID, correction)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecap.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Corrected %s: %s (extracted %s)\n",
		capture.ID,
		captureAmount(capture.CorrectedAmount, capture.CorrectedCurrency),
		captureAmount(capture.Amount, capture.Currency))
	return nil
}

// correction parses the amount argument. The currency is left empty when
// neither the text nor --currency names one, so the capture's own
// currency applies.
func (c *CorrectCmd) correction() (pricecap.Money, error) {
	currency := strings.ToUpper(strings.TrimSpace(c.Currency))
	res := money.Parse(c.Amount, money.Options{ExpectedCurrency: currency})
	if !res.OK() {
		return pricecap.Money{}, pricecap.Errorf(pricecap.EINVALID, "cannot parse amount %q", c.Amount)
	}

	correction := pricecap.Money{Amount: res.Money.Amount, RawText: c.Amount}
	if res.CurrencyDetected || currency != "" {
		correction.Currency = res.Money.Currency
	}
	return correction, nil
}
