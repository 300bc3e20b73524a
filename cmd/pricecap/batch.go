package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/batch"
)

// batchLine is the JSON form of one batch outcome.
type batchLine struct {
	URL       string                                              `json:"url"`
	CaptureID string                                              `json:"captureId,omitempty"`
	Snapshot  string                                              `json:"snapshot,omitempty"`
	Error     string                                              `json:"error,omitempty"`
	Result    *pricecap.ExtractionResult[pricecap.PriceBreakdown] `json:"result,omitempty"`
}

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	opts, err := c.Options()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecap.ErrorMessage(err))
		return err
	}

	urls, err := c.readURLs(deps.Stdin)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		fmt.Fprintln(deps.Stdout, "No URLs to process.")
		return nil
	}

	runner := &batch.Runner{
		Fetcher:     deps.Fetcher,
		Extractor:   deps.Extractor,
		Snapshots:   deps.Snapshots,
		RateLimiter: batch.NewDomainLimiter(c.RPS),
		Options:     opts,
		Concurrency: c.Concurrency,
		RetryDelays: c.RetryDelays,
	}
	if c.Save {
		runner.Captures = deps.Captures
	}
	if c.DetectsPageType() {
		runner.PageTypes = deps.PageTypes
	}
	if deps.Logger != nil {
		runner.OnRetry = func(url string, attempt int, err error) {
			deps.Logger.Warn("retrying fetch", "url", url, "attempt", attempt, "err", err)
		}
	}

	enc := json.NewEncoder(deps.Stdout)
	summary, err := runner.Run(deps.Ctx, urls, func(ev batch.ProgressEvent) {
		if ev.Outcome == nil {
			return
		}
		if c.JSON {
			_ = enc.Encode(newBatchLine(ev.Outcome))
			return
		}
		printOutcome(deps.Stdout, ev.Outcome)
	})

	fmt.Fprintf(deps.Stderr, "%d extracted, %d without price, %d failed, %d duplicates skipped\n",
		summary.Extracted, summary.NoPrice, summary.Errored, summary.Duplicates)

	if err != nil {
		return fmt.Errorf("batch interrupted: %w", err)
	}
	return nil
}

// readURLs reads one URL per line, skipping blank lines and # comments.
func (c *BatchCmd) readURLs(stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", c.File, err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URLs: %w", err)
	}
	return urls, nil
}

func newBatchLine(o *batch.Outcome) batchLine {
	line := batchLine{
		URL:       o.URL,
		CaptureID: o.CaptureID,
		Snapshot:  o.SnapshotPath,
		Result:    o.Result,
	}
	if o.Err != nil {
		line.Error = describe(o.Err)
	}
	return line
}

func printOutcome(w io.Writer, o *batch.Outcome) {
	switch {
	case o.Err != nil:
		fmt.Fprintf(w, "%-6s  %-14s  %s  (%s)\n", "ERROR", "-", o.URL, describe(o.Err))
	case o.Result == nil || !o.Result.OK:
		fmt.Fprintf(w, "%-6s  %-14s  %s\n", pricecap.ConfidenceNone, "-", o.URL)
	default:
		fmt.Fprintf(w, "%-6s  %-14s  %s\n", o.Result.Confidence, headline(o.Result), o.URL)
	}
}
