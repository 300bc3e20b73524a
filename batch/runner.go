// Package batch runs price extraction over many URLs. It deduplicates the
// input, bounds concurrency, rate-limits per domain, retries failed fetches
// and optionally records each attempt as a capture and a snapshot.
package batch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/bloom"
	"golang.org/x/sync/errgroup"
)

// Defaults for a Runner with unset fields.
const (
	DefaultConcurrency = 4

	// dedupeFalsePositiveRate is the Bloom filter error rate. A false
	// positive drops a distinct URL as a duplicate.
	dedupeFalsePositiveRate = 0.0001
)

// Runner extracts prices for a list of URLs.
type Runner struct {
	Fetcher     pricecap.Fetcher
	Extractor   pricecap.PriceExtractor
	Captures    pricecap.CaptureService
	Snapshots   pricecap.SnapshotWriter
	RateLimiter pricecap.DomainLimiter
	Options     pricecap.HeuristicOptions
	Concurrency int
	RetryDelays []time.Duration
	OnRetry     RetryFunc

	// PageTypes, when set, replaces Options.PageType with the type
	// detected on each fetched page.
	PageTypes pricecap.PageTypeDetector
}

// Outcome is the result of processing a single URL.
type Outcome struct {
	Position     int
	URL          string
	PageHash     string
	PageType     pricecap.PageType
	Result       *pricecap.ExtractionResult[pricecap.PriceBreakdown]
	CaptureID    string
	SnapshotPath string

	// Err is a fetch or storage error. An extraction that ran but found no
	// trustworthy price is reported in Result, not Err.
	Err error
}

// Summary holds the outcome of a batch run in input order.
type Summary struct {
	Outcomes   []Outcome
	Duplicates int
	Extracted  int
	NoPrice    int
	Errored    int
}

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Outcome   *Outcome
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// PageHash computes the xxHash fingerprint of a page's HTML as a
// fixed-width hex string.
func PageHash(html string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(html))
}

// Dedupe trims the URLs, drops blanks and drops repeats of a URL already
// seen, comparing URLs with their fragments removed and their hosts
// lower-cased. It returns the unique URLs in input order and the number
// of duplicates dropped.
func Dedupe(urls []string) ([]string, int) {
	seen := bloom.NewFilter(uint(max(len(urls), 1)), dedupeFalsePositiveRate)
	unique := make([]string, 0, len(urls))
	var duplicates int
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if !seen.AddIfNew(u) {
			duplicates++
			continue
		}
		unique = append(unique, u)
	}
	return unique, duplicates
}

// Run processes every unique URL and returns the per-URL outcomes. It
// returns an error only when ctx is canceled; the summary then holds the
// outcomes gathered so far.
func (r *Runner) Run(ctx context.Context, urls []string, progress ProgressFunc) (*Summary, error) {
	unique, duplicates := Dedupe(urls)
	summary := &Summary{
		Outcomes:   make([]Outcome, len(unique)),
		Duplicates: duplicates,
	}
	total := len(unique)

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan Outcome, total)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range unique {
			g.Go(func() error {
				resultCh <- r.process(gctx, i, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var completed atomic.Int64
	for outcome := range resultCh {
		n := int(completed.Add(1))
		summary.Outcomes[outcome.Position] = outcome

		eventType := ProgressCompleted
		switch {
		case outcome.Err != nil:
			summary.Errored++
			eventType = ProgressFailed
		case outcome.Result != nil && outcome.Result.OK:
			summary.Extracted++
		default:
			summary.NoPrice++
		}

		if progress != nil {
			progress(ProgressEvent{
				Type:      eventType,
				Completed: n,
				Total:     total,
				Outcome:   &outcome,
			})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return summary, ctx.Err()
}

// process fetches, extracts and records a single URL.
func (r *Runner) process(ctx context.Context, position int, rawURL string) Outcome {
	outcome := Outcome{Position: position, URL: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		outcome.Err = pricecap.Errorf(pricecap.EINVALID, "invalid url %q", rawURL)
		return outcome
	}

	if r.RateLimiter != nil {
		if err := r.RateLimiter.Wait(ctx, u.Hostname()); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, rawURL, r.Fetcher.Fetch, r.OnRetry, delays)
	if err != nil {
		outcome.Err = fmt.Errorf("fetch %s: %w", rawURL, err)
		return outcome
	}

	opts := r.Options
	if r.PageTypes != nil {
		opts.PageType = r.PageTypes.DetectPageType(html)
	}

	outcome.PageHash = PageHash(html)
	outcome.PageType = opts.PageType
	outcome.Result = r.Extractor.ExtractPrice(html, opts)

	if r.Captures != nil {
		capture := pricecap.NewCapture(rawURL, outcome.PageHash, opts.PageType, outcome.Result)
		if err := r.Captures.CreateCapture(ctx, capture); err != nil {
			outcome.Err = fmt.Errorf("saving capture: %w", err)
			return outcome
		}
		outcome.CaptureID = capture.ID
	}

	if r.Snapshots != nil {
		path, err := r.Snapshots.WriteSnapshot(ctx, &pricecap.Snapshot{
			URL:      rawURL,
			PageHash: outcome.PageHash,
			HTML:     html,
			Result:   outcome.Result,
		})
		if err != nil {
			outcome.Err = fmt.Errorf("writing snapshot: %w", err)
			return outcome
		}
		outcome.SnapshotPath = path
	}

	return outcome
}
