package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/pricecap"
)

// ErrNoPrice is returned when an extraction ran but found no trustworthy
// price. The result has already been printed.
var ErrNoPrice = errors.New("no trustworthy price found")

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Fetcher   pricecap.Fetcher
	Extractor pricecap.PriceExtractor
	PageTypes pricecap.PageTypeDetector
	Captures  pricecap.CaptureService
	Snapshots pricecap.SnapshotWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log fetches, extractions and storage to stderr"`

	Extract ExtractCmd `cmd:"" help:"Extract the total price from a URL, an HTML file or stdin"`
	Batch   BatchCmd   `cmd:"" help:"Extract prices for a list of URLs"`
	History HistoryCmd `cmd:"" help:"List recorded captures"`
	Correct CorrectCmd `cmd:"" help:"Record the real total for a capture"`
}

// ExtractionFlags are shared by the commands that run the extractor.
type ExtractionFlags struct {
	PageType         string        `short:"t" default:"unknown" enum:"auto,unknown,search,details,checkout,booking,availability" help:"Kind of page (${enum}); auto detects it"`
	Currency         string        `help:"Expected ISO-4217 currency code"`
	MinPrice         float64       `help:"Drop candidates below this amount"`
	MaxPrice         float64       `help:"Drop candidates above this amount"`
	Container        string        `help:"CSS selector narrowing the scan"`
	IncludeOffscreen bool          `help:"Keep candidates rendered outside the viewport"`
	Debug            bool          `help:"Report every scored candidate"`
	MaxNodes         int           `default:"2000" help:"Maximum DOM nodes to visit"`
	Render           bool          `short:"r" help:"Render pages in headless Chrome"`
	Timeout          time.Duration `default:"10s" help:"Per-page fetch timeout"`
	JSON             bool          `name:"json" help:"Print results as JSON"`
	Save             bool          `help:"Record each attempt in the capture history"`
	SnapshotDir      string        `type:"path" help:"Write page HTML and evidence under this directory"`
}

// Options converts the flags into validated extraction options.
func (f *ExtractionFlags) Options() (pricecap.HeuristicOptions, error) {
	pageType := pricecap.PageType(f.PageType)
	if f.DetectsPageType() {
		pageType = pricecap.PageTypeUnknown
	}
	opts := pricecap.HeuristicOptions{
		PageType:         pageType,
		ExpectedCurrency: strings.ToUpper(strings.TrimSpace(f.Currency)),
		Container:        f.Container,
		IncludeOffscreen: f.IncludeOffscreen,
		Debug:            f.Debug,
		MaxNodes:         f.MaxNodes,
	}
	if f.MinPrice != 0 || f.MaxPrice != 0 {
		opts.PriceRange = &pricecap.PriceRange{Min: f.MinPrice, Max: f.MaxPrice}
	}
	if err := opts.Validate(); err != nil {
		return pricecap.HeuristicOptions{}, err
	}
	return opts, nil
}

// DetectsPageType reports whether the page type is detected per page.
func (f *ExtractionFlags) DetectsPageType() bool {
	return f.PageType == "auto"
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Source string `arg:"" help:"URL, HTML file, or - for stdin"`

	ExtractionFlags `embed:""`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string  `arg:"" help:"File with one URL per line, or - for stdin"`
	Concurrency int     `short:"c" default:"4" help:"Concurrent fetch limit"`
	RPS         float64 `name:"rps" default:"1" help:"Requests per second per domain (0 disables the limit)"`

	// RetryDelays replaces the default fetch backoff when set.
	RetryDelays []time.Duration `kong:"-"`

	ExtractionFlags `embed:""`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL       string `help:"Only captures of this URL"`
	Failed    bool   `help:"Only captures without a price" xor:"outcome"`
	Succeeded bool   `help:"Only captures with a price" xor:"outcome"`
	Labeled   bool   `help:"Only corrected captures" xor:"label"`
	Unlabeled bool   `help:"Only uncorrected captures" xor:"label"`
	Limit     int    `short:"n" default:"20" help:"Maximum captures to list"`
	JSON      bool   `name:"json" help:"Print captures as JSON"`
}

// CorrectCmd is the "correct" subcommand.
type CorrectCmd struct {
	ID       string `arg:"" help:"Capture ID"`
	Amount   string `arg:"" help:"Real total, e.g. 512.40 or \"€512,40\""`
	Currency string `help:"Currency of the amount when it carries no symbol"`
}

// isURL reports whether source names an http or https resource.
func isURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
