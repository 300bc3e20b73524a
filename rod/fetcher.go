// Package rod provides a browser-backed implementation of pricecap.Fetcher.
//
// Pages are rendered in headless Chrome and, before the HTML is serialized,
// every element owning digit-bearing text is stamped with its computed
// visibility, font size, font weight, effective opacity, line-through and
// bounding rect (see pricecap.AttrVisible and friends). The goquery scanner
// reads those attributes in place of the inline-style approximation it uses
// for unrendered HTML.
package rod

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fwojciec/pricecap"
	"github.com/go-rod/rod/lib/proto"
)

// Fetch defaults.
const (
	// DefaultFetchTimeout bounds a single navigation, settle and serialization.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultSettleDelay gives client-side pricing widgets time to render
	// after the load event.
	DefaultSettleDelay = 500 * time.Millisecond

	DefaultViewportWidth  = 1366
	DefaultViewportHeight = 900
)

// Ensure Fetcher implements pricecap.Fetcher at compile time.
var _ pricecap.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered, annotated HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager        *BrowserManager
	managerOpts    []ManagerOption
	timeout        time.Duration
	settle         time.Duration
	viewportWidth  int
	viewportHeight int
	closed         atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-fetch timeout.
// Defaults to DefaultFetchTimeout if not specified.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithSettleDelay sets how long to wait after the load event before
// annotating. Zero disables the wait.
func WithSettleDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// WithViewport sets the emulated viewport size in CSS pixels.
func WithViewport(width, height int) Option {
	return func(f *Fetcher) {
		f.viewportWidth = width
		f.viewportHeight = height
	}
}

// WithManagerOptions passes options through to the underlying BrowserManager.
func WithManagerOptions(opts ...ManagerOption) Option {
	return func(f *Fetcher) {
		f.managerOpts = append(f.managerOpts, opts...)
	}
}

// NewFetcher creates a new Fetcher backed by a recycling BrowserManager.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:        DefaultFetchTimeout,
		settle:         DefaultSettleDelay,
		viewportWidth:  DefaultViewportWidth,
		viewportHeight: DefaultViewportHeight,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager(f.managerOpts...)
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL, waits for the page to settle, stamps the
// rendering annotations and returns the serialized HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", pricecap.Errorf(pricecap.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.Page(ctx)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             f.viewportWidth,
		Height:            f.viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return "", fmt.Errorf("setting viewport: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	if f.settle > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.settle):
		}
	}

	if _, err := page.Eval(annotateScript, annotationNames()); err != nil {
		return "", fmt.Errorf("annotating page: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
