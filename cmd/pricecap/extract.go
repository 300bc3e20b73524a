package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/batch"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	opts, err := c.Options()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecap.ErrorMessage(err))
		return err
	}
	if c.SnapshotDir != "" && !isURL(c.Source) {
		err := pricecap.Errorf(pricecap.EINVALID, "--snapshot-dir requires a URL source")
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecap.ErrorMessage(err))
		return err
	}

	html, err := c.load(deps)
	if err != nil {
		return err
	}

	if c.DetectsPageType() && deps.PageTypes != nil {
		opts.PageType = deps.PageTypes.DetectPageType(html)
		fmt.Fprintf(deps.Stderr, "Detected page type: %s\n", opts.PageType)
	}

	result := deps.Extractor.ExtractPrice(html, opts)
	hash := batch.PageHash(html)

	if c.Save {
		capture := pricecap.NewCapture(c.Source, hash, opts.PageType, result)
		if err := deps.Captures.CreateCapture(deps.Ctx, capture); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricecap.ErrorMessage(err))
			return fmt.Errorf("saving capture: %w", err)
		}
		fmt.Fprintf(deps.Stderr, "Saved capture %s\n", capture.ID)
	}

	if deps.Snapshots != nil {
		path, err := deps.Snapshots.WriteSnapshot(deps.Ctx, &pricecap.Snapshot{
			URL:      c.Source,
			PageHash: hash,
			HTML:     html,
			Result:   result,
		})
		if err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		fmt.Fprintf(deps.Stderr, "Snapshot written to %s\n", path)
	}

	if c.JSON {
		if err := writeJSON(deps.Stdout, result); err != nil {
			return err
		}
	} else {
		printResult(deps.Stdout, result)
	}

	if !result.OK {
		return ErrNoPrice
	}
	return nil
}

// load reads the page from stdin, a URL or a file.
func (c *ExtractCmd) load(deps *Dependencies) (string, error) {
	switch {
	case c.Source == "-":
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case isURL(c.Source):
		html, err := deps.Fetcher.Fetch(deps.Ctx, c.Source)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: failed to fetch %s: %s\n", c.Source, describe(err))
			return "", fmt.Errorf("fetch %s: %w", c.Source, err)
		}
		return html, nil
	default:
		data, err := os.ReadFile(c.Source)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", c.Source, err)
		}
		return string(data), nil
	}
}
