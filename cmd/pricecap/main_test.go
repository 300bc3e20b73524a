package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	main "github.com/fwojciec/pricecap/cmd/pricecap"
	"github.com/fwojciec/pricecap/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkoutHTML = `<!DOCTYPE html>
<html>
<head><title>Checkout</title></head>
<body>
<div class="summary">
	<div class="row"><span>Taxes &amp; fees</span><span>$50.00</span></div>
	<div class="row total"><span>Total</span><strong>$450.00</strong></div>
	<button>Book now</button>
</div>
</body>
</html>`

var savedIDRe = regexp.MustCompile(`Saved capture (\S+)`)

func TestMain_Run_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts the total from stdin", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		m.Stdin = strings.NewReader(checkoutHTML)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"extract", "-", "--page-type", "checkout"}, stdout, stderr)

		require.NoError(t, err, stderr.String())
		assert.Contains(t, stdout.String(), "Total:       $450.00")
		assert.Contains(t, stdout.String(), "Confidence:  HIGH")
		assert.Contains(t, stdout.String(), "Taxes/fees:  $50.00")
	})

	t.Run("returns ErrNoPrice for a page without prices", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		m.Stdin = strings.NewReader("<html><body><p>Sold out</p></body></html>")
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"extract", "-"}, stdout, &bytes.Buffer{})

		require.ErrorIs(t, err, main.ErrNoPrice)
		assert.Contains(t, stdout.String(), "No trustworthy price found")
	})

	t.Run("fetches URLs through the fetcher", func(t *testing.T) {
		t.Parallel()

		var fetched string
		m := newTestMain(t)
		m.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = url
				return checkoutHTML, nil
			},
		}
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"extract", "https://shop.example.com/checkout", "-t", "checkout"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Equal(t, "https://shop.example.com/checkout", fetched)
		assert.Contains(t, stdout.String(), "$450.00")
	})

	t.Run("logs the extraction when verbose", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		m.Stdin = strings.NewReader(checkoutHTML)
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"-v", "extract", "-", "--page-type", "checkout"}, &bytes.Buffer{}, stderr)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "msg=extract")
		assert.Contains(t, stderr.String(), "tier=heuristic")
		assert.Contains(t, stderr.String(), "amount=450")
	})

	t.Run("rejects an unknown page type", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		m.Stdin = strings.NewReader(checkoutHTML)

		err := m.Run(context.Background(), []string{"extract", "-", "--page-type", "landing"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
	})
}

func TestMain_Run_Config(t *testing.T) {
	t.Parallel()

	t.Run("reads flag defaults from the YAML config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("json: true\npage_type: checkout\n"), 0644))

		m := newTestMain(t)
		m.ConfigPath = path
		m.Stdin = strings.NewReader(checkoutHTML)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"extract", "-"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		var decoded struct {
			OK         bool   `json:"ok"`
			Confidence string `json:"confidence"`
		}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
		assert.True(t, decoded.OK)
		assert.Equal(t, "HIGH", decoded.Confidence)
	})

	t.Run("lets command-line flags override the config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("page-type: search\n"), 0644))

		m := newTestMain(t)
		m.ConfigPath = path
		m.Stdin = strings.NewReader(checkoutHTML)
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"extract", "-", "--page-type", "checkout"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Confidence:  HIGH")
	})

	t.Run("ignores a missing config file", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		m.ConfigPath = filepath.Join(t.TempDir(), "absent.yaml")
		m.Stdin = strings.NewReader(checkoutHTML)

		err := m.Run(context.Background(), []string{"extract", "-", "-t", "checkout"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.NoError(t, err)
	})

	t.Run("fails on a malformed config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("json: [unclosed\n"), 0644))

		m := newTestMain(t)
		m.ConfigPath = path

		err := m.Run(context.Background(), []string{"extract", "-"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
	})
}

func TestMain_Run_CaptureLifecycle(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "captures.db")
	run := func(stdin string, args ...string) (string, string, error) {
		m := newTestMain(t)
		m.DBPath = dbPath
		m.Stdin = strings.NewReader(stdin)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		err := m.Run(context.Background(), args, stdout, stderr)
		return stdout.String(), stderr.String(), err
	}

	_, stderr, err := run(checkoutHTML, "extract", "-", "--page-type", "checkout", "--save")
	require.NoError(t, err, stderr)
	match := savedIDRe.FindStringSubmatch(stderr)
	require.Len(t, match, 2, stderr)
	id := match[1]

	stdout, _, err := run("", "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, id)
	assert.Contains(t, stdout, "$450.00")

	stdout, _, err = run("", "history", "--labeled")
	require.NoError(t, err)
	assert.NotContains(t, stdout, id)

	stdout, _, err = run("", "correct", id, "475.00")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Corrected "+id+": $475.00 (extracted $450.00)")

	stdout, _, err = run("", "history", "--labeled")
	require.NoError(t, err)
	assert.Contains(t, stdout, id)
	assert.Contains(t, stdout, "(corrected: $475.00)")

	_, stderr, err = run("", "correct", "no-such-id", "10")
	require.Error(t, err)
	assert.Contains(t, stderr, "capture not found")
}
