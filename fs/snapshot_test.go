package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/fs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "host and path", url: "https://shop.example/checkout/cart", want: "shop.example/checkout/cart"},
		{name: "lower-cases host and drops port", url: "https://Shop.Example:8443/cart", want: "shop.example/cart"},
		{name: "root becomes index", url: "https://shop.example/", want: "shop.example/index"},
		{name: "root without trailing slash", url: "https://shop.example", want: "shop.example/index"},
		{name: "ignores query and fragment", url: "https://shop.example/cart?step=2#total", want: "shop.example/cart"},
		{name: "drops dot segments", url: "https://shop.example/a/../../b", want: "shop.example/a/b"},
		{name: "rejects relative url", url: "/cart", wantErr: true},
		{name: "rejects unparseable url", url: "http://[::1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestSnapshotWriter_WriteSnapshot(t *testing.T) {
	t.Parallel()

	total := &pricecap.Money{Amount: decimal.RequireFromString("450.00"), Currency: "USD", RawText: "$450.00"}
	result := &pricecap.ExtractionResult[pricecap.PriceBreakdown]{
		OK:         true,
		Value:      &pricecap.PriceBreakdown{Total: total},
		Confidence: pricecap.ConfidenceHigh,
		Method:     pricecap.MethodHeuristic,
		Evidence: pricecap.Evidence{
			MatchedText:   "$450.00",
			TopCandidates: []pricecap.CandidateScore{},
		},
	}

	t.Run("writes html and result under host, path and page hash", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		w := fs.NewSnapshotWriter(base)

		dir, err := w.WriteSnapshot(context.Background(), &pricecap.Snapshot{
			URL:      "https://shop.example/checkout",
			PageHash: "00ff00ff00ff00ff",
			HTML:     "<p>$450.00</p>",
			Result:   result,
		})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "shop.example", "checkout", "00ff00ff00ff00ff"), dir)

		html, err := os.ReadFile(filepath.Join(dir, fs.HTMLFile))
		require.NoError(t, err)
		assert.Equal(t, "<p>$450.00</p>", string(html))

		data, err := os.ReadFile(filepath.Join(dir, fs.EvidenceFile))
		require.NoError(t, err)
		var doc struct {
			URL      string                                              `json:"url"`
			PageHash string                                              `json:"pageHash"`
			Result   *pricecap.ExtractionResult[pricecap.PriceBreakdown] `json:"result"`
		}
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "https://shop.example/checkout", doc.URL)
		assert.Equal(t, "00ff00ff00ff00ff", doc.PageHash)
		require.NotNil(t, doc.Result)
		assert.True(t, doc.Result.OK)
		assert.Equal(t, pricecap.ConfidenceHigh, doc.Result.Confidence)
		assert.True(t, total.Amount.Equal(doc.Result.Value.Total.Amount))
		assert.Contains(t, string(data), `"confidence": "HIGH"`)
	})

	t.Run("names unhashed snapshots by time", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		w := fs.NewSnapshotWriter(base)
		w.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 5, time.UTC) }

		dir, err := w.WriteSnapshot(context.Background(), &pricecap.Snapshot{
			URL:    "https://shop.example/",
			HTML:   "<p>nothing</p>",
			Result: &pricecap.ExtractionResult[pricecap.PriceBreakdown]{},
		})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "shop.example", "index", "20260301T123000.000000005"), dir)
	})

	t.Run("overwrites an existing snapshot of the same page", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		w := fs.NewSnapshotWriter(base)
		snap := &pricecap.Snapshot{URL: "https://shop.example/cart", PageHash: "abc", HTML: "<p>first</p>", Result: result}

		_, err := w.WriteSnapshot(context.Background(), snap)
		require.NoError(t, err)
		snap.HTML = "<p>second</p>"
		dir, err := w.WriteSnapshot(context.Background(), snap)
		require.NoError(t, err)

		html, err := os.ReadFile(filepath.Join(dir, fs.HTMLFile))
		require.NoError(t, err)
		assert.Equal(t, "<p>second</p>", string(html))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2, "no temporary files should remain")
	})

	t.Run("returns error for url without host", func(t *testing.T) {
		t.Parallel()

		w := fs.NewSnapshotWriter(t.TempDir())

		_, err := w.WriteSnapshot(context.Background(), &pricecap.Snapshot{URL: "cart.html"})
		require.Error(t, err)
		assert.Equal(t, pricecap.EINVALID, pricecap.ErrorCode(err))
	})

	t.Run("returns error when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fs.NewSnapshotWriter(t.TempDir()).WriteSnapshot(ctx, &pricecap.Snapshot{URL: "https://shop.example/"})
		require.ErrorIs(t, err, context.Canceled)
	})
}
