package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkCaptureService_CreateCapture measures capture inserts against a
// file-backed database, the batch-capture workload.
func BenchmarkCaptureService_CreateCapture(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewCaptureService(db)
	evidence := pricecap.Evidence{
		MatchedText: "$450.00",
		Path:        "body > div.summary > strong",
		TopCandidates: []pricecap.CandidateScore{
			{Text: "$450.00", Score: 160, Label: "total", Reasons: []string{"summary container (+25)"}, Penalties: []string{}},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		capture := &pricecap.Capture{
			URL:        fmt.Sprintf("https://example.com/checkout/%d", i),
			PageHash:   fmt.Sprintf("%016x", i),
			OK:         true,
			Amount:     "450",
			Currency:   "USD",
			Confidence: pricecap.ConfidenceHigh,
			Evidence:   evidence,
		}
		if err := svc.CreateCapture(ctx, capture); err != nil {
			b.Fatal(err)
		}
	}
}
