// Package fs provides file-based storage for extraction snapshots.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/pricecap"
)

// Snapshot file names inside a snapshot directory.
const (
	HTMLFile     = "page.html"
	EvidenceFile = "result.json"
)

// URLToPath converts a page URL to a relative directory path made of the
// host and the URL path.
// Example: https://Shop.example/checkout/cart?x=1 → shop.example/checkout/cart
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", pricecap.Errorf(pricecap.EINVALID, "url %q has no host", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return filepath.Join(host, "index"), nil
	}

	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p == "" || p == "." || p == ".." {
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return filepath.Join(host, "index"), nil
	}
	return filepath.Join(append([]string{host}, parts...)...), nil
}

// Ensure SnapshotWriter implements pricecap.SnapshotWriter at compile time.
var _ pricecap.SnapshotWriter = (*SnapshotWriter)(nil)

// SnapshotWriter writes the fetched HTML and the extraction result side by
// side under baseDir/<host>/<path>/<page hash>/.
type SnapshotWriter struct {
	baseDir string

	// Now returns the current time. Used to name snapshots without a page hash.
	Now func() time.Time
}

// NewSnapshotWriter creates a new SnapshotWriter rooted at baseDir.
func NewSnapshotWriter(baseDir string) *SnapshotWriter {
	return &SnapshotWriter{baseDir: baseDir, Now: time.Now}
}

// WriteSnapshot stores the snapshot and returns its directory. Files are
// written to temporary names and renamed into place, so a reader never
// sees a partial file.
func (w *SnapshotWriter) WriteSnapshot(ctx context.Context, snap *pricecap.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	relPath, err := URLToPath(snap.URL)
	if err != nil {
		return "", err
	}

	name := snap.PageHash
	if name == "" {
		name = w.Now().UTC().Format("20060102T150405.000000000")
	}
	dir := filepath.Join(w.baseDir, relPath, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	if err := writeAtomic(filepath.Join(dir, HTMLFile), []byte(snap.HTML)); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(snapshotDocument{URL: snap.URL, PageHash: snap.PageHash, Result: snap.Result}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, EvidenceFile), append(data, '\n')); err != nil {
		return "", err
	}

	return dir, nil
}

type snapshotDocument struct {
	URL      string                                              `json:"url"`
	PageHash string                                              `json:"pageHash,omitempty"`
	Result   *pricecap.ExtractionResult[pricecap.PriceBreakdown] `json:"result"`
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
