package pricecap

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Capture is a recorded extraction attempt. Captures that carry a human
// correction form the labeled corpus used to recalibrate scoring constants.
type Capture struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	PageHash   string     `json:"pageHash"`
	PageType   PageType   `json:"pageType"`
	OK         bool       `json:"ok"`
	Amount     string     `json:"amount,omitempty"`
	Currency   string     `json:"currency,omitempty"`
	Confidence Confidence `json:"confidence"`
	Evidence   Evidence   `json:"evidence"`

	// Corrected* are set once a human confirms the real total.
	CorrectedAmount   string     `json:"correctedAmount,omitempty"`
	CorrectedCurrency string     `json:"correctedCurrency,omitempty"`
	CorrectedAt       *time.Time `json:"correctedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the capture contains invalid fields.
func (c *Capture) Validate() error {
	if c.URL == "" {
		return Errorf(EINVALID, "capture URL required")
	}
	if c.OK && c.Amount == "" {
		return Errorf(EINVALID, "successful capture requires an amount")
	}
	if c.Amount != "" {
		if _, err := decimal.NewFromString(c.Amount); err != nil {
			return Errorf(EINVALID, "capture amount %q is not a number", c.Amount)
		}
	}
	return nil
}

// IsLabeled reports whether a human correction has been recorded.
func (c *Capture) IsLabeled() bool {
	return c.CorrectedAt != nil
}

// NewCapture builds an unsaved Capture from an extraction result.
func NewCapture(url, pageHash string, pageType PageType, result *ExtractionResult[PriceBreakdown]) *Capture {
	c := &Capture{
		URL:        url,
		PageHash:   pageHash,
		PageType:   pageType,
		OK:         result.OK,
		Confidence: result.Confidence,
		Evidence:   result.Evidence,
	}
	if m := result.Value.Primary(); result.OK && m != nil {
		c.Amount = m.Amount.String()
		c.Currency = m.Currency
	}
	return c
}

// CaptureService represents a service for managing captures.
type CaptureService interface {
	// CreateCapture records a new capture, assigning ID and CreatedAt.
	CreateCapture(ctx context.Context, capture *Capture) error

	// FindCaptureByID retrieves a capture by ID.
	// Returns ENOTFOUND if the capture does not exist.
	FindCaptureByID(ctx context.Context, id string) (*Capture, error)

	// FindCaptures retrieves captures matching the filter, newest first.
	FindCaptures(ctx context.Context, filter CaptureFilter) ([]*Capture, error)

	// CorrectCapture records the human-confirmed total for a capture.
	// Returns ENOTFOUND if the capture does not exist.
	CorrectCapture(ctx context.Context, id string, correction Money) (*Capture, error)

	// DeleteCapture permanently removes a capture.
	// Returns ENOTFOUND if the capture does not exist.
	DeleteCapture(ctx context.Context, id string) error
}

// CaptureFilter represents a filter for FindCaptures.
type CaptureFilter struct {
	URL     *string `json:"url"`
	OK      *bool   `json:"ok"`
	Labeled *bool   `json:"labeled"`
	Offset  int     `json:"offset"`
	Limit   int     `json:"limit"`
}

// Snapshot pairs the HTML an extraction ran on with its result.
type Snapshot struct {
	URL      string
	PageHash string
	HTML     string
	Result   *ExtractionResult[PriceBreakdown]
}

// SnapshotWriter persists snapshots for bug reports and corpus building.
type SnapshotWriter interface {
	// WriteSnapshot stores the snapshot and returns where it was written.
	WriteSnapshot(ctx context.Context, snap *Snapshot) (string, error)
}
