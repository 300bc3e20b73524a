package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/pricecap"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pricecap.CaptureService = (*CaptureService)(nil)

// CaptureService implements pricecap.CaptureService using SQLite.
type CaptureService struct {
	db *DB
}

// NewCaptureService creates a new CaptureService.
func NewCaptureService(db *DB) *CaptureService {
	return &CaptureService{db: db}
}

const captureColumns = `id, url, page_hash, page_type, ok, amount, currency, confidence, evidence,
	corrected_amount, corrected_currency, corrected_at, created_at`

// CreateCapture records a new capture.
func (s *CaptureService) CreateCapture(ctx context.Context, capture *pricecap.Capture) error {
	if err := capture.Validate(); err != nil {
		return err
	}

	evidence, err := json.Marshal(capture.Evidence)
	if err != nil {
		return fmt.Errorf("encoding evidence: %w", err)
	}

	pageType := capture.PageType
	if pageType == "" {
		pageType = pricecap.PageTypeUnknown
	}

	id := uuid.New().String()
	createdAt := now()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO captures (id, url, page_hash, page_type, ok, amount, currency, confidence, evidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, capture.URL, capture.PageHash, string(pageType), capture.OK, capture.Amount, capture.Currency,
		capture.Confidence.String(), string(evidence), formatTimestamp(createdAt))
	if err != nil {
		return err
	}

	capture.ID = id
	capture.PageType = pageType
	capture.CreatedAt = createdAt
	return nil
}

// FindCaptureByID retrieves a capture by ID.
func (s *CaptureService) FindCaptureByID(ctx context.Context, id string) (*pricecap.Capture, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+captureColumns+` FROM captures WHERE id = ?`, id)

	capture, err := scanCapture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pricecap.Errorf(pricecap.ENOTFOUND, "capture not found")
	}
	if err != nil {
		return nil, err
	}
	return capture, nil
}

// FindCaptures retrieves captures matching the filter, newest first.
func (s *CaptureService) FindCaptures(ctx context.Context, filter pricecap.CaptureFilter) ([]*pricecap.Capture, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + captureColumns + ` FROM captures WHERE 1=1`)

	appendCaptureFilter(&query, &args, filter)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	captures := []*pricecap.Capture{}
	for rows.Next() {
		capture, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		captures = append(captures, capture)
	}

	return captures, rows.Err()
}

// CorrectCapture records the human-confirmed total for a capture.
// An empty correction currency keeps the captured currency.
func (s *CaptureService) CorrectCapture(ctx context.Context, id string, correction pricecap.Money) (*pricecap.Capture, error) {
	if !correction.Amount.IsPositive() {
		return nil, pricecap.Errorf(pricecap.EINVALID, "corrected amount must be positive")
	}

	capture, err := s.FindCaptureByID(ctx, id)
	if err != nil {
		return nil, err
	}

	currency := correction.Currency
	if currency == "" {
		currency = capture.Currency
	}
	if currency == "" {
		return nil, pricecap.Errorf(pricecap.EINVALID, "corrected currency required")
	}

	correctedAt := now()
	_, err = s.db.ExecContext(ctx, `
		UPDATE captures
		SET corrected_amount = ?, corrected_currency = ?, corrected_at = ?
		WHERE id = ?
	`, correction.Amount.String(), currency, formatTimestamp(correctedAt), id)
	if err != nil {
		return nil, err
	}

	capture.CorrectedAmount = correction.Amount.String()
	capture.CorrectedCurrency = currency
	capture.CorrectedAt = &correctedAt
	return capture, nil
}

// DeleteCapture permanently removes a capture.
func (s *CaptureService) DeleteCapture(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM captures WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return pricecap.Errorf(pricecap.ENOTFOUND, "capture not found")
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCapture(row scanner) (*pricecap.Capture, error) {
	var (
		c           pricecap.Capture
		pageType    string
		confidence  string
		evidence    string
		correctedAt sql.NullString
		createdAt   string
	)

	if err := row.Scan(&c.ID, &c.URL, &c.PageHash, &pageType, &c.OK, &c.Amount, &c.Currency,
		&confidence, &evidence, &c.CorrectedAmount, &c.CorrectedCurrency, &correctedAt, &createdAt); err != nil {
		return nil, err
	}

	c.PageType = pricecap.PageType(pageType)

	var err error
	if c.Confidence, err = pricecap.ParseConfidence(confidence); err != nil {
		return nil, fmt.Errorf("failed to parse confidence: %w", err)
	}
	if err := json.Unmarshal([]byte(evidence), &c.Evidence); err != nil {
		return nil, fmt.Errorf("failed to parse evidence: %w", err)
	}
	if c.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if correctedAt.Valid {
		t, err := parseTimestamp(correctedAt.String, "corrected_at")
		if err != nil {
			return nil, err
		}
		c.CorrectedAt = &t
	}
	return &c, nil
}
