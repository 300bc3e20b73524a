package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pricecap"
)

// Ensure LoggingCaptureService implements pricecap.CaptureService.
var _ pricecap.CaptureService = (*LoggingCaptureService)(nil)

// LoggingCaptureService wraps a CaptureService, logging writes.
// Reads are delegated without logging.
type LoggingCaptureService struct {
	next   pricecap.CaptureService
	logger *slog.Logger
}

// NewLoggingCaptureService creates a new LoggingCaptureService.
func NewLoggingCaptureService(next pricecap.CaptureService, logger *slog.Logger) *LoggingCaptureService {
	return &LoggingCaptureService{next: next, logger: logger}
}

// CreateCapture delegates to the wrapped service and logs the new capture.
func (s *LoggingCaptureService) CreateCapture(ctx context.Context, capture *pricecap.Capture) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create capture",
			"id", capture.ID,
			"url", capture.URL,
			"ok", capture.OK,
			"confidence", capture.Confidence,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateCapture(ctx, capture)
}

// FindCaptureByID delegates to the wrapped service.
func (s *LoggingCaptureService) FindCaptureByID(ctx context.Context, id string) (*pricecap.Capture, error) {
	return s.next.FindCaptureByID(ctx, id)
}

// FindCaptures delegates to the wrapped service.
func (s *LoggingCaptureService) FindCaptures(ctx context.Context, filter pricecap.CaptureFilter) ([]*pricecap.Capture, error) {
	return s.next.FindCaptures(ctx, filter)
}

// CorrectCapture delegates to the wrapped service and logs the correction.
func (s *LoggingCaptureService) CorrectCapture(ctx context.Context, id string, correction pricecap.Money) (capture *pricecap.Capture, err error) {
	defer func(begin time.Time) {
		s.logger.Info("correct capture",
			"id", id,
			"amount", correction.Amount.String(),
			"currency", correction.Currency,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CorrectCapture(ctx, id, correction)
}

// DeleteCapture delegates to the wrapped service and logs the deletion.
func (s *LoggingCaptureService) DeleteCapture(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete capture",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteCapture(ctx, id)
}
