package mock

import (
	"context"

	"github.com/fwojciec/pricecap"
)

var _ pricecap.CaptureService = (*CaptureService)(nil)

// CaptureService is a mock implementation of pricecap.CaptureService.
type CaptureService struct {
	CreateCaptureFn   func(ctx context.Context, capture *pricecap.Capture) error
	FindCaptureByIDFn func(ctx context.Context, id string) (*pricecap.Capture, error)
	FindCapturesFn    func(ctx context.Context, filter pricecap.CaptureFilter) ([]*pricecap.Capture, error)
	CorrectCaptureFn  func(ctx context.Context, id string, correction pricecap.Money) (*pricecap.Capture, error)
	DeleteCaptureFn   func(ctx context.Context, id string) error
}

func (s *CaptureService) CreateCapture(ctx context.Context, capture *pricecap.Capture) error {
	return s.CreateCaptureFn(ctx, capture)
}

func (s *CaptureService) FindCaptureByID(ctx context.Context, id string) (*pricecap.Capture, error) {
	return s.FindCaptureByIDFn(ctx, id)
}

func (s *CaptureService) FindCaptures(ctx context.Context, filter pricecap.CaptureFilter) ([]*pricecap.Capture, error) {
	return s.FindCapturesFn(ctx, filter)
}

func (s *CaptureService) CorrectCapture(ctx context.Context, id string, correction pricecap.Money) (*pricecap.Capture, error) {
	return s.CorrectCaptureFn(ctx, id, correction)
}

func (s *CaptureService) DeleteCapture(ctx context.Context, id string) error {
	return s.DeleteCaptureFn(ctx, id)
}

var _ pricecap.SnapshotWriter = (*SnapshotWriter)(nil)

// SnapshotWriter is a mock implementation of pricecap.SnapshotWriter.
type SnapshotWriter struct {
	WriteSnapshotFn func(ctx context.Context, snap *pricecap.Snapshot) (string, error)
}

func (w *SnapshotWriter) WriteSnapshot(ctx context.Context, snap *pricecap.Snapshot) (string, error) {
	return w.WriteSnapshotFn(ctx, snap)
}
