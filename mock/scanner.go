package mock

import "github.com/fwojciec/pricecap"

var _ pricecap.CandidateScanner = (*CandidateScanner)(nil)

// CandidateScanner is a mock implementation of pricecap.CandidateScanner.
type CandidateScanner struct {
	ScanFn func(html string, opts pricecap.HeuristicOptions) (*pricecap.ScanResult, error)
}

func (s *CandidateScanner) Scan(html string, opts pricecap.HeuristicOptions) (*pricecap.ScanResult, error) {
	return s.ScanFn(html, opts)
}
