package mock

import "github.com/fwojciec/pricecap"

var _ pricecap.PageTypeDetector = (*PageTypeDetector)(nil)

// PageTypeDetector is a mock implementation of pricecap.PageTypeDetector.
type PageTypeDetector struct {
	DetectPageTypeFn func(html string) pricecap.PageType
}

func (d *PageTypeDetector) DetectPageType(html string) pricecap.PageType {
	return d.DetectPageTypeFn(html)
}
