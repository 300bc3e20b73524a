package batch

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/pricecap"
	"golang.org/x/time/rate"
)

var _ pricecap.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out page fetches per shop. Hosts that differ only in
// case, port or a leading "www." share one token bucket, so a batch mixing
// "www.shop.example" and "shop.example" URLs does not fetch the shop twice
// as fast.
type DomainLimiter struct {
	limit rate.Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewDomainLimiter allows rps fetches per second to each shop with a burst
// of 1. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &DomainLimiter{limit: limit, buckets: make(map[string]*rate.Limiter)}
}

// Wait blocks until a fetch from domain is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.bucket(shopKey(domain)).Wait(ctx)
}

func (d *DomainLimiter) bucket(key string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buckets[key]
	if !ok {
		b = rate.NewLimiter(d.limit, 1)
		d.buckets[key] = b
	}
	return b
}

// shopKey reduces a host to the key its bucket is stored under.
func shopKey(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return strings.TrimPrefix(host, "www.")
}
