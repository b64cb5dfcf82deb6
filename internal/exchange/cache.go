package exchange

import (
	"context"
	"strings"
	"time"

	"weather_gateway/internal/observability"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultWindow = time.Hour

	cacheKeyType = "exchange_rates"
)

// Cache serves rates from a SnapshotStore and refetches from the Provider
// once a snapshot is older than the window. Concurrent misses for the same
// base share a single provider call.
type Cache struct {
	store    SnapshotStore
	provider Provider
	window   time.Duration
	timeout  time.Duration
	now      func() time.Time
	metrics  *observability.Metrics
	group    singleflight.Group
}

type CacheOption func(*Cache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithProviderTimeout bounds each provider call independently of the caller's
// context.
func WithProviderTimeout(timeout time.Duration) CacheOption {
	return func(c *Cache) {
		c.timeout = timeout
	}
}

func WithMetrics(metrics *observability.Metrics) CacheOption {
	return func(c *Cache) {
		c.metrics = metrics
	}
}

func NewCache(store SnapshotStore, provider Provider, window time.Duration, opts ...CacheOption) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	c := &Cache{
		store:    store,
		provider: provider,
		window:   window,
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRates returns a snapshot for base that is younger than the window.
func (c *Cache) GetRates(ctx context.Context, base string) (*Snapshot, error) {
	base = strings.ToUpper(strings.TrimSpace(base))

	if snapshot := c.lookup(ctx, base); snapshot != nil {
		c.metrics.CacheHit(cacheKeyType)
		return snapshot, nil
	}
	c.metrics.CacheMiss(cacheKeyType)

	ch := c.group.DoChan(base, func() (interface{}, error) {
		// a flight that finished just before this one may have stored it
		if snapshot := c.lookup(context.Background(), base); snapshot != nil {
			return snapshot, nil
		}
		return c.refresh(base)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lookup returns the stored snapshot when it is still fresh. Store errors are
// treated as a miss.
func (c *Cache) lookup(ctx context.Context, base string) *Snapshot {
	snapshot, err := c.store.Get(ctx, base)
	if err != nil {
		logrus.WithError(err).WithField("base", base).Warn("Rate snapshot store read failed")
		return nil
	}
	if snapshot == nil || !c.fresh(snapshot) {
		return nil
	}
	return snapshot
}

func (c *Cache) fresh(snapshot *Snapshot) bool {
	return c.now().Sub(snapshot.FetchedAt) < c.window
}

func (c *Cache) refresh(base string) (*Snapshot, error) {
	// detached from any single caller so one cancelled request does not fail
	// the others waiting on this flight
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	rates, err := c.provider.Latest(ctx, base)
	if err != nil {
		logrus.WithError(err).WithField("base", base).Error("Failed to fetch exchange rates")
		return nil, ErrRateProviderUnavailable.WithCause(err)
	}

	snapshot := &Snapshot{
		BaseCurrency: base,
		Rates:        rates,
		FetchedAt:    c.now(),
	}

	if err := c.store.Put(ctx, snapshot); err != nil {
		logrus.WithError(err).WithField("base", base).Warn("Rate snapshot store write failed")
	}

	logrus.WithFields(logrus.Fields{
		"base":  base,
		"rates": len(rates),
	}).Info("Exchange rates refreshed")

	return snapshot, nil
}
