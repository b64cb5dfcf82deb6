package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the set of rates fetched for one base currency at one moment.
type Snapshot struct {
	BaseCurrency string                     `json:"baseCurrency"`
	Rates        map[string]decimal.Decimal `json:"rates"`
	FetchedAt    time.Time                  `json:"fetchedAt"`
}

// Provider fetches current rates for a base currency.
type Provider interface {
	Latest(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// SnapshotStore holds at most one snapshot per base currency. Get returns
// (nil, nil) when nothing is stored.
type SnapshotStore interface {
	Get(ctx context.Context, base string) (*Snapshot, error)
	Put(ctx context.Context, snapshot *Snapshot) error
}
