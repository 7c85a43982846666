package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
)

// ShareResolver decides which share count a dividend is paid on.
// Past ex-dates use the historical snapshot, future ones the live holding.
//
// A ShareResolver belongs to one calculation run: snapshots are fetched once
// per distinct ex-date, concurrent requests for the same date share one
// fetch, and the memo is discarded with the run.
type ShareResolver struct {
	snapshots SnapshotSource

	group singleflight.Group
	mu    sync.Mutex
	memo  map[string]map[string]float64
}

// NewShareResolver creates a ShareResolver for a single run.
func NewShareResolver(snapshots SnapshotSource) *ShareResolver {
	return &ShareResolver{
		snapshots: snapshots,
		memo:      make(map[string]map[string]float64),
	}
}

// Shares returns the share count for holding h on exDate.
//
// Parameters:
//   - h: The live holding
//   - exDate: Ex-dividend date of the dividend being priced
//   - today: Calendar day of the run
//
// Returns the live share count when exDate is after today. Otherwise the
// snapshot count as of exDate, or 0 when the symbol was not held then.
// Snapshot failures are returned as errors.
func (r *ShareResolver) Shares(ctx context.Context, h model.Holding, exDate, today time.Time) (float64, error) {
	if exDate.After(today) {
		return h.Shares, nil
	}

	snapshot, err := r.snapshot(ctx, exDate)
	if err != nil {
		return 0, fmt.Errorf("historical shares for %s on %s: %w", h.Symbol, exDate.Format(time.DateOnly), err)
	}
	return snapshot[h.Symbol], nil
}

func (r *ShareResolver) snapshot(ctx context.Context, date time.Time) (map[string]float64, error) {
	key := date.Format(time.DateOnly)

	r.mu.Lock()
	cached, ok := r.memo[key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		snap, err := r.snapshots.GetSnapshot(ctx, date)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.memo[key] = snap
		r.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]float64), nil
}
