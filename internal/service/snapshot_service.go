package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/t212"
)

// orderHistoryTTL bounds how long a fetched order history is reused across
// snapshot requests. Paging through the full history is slow and rate limited.
const orderHistoryTTL = time.Minute

const ordersKey = "orders"

// SnapshotService rebuilds historical share counts by replaying the account's
// order history.
type SnapshotService struct {
	orders OrderSource
	cache  *cache.Cache
	group  singleflight.Group
	log    zerolog.Logger
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(orders OrderSource, log zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		orders: orders,
		cache:  cache.New(orderHistoryTTL, 2*orderHistoryTTL),
		log:    log.With().Str("component", "snapshot_service").Logger(),
	}
}

// GetSnapshot returns the share count per symbol held before cutoff.
//
// Every filled order executed strictly before midnight UTC of the cutoff day
// is replayed. Symbols whose resulting position is zero or negative are left
// out.
//
// Parameters:
//   - cutoff: Day of interest; only its calendar date is used
//
// Returns a map of broker symbol to share count, or an error when the order
// history cannot be fetched.
func (s *SnapshotService) GetSnapshot(ctx context.Context, cutoff time.Time) (map[string]float64, error) {
	orders, err := s.orderHistory(ctx)
	if err != nil {
		return nil, err
	}

	deadline := truncateToDay(cutoff)
	positions := make(map[string]float64)
	relevant := 0

	for _, o := range orders {
		symbol, qty, executed, ok := ParseOrder(o)
		if !ok || !executed.Before(deadline) {
			continue
		}
		positions[symbol] += qty
		relevant++
	}

	snapshot := make(map[string]float64, len(positions))
	for symbol, shares := range positions {
		if shares > 0 {
			snapshot[symbol] = shares
		}
	}

	s.log.Debug().
		Str("cutoff", deadline.Format(time.DateOnly)).
		Int("orders", len(orders)).
		Int("orders_before_cutoff", relevant).
		Int("positions", len(snapshot)).
		Msg("Built portfolio snapshot")

	return snapshot, nil
}

// ListSnapshot returns a snapshot as rows sorted by symbol, for display.
func (s *SnapshotService) ListSnapshot(ctx context.Context, cutoff time.Time) ([]SnapshotEntry, error) {
	snapshot, err := s.GetSnapshot(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	entries := make([]SnapshotEntry, 0, len(snapshot))
	for symbol, shares := range snapshot {
		entries = append(entries, SnapshotEntry{Symbol: symbol, Shares: round(shares)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })
	return entries, nil
}

// SnapshotEntry is one symbol of a historical snapshot.
type SnapshotEntry struct {
	Symbol string  `json:"symbol"`
	Shares float64 `json:"shares"`
}

// orderHistory returns the cached order history or fetches it once for all
// concurrent callers. The shared fetch is detached from the caller that
// started it, so one caller giving up does not fail the others; the broker
// client's request timeout still bounds it. Each caller stops waiting when
// its own ctx is done.
func (s *SnapshotService) orderHistory(ctx context.Context) ([]t212.Order, error) {
	if cached, found := s.cache.Get(ordersKey); found {
		return cached.([]t212.Order), nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(ordersKey, func() (any, error) {
		orders, err := s.orders.GetOrderHistory(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ordersKey, orders, cache.DefaultExpiration)
		return orders, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]t212.Order), nil
	}
}

// ParseOrder extracts the share movement of a single order.
//
// Quantity is filledQuantity, or |filledValue / fillPrice| when the quantity
// is missing. The sign follows filledValue (buys positive, sells negative),
// falling back to the sign of filledQuantity when there is no value.
//
// Returns false for orders that did not fill, have no symbol or execution
// time, or move no shares.
func ParseOrder(o t212.Order) (symbol string, signedQty float64, executed time.Time, ok bool) {
	symbol = t212.SymbolFromTicker(o.Ticker)
	if symbol == "" {
		return "", 0, time.Time{}, false
	}

	ts := o.DateExecuted
	if ts == "" {
		ts = o.DateCreated
	}
	executed, err := parseOrderTime(ts)
	if err != nil {
		return "", 0, time.Time{}, false
	}

	if o.Status != t212.StatusFilled {
		return "", 0, time.Time{}, false
	}

	var qty float64
	switch {
	case o.FilledQuantity != nil:
		qty = math.Abs(*o.FilledQuantity)
	case o.FilledValue != nil && o.FillPrice != nil && *o.FillPrice != 0:
		qty = math.Abs(*o.FilledValue / *o.FillPrice)
	default:
		return "", 0, time.Time{}, false
	}

	var sign float64
	switch {
	case o.FilledValue != nil && *o.FilledValue > 0:
		sign = 1
	case o.FilledValue != nil && *o.FilledValue < 0:
		sign = -1
	case o.FilledQuantity != nil && *o.FilledQuantity > 0:
		sign = 1
	case o.FilledQuantity != nil && *o.FilledQuantity < 0:
		sign = -1
	}

	signedQty = sign * qty
	if signedQty == 0 {
		return "", 0, time.Time{}, false
	}
	return symbol, signedQty, executed, true
}

// parseOrderTime parses an order timestamp. Timestamps without a zone are UTC.
func parseOrderTime(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05.999999999", ts, time.UTC)
}
