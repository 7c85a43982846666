package testutil

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/fx"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
)

// NewTestDividendService creates a DividendService reporting in GBP whose
// clock is fixed at midday of today.
//
// Example usage:
//
//	market := testutil.NewMockMarketData().With("AAPL", testutil.NewMarketData("USD").Build())
//	svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), testutil.Date(2023, 8, 1))
func NewTestDividendService(
	t *testing.T,
	market service.MarketDataSource,
	snapshots service.SnapshotSource,
	fxSource fx.Source,
	today time.Time,
) *service.DividendService {
	t.Helper()

	return NewTestDividendServiceWithOptions(t, market, snapshots, fxSource, service.DividendOptions{
		BaseCurrency:   "GBP",
		MaxConcurrency: 4,
		Clock:          FixedClock(today),
	})
}

// NewTestDividendServiceWithOptions creates a DividendService with custom options.
// A missing Clock is not replaced, so the service uses time.Now.
func NewTestDividendServiceWithOptions(
	t *testing.T,
	market service.MarketDataSource,
	snapshots service.SnapshotSource,
	fxSource fx.Source,
	opts service.DividendOptions,
) *service.DividendService {
	t.Helper()

	return service.NewDividendService(market, snapshots, fxSource, opts, zerolog.Nop())
}

// NewTestPortfolioService creates a PortfolioService backed by mocks.
func NewTestPortfolioService(t *testing.T, positions service.PositionSource, quotes service.QuoteSource) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(positions, quotes, 4, zerolog.Nop())
}

// NewTestSnapshotService creates a SnapshotService backed by an order source.
func NewTestSnapshotService(t *testing.T, orders service.OrderSource) *service.SnapshotService {
	t.Helper()

	return service.NewSnapshotService(orders, zerolog.Nop())
}

// NewTestSystemService creates a SystemService with broker credentials configured.
func NewTestSystemService(t *testing.T) *service.SystemService {
	t.Helper()

	return service.NewSystemService("test-key")
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr returns a pointer to midnight UTC of the given day.
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// FixedClock returns a clock that always reports midday of day, so that day
// truncation never depends on the time zone of the test machine.
func FixedClock(day time.Time) func() time.Time {
	noon := day.Add(12 * time.Hour)
	return func() time.Time { return noon }
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
