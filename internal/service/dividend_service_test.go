package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/testutil"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/yahoo"
)

var today = testutil.Date(2023, 8, 1)

func record(symbol string, exDate *time.Time, perShare, shares, payout float64, estimated bool) model.DividendRecord {
	return model.DividendRecord{
		Symbol:           symbol,
		ExDividendDate:   exDate,
		DividendPerShare: testutil.Float(perShare),
		Shares:           testutil.Float(shares),
		Payout:           testutil.Float(payout),
		IsEstimated:      estimated,
	}
}

// TestDividendService_CalculateDividends tests payout calculation end to end
// against mocked collaborators.
//
// WHY: This is where currency normalization, FX conversion, share resolution
// and rounding meet. Each case pins one of the rules a forecast depends on.
func TestDividendService_CalculateDividends(t *testing.T) {
	t.Run("projects quarterly USD dividend and converts to GBP", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("USD").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build())
		rates := testutil.NewMockFXSource().WithRate("USD", "GBP", 0.8)
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), rates, today)

		records, err := svc.CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("AAPL", 10, "GBP"),
		})
		require.NoError(t, err)

		want := []model.DividendRecord{
			record("AAPL", testutil.DatePtr(2023, 10, 13), 0.8, 10, 8.0, true),
		}
		if diff := cmp.Diff(want, records); diff != "" {
			t.Errorf("CalculateDividends() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("pence dividends become pounds without an FX lookup", func(t *testing.T) {
		market := testutil.NewMockMarketData().With("VODl", testutil.NewMarketData("GBp").
			WithDividend(testutil.Date(2023, 2, 1), 250).
			WithDividend(testutil.Date(2023, 6, 1), 250).
			WithAnnouncedExDate(testutil.Date(2023, 11, 23)).
			Build())
		rates := testutil.NewMockFXSource()
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), rates, today)

		records, err := svc.CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("VODl", 100, "GBP"),
		})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, 2.50, *records[0].DividendPerShare)
		assert.Equal(t, 250.00, *records[0].Payout)
		assert.True(t, records[0].IsEstimated)
		assert.Equal(t, 0, rates.CallCount())
	})

	t.Run("dividend currency comes from market data, not the account", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("SAP", testutil.NewMarketData("EUR").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 2.0).Build())
		rates := testutil.NewMockFXSource().WithRate("EUR", "GBP", 0.85)
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), rates, today)

		records, err := svc.CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("SAP", 3, "GBP"),
		})
		require.NoError(t, err)
		require.Len(t, records, 1)

		// 3 x 2.00 EUR = 6.00 EUR -> 5.10 GBP
		assert.Equal(t, 5.10, *records[0].Payout)
		assert.Equal(t, 1.70, *records[0].DividendPerShare)
	})

	t.Run("FX failure uses fallback table then 1.0", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("USD").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build()).
			With("7203", testutil.NewMarketData("JPY").WithQuarterlyHistory(testutil.Date(2023, 1, 16), 3, 30).Build())
		rates := testutil.NewMockFXSource()
		rates.Err = errors.New("connection refused")
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), rates, today)

		records, err := svc.CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("AAPL", 10, "GBP"),
			testutil.MakeHolding("7203", 2, "GBP"),
		})
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "AAPL", records[0].Symbol)
		assert.Equal(t, 7.90, *records[0].Payout)
		assert.Equal(t, "7203", records[1].Symbol)
		assert.Equal(t, 60.0, *records[1].Payout)
	})

	t.Run("FX rates are cached per run", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("USD").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build()).
			With("MSFT", testutil.NewMarketData("USD").WithQuarterlyHistory(testutil.Date(2023, 2, 15), 3, 0.68).Build())
		rates := testutil.NewMockFXSource().WithRate("USD", "GBP", 0.8)
		svc := testutil.NewTestDividendServiceWithOptions(t, market, testutil.NewMockSnapshotSource(), rates, service.DividendOptions{
			BaseCurrency:   "GBP",
			MaxConcurrency: 1,
			Clock:          testutil.FixedClock(today),
		})

		holdings := []model.Holding{testutil.MakeHolding("AAPL", 10, "GBP"), testutil.MakeHolding("MSFT", 5, "GBP")}
		_, err := svc.CalculateDividends(context.Background(), holdings)
		require.NoError(t, err)
		assert.Equal(t, 1, rates.CallCount())

		_, err = svc.CalculateDividends(context.Background(), holdings)
		require.NoError(t, err)
		assert.Equal(t, 2, rates.CallCount(), "a new run must not reuse the previous run's rates")
	})

	t.Run("holdings without usable data are skipped", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build()).
			With("BRK-B", testutil.NewMarketData("USD").Build()).
			With("ONCE", testutil.NewMarketData("GBP").WithDividend(testutil.Date(2023, 3, 1), 1.0).Build()).
			WithError("BROKEN", errors.New("yahoo error: Not Found"))
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), today)

		records, err := svc.CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("BROKEN", 1, "GBP"),
			testutil.MakeHolding("BRK-B", 1, "GBP"),
			testutil.MakeHolding("ONCE", 1, "GBP"),
			testutil.MakeHolding("AAPL", 1, "GBP"),
			testutil.MakeHolding("UNKNOWN", 1, "GBP"),
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "AAPL", records[0].Symbol)
	})

	t.Run("every record has a date and a per-share amount", func(t *testing.T) {
		market := testutil.NewMockMarketData()
		holdings := make([]model.Holding, 0, 12)
		for i := 0; i < 12; i++ {
			symbol := testutil.MakeSymbol(fmt.Sprintf("S%02d", i))
			market.With(symbol, testutil.NewMarketData("GBP").
				WithQuarterlyHistory(testutil.Date(2023, 1, 1+i), 3, float64(i+1)).
				Build())
			holdings = append(holdings, testutil.MakeHolding(symbol, 1, "GBP"))
		}
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), today)

		records, err := svc.CalculateDividends(context.Background(), holdings)
		require.NoError(t, err)
		require.Len(t, records, 12)

		for i, rec := range records {
			require.NotNil(t, rec.ExDividendDate, rec.Symbol)
			require.NotNil(t, rec.DividendPerShare, rec.Symbol)
			require.NotNil(t, rec.Payout, rec.Symbol)
			if i > 0 {
				assert.False(t, rec.ExDividendDate.Before(*records[i-1].ExDividendDate), "records must be sorted by ex-date")
			}
		}
	})

	t.Run("cancelled context aborts the run", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build())
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), today)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		market.WithError("AAPL", context.Canceled)

		_, err := svc.CalculateDividends(ctx, []model.Holding{testutil.MakeHolding("AAPL", 1, "GBP")})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rate limit past the deadline aborts instead of dropping holdings", func(t *testing.T) {
		// Two tokens cover one holding: dividend history plus quote summary.
		limiter := rate.NewLimiter(rate.Every(time.Hour), 2)
		provider := yahoo.NewProvider(testutil.NewMockYahooClient(), limiter, time.Hour, zerolog.Nop())
		rates := testutil.NewMockFXSource().WithRate("USD", "GBP", 0.8)
		svc := testutil.NewTestDividendServiceWithOptions(t, provider, testutil.NewMockSnapshotSource(), rates, service.DividendOptions{
			BaseCurrency:   "GBP",
			MaxConcurrency: 1,
			Clock:          testutil.FixedClock(today),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		records, err := svc.CalculateDividends(ctx, []model.Holding{
			testutil.MakeHolding("AAPL", 10, "GBP"),
			testutil.MakeHolding("MSFT", 10, "GBP"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, records)
	})

	t.Run("sub-cent dividend is kept at zero", func(t *testing.T) {
		market := testutil.NewMockMarketData().With("TINYl", testutil.NewMarketData("GBp").
			WithDividend(testutil.Date(2023, 2, 1), 0.4).
			WithDividend(testutil.Date(2023, 6, 1), 0.4).
			WithAnnouncedExDate(testutil.Date(2023, 11, 23)).
			Build())
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), today)

		records, err := svc.CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("TINYl", 100, "GBP"),
		})
		require.NoError(t, err)

		want := []model.DividendRecord{
			record("TINYl", testutil.DatePtr(2023, 11, 23), 0, 100, 0, true),
		}
		if diff := cmp.Diff(want, records); diff != "" {
			t.Errorf("CalculateDividends() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("non-positive dividend amounts are skipped", func(t *testing.T) {
		market := testutil.NewMockMarketData().With("ZERO", testutil.NewMarketData("GBP").
			WithDividend(testutil.Date(2023, 2, 1), 0).
			WithDividend(testutil.Date(2023, 6, 1), 0).
			WithAnnouncedExDate(testutil.Date(2023, 11, 23)).
			Build())
		svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), today)

		records, err := svc.CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("ZERO", 100, "GBP"),
		})
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

// TestDividendService_RealizedDividends tests the lookback of past dividends
// priced with historical share counts.
func TestDividendService_RealizedDividends(t *testing.T) {
	newService := func(market service.MarketDataSource, snapshots service.SnapshotSource) *service.DividendService {
		return testutil.NewTestDividendServiceWithOptions(t, market, snapshots, testutil.NewMockFXSource(), service.DividendOptions{
			BaseCurrency:     "GBP",
			MaxConcurrency:   4,
			PastLookbackDays: 30,
			Clock:            testutil.FixedClock(today),
		})
	}

	t.Run("past dividend uses the historical share count", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build())
		snapshots := testutil.NewMockSnapshotSource().
			With(testutil.Date(2023, 7, 15), map[string]float64{"AAPL": 4.555})

		records, err := newService(market, snapshots).CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("AAPL", 10, "GBP"),
		})
		require.NoError(t, err)

		want := []model.DividendRecord{
			record("AAPL", testutil.DatePtr(2023, 7, 15), 1.0, 4.56, 4.56, false),
			record("AAPL", testutil.DatePtr(2023, 10, 13), 1.0, 10, 10, true),
		}
		if diff := cmp.Diff(want, records); diff != "" {
			t.Errorf("CalculateDividends() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("past dividend with zero historical shares is dropped", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build())
		snapshots := testutil.NewMockSnapshotSource()

		records, err := newService(market, snapshots).CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("AAPL", 10, "GBP"),
		})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].IsFuture(today))
		assert.Equal(t, 1, snapshots.CallCount())
	})

	t.Run("snapshots are fetched once per ex-date", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build()).
			With("MSFT", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 0.5).Build()).
			With("KO", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 20), 3, 0.4).Build())
		snapshots := testutil.NewMockSnapshotSource().
			With(testutil.Date(2023, 7, 15), map[string]float64{"AAPL": 1, "MSFT": 2}).
			With(testutil.Date(2023, 7, 20), map[string]float64{"KO": 3})
		snapshots.Delay = 20 * time.Millisecond

		records, err := newService(market, snapshots).CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("AAPL", 1, "GBP"),
			testutil.MakeHolding("MSFT", 2, "GBP"),
			testutil.MakeHolding("KO", 3, "GBP"),
		})
		require.NoError(t, err)
		assert.Len(t, records, 6)
		assert.Equal(t, 2, snapshots.CallCount())
	})

	t.Run("snapshot failure aborts the run", func(t *testing.T) {
		market := testutil.NewMockMarketData().
			With("AAPL", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build())
		snapshots := testutil.NewMockSnapshotSource()
		snapshots.Err = fmt.Errorf("order history page 1: %w", apperrors.ErrRateLimited)

		_, err := newService(market, snapshots).CalculateDividends(context.Background(), []model.Holding{
			testutil.MakeHolding("AAPL", 10, "GBP"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
		assert.ErrorIs(t, err, apperrors.ErrRateLimited)
		assert.True(t, service.IsUpstreamError(err))
	})
}

func TestSortRecords(t *testing.T) {
	records := []model.DividendRecord{
		{Symbol: "NODATE"},
		record("LATE", testutil.DatePtr(2023, 12, 1), 1, 1, 1, true),
		record("EARLY", testutil.DatePtr(2023, 9, 1), 1, 1, 1, true),
		{Symbol: "NODATE2"},
		record("MID", testutil.DatePtr(2023, 10, 1), 1, 1, 1, false),
	}

	service.SortRecords(records)

	got := make([]string, len(records))
	for i, r := range records {
		got[i] = r.Symbol
	}
	assert.Equal(t, []string{"EARLY", "MID", "LATE", "NODATE", "NODATE2"}, got)
}

// TestDividendService_Summarize tests the portfolio summary invariants.
func TestDividendService_Summarize(t *testing.T) {
	svc := testutil.NewTestDividendService(t, testutil.NewMockMarketData(), testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), today)

	t.Run("partitions records and totals future payouts", func(t *testing.T) {
		records := []model.DividendRecord{
			record("PAST", testutil.DatePtr(2023, 7, 15), 1, 5, 5, false),
			record("TODAY", testutil.DatePtr(2023, 8, 1), 1, 1, 1, false),
			record("CONF", testutil.DatePtr(2023, 9, 10), 0.5, 10, 5.05, false),
			record("EST1", testutil.DatePtr(2023, 8, 20), 1, 1.1, 1.1, true),
			record("EST2", testutil.DatePtr(2023, 12, 1), 2, 500, 1000, true),
		}

		summary := svc.Summarize(records)

		assert.Len(t, summary.Past, 2)
		assert.Len(t, summary.Future, 3)
		assert.Len(t, summary.Confirmed, 1)
		assert.Len(t, summary.Estimated, 2)
		assert.Equal(t, len(summary.Future), len(summary.Confirmed)+len(summary.Estimated))
		assert.Equal(t, 1006.15, summary.TotalExpected)
		assert.Equal(t, "GBP", summary.Currency)
		assert.Equal(t, "£1,006.15", summary.Display)

		require.NotNil(t, summary.NextDividend)
		assert.Equal(t, "EST1", summary.NextDividend.Symbol)

		for _, p := range summary.Past {
			for _, f := range summary.Future {
				assert.NotEqual(t, p.Symbol, f.Symbol)
			}
		}
	})

	t.Run("empty set", func(t *testing.T) {
		summary := svc.Summarize(nil)

		assert.Equal(t, 0.0, summary.TotalExpected)
		assert.Nil(t, summary.NextDividend)
		assert.NotNil(t, summary.Past)
		assert.Empty(t, summary.Past)
		assert.Empty(t, summary.Future)
		assert.Empty(t, summary.Confirmed)
		assert.Empty(t, summary.Estimated)
		assert.Equal(t, "£0.00", summary.Display)
	})

	t.Run("records without date are neither past nor future", func(t *testing.T) {
		summary := svc.Summarize([]model.DividendRecord{{Symbol: "NODATE"}})
		assert.Empty(t, summary.Past)
		assert.Empty(t, summary.Future)
	})
}

func TestDividendService_Upcoming(t *testing.T) {
	market := testutil.NewMockMarketData().
		With("SOON", testutil.NewMarketData("GBP").
			WithQuarterlyHistory(testutil.Date(2023, 2, 1), 2, 1.0).
			WithAnnouncedExDate(testutil.Date(2023, 8, 10)).
			Build()).
		With("LATER", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).Build())
	svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), today)
	holdings := []model.Holding{testutil.MakeHolding("SOON", 1, "GBP"), testutil.MakeHolding("LATER", 1, "GBP")}

	t.Run("default window is 30 days", func(t *testing.T) {
		records, err := svc.Upcoming(context.Background(), holdings, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "SOON", records[0].Symbol)
	})

	t.Run("wider window includes projected dividends", func(t *testing.T) {
		records, err := svc.Upcoming(context.Background(), holdings, 90)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestDividendService_Forecast(t *testing.T) {
	market := testutil.NewMockMarketData().
		With("AAPL", testutil.NewMarketData("GBP").WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.25).Build())
	svc := testutil.NewTestDividendService(t, market, testutil.NewMockSnapshotSource(), testutil.NewMockFXSource(), today)

	summary, err := svc.Forecast(context.Background(), []model.Holding{testutil.MakeHolding("AAPL", 8, "GBP")})
	require.NoError(t, err)

	assert.Equal(t, 10.0, summary.TotalExpected)
	assert.Equal(t, "£10.00", summary.Display)
	require.NotNil(t, summary.NextDividend)
	assert.Equal(t, testutil.Date(2023, 10, 13), *summary.NextDividend.ExDividendDate)
	assert.Equal(t, testutil.Date(2023, 8, 1).Add(12*time.Hour), summary.GeneratedAt)
}
