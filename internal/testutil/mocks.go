package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/t212"
)

// MockMarketData is a mock implementation of service.MarketDataSource.
// Symbols without configured data return apperrors.ErrSymbolNotFound.
type MockMarketData struct {
	mu     sync.Mutex
	Data   map[string]model.MarketData
	Errors map[string]error
	Calls  map[string]int
}

// NewMockMarketData creates an empty MockMarketData.
func NewMockMarketData() *MockMarketData {
	return &MockMarketData{
		Data:   make(map[string]model.MarketData),
		Errors: make(map[string]error),
		Calls:  make(map[string]int),
	}
}

// With registers market data for symbol.
func (m *MockMarketData) With(symbol string, data model.MarketData) *MockMarketData {
	m.Data[symbol] = data
	return m
}

// WithError makes lookups of symbol fail with err.
func (m *MockMarketData) WithError(symbol string, err error) *MockMarketData {
	m.Errors[symbol] = err
	return m
}

// GetMarketData returns the configured data or error for symbol.
func (m *MockMarketData) GetMarketData(_ context.Context, symbol string) (model.MarketData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[symbol]++

	if err, ok := m.Errors[symbol]; ok {
		return model.MarketData{}, err
	}
	data, ok := m.Data[symbol]
	if !ok {
		return model.MarketData{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return data, nil
}

// MockSnapshotSource is a mock implementation of service.SnapshotSource.
// Snapshots are keyed by cutoff date in YYYY-MM-DD form; unknown dates
// return an empty snapshot.
type MockSnapshotSource struct {
	Snapshots map[string]map[string]float64
	Err       error
	// Delay is slept before answering, to let concurrent callers pile up.
	Delay time.Duration

	calls atomic.Int32
}

// NewMockSnapshotSource creates a MockSnapshotSource without snapshots.
func NewMockSnapshotSource() *MockSnapshotSource {
	return &MockSnapshotSource{Snapshots: make(map[string]map[string]float64)}
}

// With registers the snapshot returned for cutoff.
func (m *MockSnapshotSource) With(cutoff time.Time, snapshot map[string]float64) *MockSnapshotSource {
	m.Snapshots[cutoff.Format(time.DateOnly)] = snapshot
	return m
}

// GetSnapshot returns the snapshot registered for cutoff's date.
func (m *MockSnapshotSource) GetSnapshot(ctx context.Context, cutoff time.Time) (map[string]float64, error) {
	m.calls.Add(1)
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	snap, ok := m.Snapshots[cutoff.Format(time.DateOnly)]
	if !ok {
		return map[string]float64{}, nil
	}
	return snap, nil
}

// CallCount returns how many times GetSnapshot was called.
func (m *MockSnapshotSource) CallCount() int {
	return int(m.calls.Load())
}

// MockFXSource is a mock implementation of fx.Source.
// Rates are keyed "FROM_TO"; unknown pairs return ErrExchangeRateNotFound.
type MockFXSource struct {
	mu    sync.Mutex
	Rates map[string]float64
	Err   error
	Calls []string
}

// NewMockFXSource creates a MockFXSource without rates.
func NewMockFXSource() *MockFXSource {
	return &MockFXSource{Rates: make(map[string]float64)}
}

// WithRate registers the rate for converting base into symbol.
func (m *MockFXSource) WithRate(base, symbol string, rate float64) *MockFXSource {
	m.Rates[base+"_"+symbol] = rate
	return m
}

// GetRate returns the configured rate.
func (m *MockFXSource) GetRate(_ context.Context, base, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := base + "_" + symbol
	m.Calls = append(m.Calls, key)

	if m.Err != nil {
		return 0, m.Err
	}
	rate, ok := m.Rates[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrExchangeRateNotFound, key)
	}
	return rate, nil
}

// CallCount returns how many rates were requested.
func (m *MockFXSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockPositionSource is a mock implementation of service.PositionSource.
type MockPositionSource struct {
	Holdings []model.Holding
	Err      error
}

// GetPortfolio returns the configured holdings or error.
func (m *MockPositionSource) GetPortfolio(_ context.Context) ([]model.Holding, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Holdings, nil
}

// MockQuoteSource is a mock implementation of service.QuoteSource.
type MockQuoteSource struct {
	Quotes map[string]model.Quote
	Err    error
}

// GetQuote returns the configured quote for symbol.
func (m *MockQuoteSource) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	if m.Err != nil {
		return model.Quote{}, m.Err
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		return model.Quote{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	return q, nil
}

// MockOrderSource is a mock implementation of service.OrderSource.
type MockOrderSource struct {
	Orders []t212.Order
	Err    error
	// Release, when set, holds GetOrderHistory until it is closed or the
	// call's context is done.
	Release chan struct{}

	calls atomic.Int32
}

// GetOrderHistory returns the configured orders or error.
func (m *MockOrderSource) GetOrderHistory(ctx context.Context) ([]t212.Order, error) {
	m.calls.Add(1)
	if m.Release != nil {
		select {
		case <-m.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Orders, nil
}

// CallCount returns how many times GetOrderHistory was called.
func (m *MockOrderSource) CallCount() int {
	return int(m.calls.Load())
}
