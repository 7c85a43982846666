package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Querier for testing.
// It returns predefined test data instead of making actual API calls.
type MockYahooClient struct {
	mu sync.Mutex

	// History is returned from QueryDividendHistory
	History yahoo.DividendHistory
	// HistoryError is returned from QueryDividendHistory when set
	HistoryError error
	// Details is returned from QueryQuoteSummary
	Details yahoo.QuoteDetails
	// DetailsError is returned from QueryQuoteSummary when set
	DetailsError error
	// Price is returned from QueryLatestPrice
	Price yahoo.LatestPrice
	// PriceError is returned from QueryLatestPrice when set
	PriceError error

	// Calls tracks how many times each query method was called, keyed by method name
	Calls map[string]int
	// Symbols records the Yahoo symbols that were queried, in order
	Symbols []string
}

// NewMockYahooClient creates a new mock Yahoo client with a quarterly USD
// dividend history and no announced ex-dividend date.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		History: CreateMockDividendHistory("TEST", "USD", Date(2023, 1, 15), 3, 0, 3, 1.0),
		Details: yahoo.QuoteDetails{
			Currency:         "USD",
			Exchange:         "NMS",
			FullExchangeName: "NasdaqGS",
			LongName:         "Test Fund Inc.",
			QuoteType:        "EQUITY",
		},
		Price: yahoo.LatestPrice{
			Date:     Date(2023, 8, 1),
			Close:    100.25,
			Currency: "USD",
		},
		Calls: make(map[string]int),
	}
}

func (m *MockYahooClient) record(method, symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[method]++
	m.Symbols = append(m.Symbols, symbol)
}

// CallCount returns how many times method was called.
func (m *MockYahooClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

// QueryDividendHistory returns the configured History or HistoryError.
func (m *MockYahooClient) QueryDividendHistory(_ context.Context, symbol string) (yahoo.DividendHistory, error) {
	m.record("QueryDividendHistory", symbol)
	if m.HistoryError != nil {
		return yahoo.DividendHistory{}, m.HistoryError
	}
	return m.History, nil
}

// QueryQuoteSummary returns the configured Details or DetailsError.
func (m *MockYahooClient) QueryQuoteSummary(_ context.Context, symbol string) (yahoo.QuoteDetails, error) {
	m.record("QueryQuoteSummary", symbol)
	if m.DetailsError != nil {
		return yahoo.QuoteDetails{}, m.DetailsError
	}
	return m.Details, nil
}

// QueryLatestPrice returns the configured Price or PriceError.
func (m *MockYahooClient) QueryLatestPrice(_ context.Context, symbol string) (yahoo.LatestPrice, error) {
	m.record("QueryLatestPrice", symbol)
	if m.PriceError != nil {
		return yahoo.LatestPrice{}, m.PriceError
	}
	return m.Price, nil
}

// WithHistoryError configures the mock to fail dividend history queries.
func (m *MockYahooClient) WithHistoryError(err error) *MockYahooClient {
	m.HistoryError = err
	return m
}

// WithDetailsError configures the mock to fail quote summary queries.
func (m *MockYahooClient) WithDetailsError(err error) *MockYahooClient {
	m.DetailsError = err
	return m
}

// WithAnnouncedExDate configures the announced ex-dividend date.
func (m *MockYahooClient) WithAnnouncedExDate(d time.Time) *MockYahooClient {
	m.Details.AnnouncedExDate = &d
	return m
}

// CreateMockDividendHistory creates a dividend history with count payments,
// starting at first and spaced months+days apart, each paying amount.
func CreateMockDividendHistory(symbol, currency string, first time.Time, months, days, count int, amount float64) yahoo.DividendHistory {
	events := make([]yahoo.Dividend, count)
	d := first
	for i := 0; i < count; i++ {
		events[i] = yahoo.Dividend{Date: d, Amount: amount}
		d = d.AddDate(0, months, days)
	}
	return yahoo.DividendHistory{
		Symbol:           symbol,
		Currency:         currency,
		ExchangeName:     "NMS",
		FullExchangeName: "NasdaqGS",
		LongName:         "Test Fund Inc.",
		Events:           events,
	}
}
