package testutil

import (
	"time"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/t212"
)

// MarketDataBuilder provides a fluent interface for creating test market data.
//
// Example usage:
//
//	// Quarterly USD dividends of 1.0 starting 2023-01-15
//	data := testutil.NewMarketData("USD").
//	    WithQuarterlyHistory(testutil.Date(2023, 1, 15), 3, 1.0).
//	    Build()
//
//	// Pence-quoted instrument with an announced ex-date
//	data := testutil.NewMarketData("GBp").
//	    WithDividend(testutil.Date(2023, 6, 1), 250).
//	    WithAnnouncedExDate(testutil.Date(2023, 12, 1)).
//	    Build()
type MarketDataBuilder struct {
	data model.MarketData
}

// NewMarketData creates a MarketDataBuilder whose dividends are quoted in currency.
func NewMarketData(currency string) *MarketDataBuilder {
	return &MarketDataBuilder{
		data: model.MarketData{
			Info: model.InstrumentInfo{
				Currency:  currency,
				QuoteType: "EQUITY",
			},
			DividendCurrency: currency,
		},
	}
}

// WithDividend appends a historical dividend. Dividends must be added in date order.
func (b *MarketDataBuilder) WithDividend(date time.Time, amount float64) *MarketDataBuilder {
	b.data.History = append(b.data.History, model.DividendEvent{Date: date, Amount: amount})
	return b
}

// WithQuarterlyHistory appends count dividends three calendar months apart.
func (b *MarketDataBuilder) WithQuarterlyHistory(first time.Time, count int, amount float64) *MarketDataBuilder {
	for i := 0; i < count; i++ {
		b.WithDividend(first.AddDate(0, 3*i, 0), amount)
	}
	return b
}

// WithAnnouncedExDate sets the announced ex-dividend date.
func (b *MarketDataBuilder) WithAnnouncedExDate(date time.Time) *MarketDataBuilder {
	b.data.AnnouncedExDate = &date
	return b
}

// Build returns the market data.
func (b *MarketDataBuilder) Build() model.MarketData {
	return b.data
}

// MakeHolding creates a holding with no cost basis.
func MakeHolding(symbol string, shares float64, currency string) model.Holding {
	return model.Holding{Symbol: symbol, Shares: shares, Currency: currency}
}

// MakeFilledOrder creates a filled Trading 212 order. A negative value is a sell.
//
// Example usage:
//
//	buy := testutil.MakeFilledOrder("AAPL_US_EQ", "2023-03-01T14:30:00.000Z", 10, 1500)
//	sell := testutil.MakeFilledOrder("AAPL_US_EQ", "2023-05-01T14:30:00.000Z", 4, -620)
func MakeFilledOrder(ticker, executed string, quantity, value float64) t212.Order {
	return t212.Order{
		Ticker:         ticker,
		Type:           "MARKET",
		Status:         t212.StatusFilled,
		DateCreated:    executed,
		DateExecuted:   executed,
		FilledQuantity: Float(quantity),
		FilledValue:    Float(value),
	}
}
