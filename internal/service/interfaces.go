package service

import (
	"context"
	"time"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/t212"
)

// PositionSource provides the current open positions of the account.
type PositionSource interface {
	GetPortfolio(ctx context.Context) ([]model.Holding, error)
}

// SnapshotSource provides share counts per symbol as they were before cutoff.
// Symbols whose position was closed are absent from the map.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, cutoff time.Time) (map[string]float64, error)
}

// MarketDataSource provides dividend history and instrument metadata.
type MarketDataSource interface {
	GetMarketData(ctx context.Context, symbol string) (model.MarketData, error)
}

// QuoteSource provides the latest price of an instrument.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

// OrderSource provides the full order history of the account.
type OrderSource interface {
	GetOrderHistory(ctx context.Context) ([]t212.Order, error)
}
