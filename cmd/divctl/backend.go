package main

import (
	"context"
	"time"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/app"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
)

// backend is what the commands need from the wired services.
type backend interface {
	Forecast(ctx context.Context) (model.PortfolioSummary, error)
	Upcoming(ctx context.Context, days int) ([]model.DividendRecord, error)
	Positions(ctx context.Context) ([]model.Position, error)
	Snapshot(ctx context.Context, date time.Time) ([]service.SnapshotEntry, error)
	Today() time.Time
}

type appBackend struct {
	*app.App
}

func (b appBackend) Upcoming(ctx context.Context, days int) ([]model.DividendRecord, error) {
	holdings, err := b.Portfolio.GetHoldings(ctx)
	if err != nil {
		return nil, err
	}
	return b.Dividend.Upcoming(ctx, holdings, days)
}

func (b appBackend) Positions(ctx context.Context) ([]model.Position, error) {
	return b.Portfolio.GetPositions(ctx)
}

func (b appBackend) Snapshot(ctx context.Context, date time.Time) ([]service.SnapshotEntry, error) {
	return b.App.Snapshot.ListSnapshot(ctx, date)
}

func (b appBackend) Today() time.Time {
	return b.Dividend.Today()
}
