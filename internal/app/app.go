// Package app wires the Trading 212, Yahoo Finance and FX clients into the
// services shared by the HTTP server and the CLI.
package app

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/handlers"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/config"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/fx"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/t212"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/yahoo"
)

// App holds the configured services.
type App struct {
	System    *service.SystemService
	Portfolio *service.PortfolioService
	Dividend  *service.DividendService
	Snapshot  *service.SnapshotService
}

// New builds the services from cfg. It performs no network calls.
func New(cfg *config.Config, log zerolog.Logger) *App {
	broker := t212.NewClient(cfg.T212.BaseURL, cfg.T212.APIKey, cfg.HTTPTimeout, t212.RetryPolicy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	}, log)

	limiter := rate.NewLimiter(rate.Limit(cfg.MarketData.RequestsPerSecond), cfg.MarketData.Burst)
	market := yahoo.NewProvider(
		yahoo.NewFinanceClient(cfg.MarketData.BaseURL, cfg.HTTPTimeout),
		limiter,
		cfg.MarketData.InstrumentCacheTTL,
		log,
	)

	rates := fx.NewClient(cfg.FX.URL, cfg.HTTPTimeout, log)
	snapshots := service.NewSnapshotService(broker, log)

	return &App{
		System:    service.NewSystemService(cfg.T212.APIKey),
		Portfolio: service.NewPortfolioService(broker, market, cfg.Calculation.MaxConcurrency, log),
		Dividend: service.NewDividendService(market, snapshots, rates, service.DividendOptions{
			BaseCurrency:     cfg.FX.BaseCurrency,
			MaxConcurrency:   cfg.Calculation.MaxConcurrency,
			PastLookbackDays: cfg.Calculation.PastLookbackDays,
		}, log),
		Snapshot: snapshots,
	}
}

// Forecast loads the current holdings and returns their dividend summary.
func (a *App) Forecast(ctx context.Context) (model.PortfolioSummary, error) {
	holdings, err := a.Portfolio.GetHoldings(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	return a.Dividend.Forecast(ctx, holdings)
}

// Services returns the services for the HTTP router. cache may be nil.
func (a *App) Services(cache handlers.SummaryCache) api.Services {
	return api.Services{
		System:       a.System,
		Portfolio:    a.Portfolio,
		Dividend:     a.Dividend,
		Snapshot:     a.Snapshot,
		SummaryCache: cache,
	}
}
