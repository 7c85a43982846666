package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/currency"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
)

// PortfolioService handles portfolio-related business logic operations.
type PortfolioService struct {
	positions      PositionSource
	quotes         QuoteSource
	maxConcurrency int
	log            zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	positions PositionSource,
	quotes QuoteSource,
	maxConcurrency int,
	log zerolog.Logger,
) *PortfolioService {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &PortfolioService{
		positions:      positions,
		quotes:         quotes,
		maxConcurrency: maxConcurrency,
		log:            log.With().Str("component", "portfolio_service").Logger(),
	}
}

// GetHoldings retrieves the current open positions from the broker.
func (s *PortfolioService) GetHoldings(ctx context.Context) ([]model.Holding, error) {
	holdings, err := s.positions.GetPortfolio(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrievePortfolio, err)
	}
	return holdings, nil
}

// GetPositions retrieves the current holdings enriched with instrument
// metadata and the latest price.
//
// Average cost and last price are converted to major units using the quote
// currency of the instrument, so a 72.5 GBp average becomes 0.725 GBP.
// A holding whose quote cannot be fetched is still returned, without price data.
func (s *PortfolioService) GetPositions(ctx context.Context) ([]model.Position, error) {
	holdings, err := s.GetHoldings(ctx)
	if err != nil {
		return nil, err
	}

	positions := make([]model.Position, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, h := range holdings {
		g.Go(func() error {
			positions[i] = s.buildPosition(gctx, h)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *PortfolioService) buildPosition(ctx context.Context, h model.Holding) model.Position {
	pos := model.Position{Holding: h}

	quote, err := s.quotes.GetQuote(ctx, h.Symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", h.Symbol).Msg("Quote unavailable, returning position without price")
		pos.QuoteCurrency = h.Currency
		pos.AvgPriceMajor = h.AvgPrice
		return pos
	}

	priceCurrency := quote.PriceCurrency
	if priceCurrency == "" {
		priceCurrency = quote.Info.Currency
	}
	code := currency.Normalize(priceCurrency)

	pos.YahooSymbol = quote.Info.YahooSymbol
	pos.LongName = quote.Info.LongName
	pos.Exchange = quote.Info.FullExchangeName
	pos.QuoteCurrency = string(currency.Major(code))
	pos.AvgPriceMajor = round(currency.ToMajorUnits(code, h.AvgPrice))
	pos.LastPrice = round(currency.ToMajorUnits(code, quote.LastPrice))
	pos.MarketValue = mulRound(h.Shares, pos.LastPrice)
	return pos
}
