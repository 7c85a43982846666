package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
)

// Querier is the subset of FinanceClient used by Provider.
type Querier interface {
	QueryDividendHistory(ctx context.Context, symbol string) (DividendHistory, error)
	QueryQuoteSummary(ctx context.Context, symbol string) (QuoteDetails, error)
	QueryLatestPrice(ctx context.Context, symbol string) (LatestPrice, error)
}

// Provider adapts Yahoo Finance to the market data needs of the dividend
// calculator. Requests are throttled by a shared limiter and quote metadata is
// cached per Yahoo symbol for a bounded time.
type Provider struct {
	client  Querier
	limiter *rate.Limiter
	quotes  *cache.Cache
	log     zerolog.Logger
}

// NewProvider creates a Provider. quoteTTL bounds how long instrument
// metadata and announced ex-dividend dates are reused.
func NewProvider(client Querier, limiter *rate.Limiter, quoteTTL time.Duration, log zerolog.Logger) *Provider {
	return &Provider{
		client:  client,
		limiter: limiter,
		quotes:  cache.New(quoteTTL, 2*quoteTTL),
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// GetMarketData returns the dividend history, the announced ex-dividend date
// and instrument metadata for a broker symbol.
// A failing dividend history lookup is an error; a failing quote summary only
// means there is no announced date.
func (p *Provider) GetMarketData(ctx context.Context, symbol string) (model.MarketData, error) {
	yahooSymbol := ToYahooSymbol(symbol)

	if err := p.wait(ctx); err != nil {
		return model.MarketData{}, err
	}
	history, err := p.client.QueryDividendHistory(ctx, yahooSymbol)
	if err != nil {
		return model.MarketData{}, fmt.Errorf("dividend history for %s (%s): %w", symbol, yahooSymbol, err)
	}

	details, err := p.quoteDetails(ctx, yahooSymbol)
	if err != nil {
		return model.MarketData{}, err
	}

	info := buildInfo(symbol, yahooSymbol, details)
	if info.Currency == "" {
		info.Currency = history.Currency
	}
	if info.FullExchangeName == "" {
		info.FullExchangeName = history.FullExchangeName
		info.IsLSE = isLSE(info.FullExchangeName)
	}
	if info.Exchange == "" {
		info.Exchange = history.ExchangeName
	}
	if info.LongName == "" {
		info.LongName = history.LongName
	}

	events := make([]model.DividendEvent, 0, len(history.Events))
	for _, e := range history.Events {
		events = append(events, model.DividendEvent{Date: e.Date, Amount: e.Amount})
	}

	dividendCurrency := history.Currency
	if dividendCurrency == "" {
		dividendCurrency = info.Currency
	}

	p.log.Debug().
		Str("symbol", symbol).
		Str("yahoo_symbol", yahooSymbol).
		Int("dividends", len(events)).
		Str("dividend_currency", dividendCurrency).
		Msg("Fetched market data")

	return model.MarketData{
		Info:             info,
		History:          events,
		AnnouncedExDate:  details.AnnouncedExDate,
		DividendCurrency: dividendCurrency,
	}, nil
}

// GetQuote returns the latest close price and instrument metadata for a broker symbol.
func (p *Provider) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	yahooSymbol := ToYahooSymbol(symbol)

	if err := p.wait(ctx); err != nil {
		return model.Quote{}, err
	}
	price, err := p.client.QueryLatestPrice(ctx, yahooSymbol)
	if err != nil {
		return model.Quote{}, fmt.Errorf("latest price for %s (%s): %w", symbol, yahooSymbol, err)
	}

	details, err := p.quoteDetails(ctx, yahooSymbol)
	if err != nil {
		return model.Quote{}, err
	}
	info := buildInfo(symbol, yahooSymbol, details)
	if info.Currency == "" {
		info.Currency = price.Currency
	}

	return model.Quote{
		Info:          info,
		LastPrice:     price.Close,
		PriceCurrency: price.Currency,
		AsOf:          price.Date,
	}, nil
}

// GetInstrumentInfo returns the cached instrument metadata for a broker symbol.
// Unlike GetMarketData it does not touch the chart endpoint.
func (p *Provider) GetInstrumentInfo(ctx context.Context, symbol string) model.InstrumentInfo {
	yahooSymbol := ToYahooSymbol(symbol)
	details, _ := p.quoteDetails(ctx, yahooSymbol)
	return buildInfo(symbol, yahooSymbol, details)
}

// quoteDetails returns cached quote details or fetches them.
// Upstream failures are logged and yield empty details; they are not cached.
// Only a context failure at the limiter is returned as an error.
func (p *Provider) quoteDetails(ctx context.Context, yahooSymbol string) (QuoteDetails, error) {
	if cached, found := p.quotes.Get(yahooSymbol); found {
		return cached.(QuoteDetails), nil
	}

	if err := p.wait(ctx); err != nil {
		return QuoteDetails{}, err
	}
	details, err := p.client.QueryQuoteSummary(ctx, yahooSymbol)
	if err != nil {
		p.log.Warn().Err(err).Str("yahoo_symbol", yahooSymbol).Msg("Quote summary unavailable, continuing without announced ex-dividend date")
		return QuoteDetails{}, nil
	}

	p.quotes.Set(yahooSymbol, details, cache.DefaultExpiration)
	return details, nil
}

// wait blocks on the rate limiter. The limiter refuses up front when the next
// token would arrive after ctx's deadline; that refusal is reported as
// context.DeadlineExceeded so callers treat it like an expired context.
func (p *Provider) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	err := p.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

func buildInfo(symbol, yahooSymbol string, details QuoteDetails) model.InstrumentInfo {
	return model.InstrumentInfo{
		Symbol:           symbol,
		YahooSymbol:      yahooSymbol,
		Currency:         details.Currency,
		Exchange:         details.Exchange,
		FullExchangeName: details.FullExchangeName,
		IsLSE:            isLSE(details.FullExchangeName),
		QuoteType:        details.QuoteType,
		LongName:         details.LongName,
	}
}

func isLSE(exchangeName string) bool {
	name := strings.ToUpper(exchangeName)
	return strings.Contains(name, "LSE") || strings.Contains(name, "LONDON")
}
