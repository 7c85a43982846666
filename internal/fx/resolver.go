package fx

import (
	"context"
	"errors"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/currency"
)

type pair struct {
	from, to currency.Code
}

var (
	errNoSource        = errors.New("no FX source configured")
	errNonPositiveRate = errors.New("FX source returned a non-positive rate")
)

// fallbackRates are approximate rates used when the FX source fails.
var fallbackRates = map[pair]float64{
	{currency.USD, currency.GBP}: 0.79,
	{currency.EUR, currency.GBP}: 0.86,
	{currency.GBX, currency.GBP}: 0.01,
}

// Resolver resolves exchange rates for a single calculation run.
// Successful lookups are cached per ordered currency pair for the lifetime of
// the Resolver. Rate never fails: unresolvable pairs fall back to a static
// table and finally to 1.0.
type Resolver struct {
	source Source
	cache  *cache.Cache
	log    zerolog.Logger
}

// NewResolver creates a Resolver backed by source. Create one per run.
func NewResolver(source Source, log zerolog.Logger) *Resolver {
	return &Resolver{
		source: source,
		cache:  cache.New(cache.NoExpiration, 0),
		log:    log.With().Str("component", "fx_resolver").Logger(),
	}
}

// Rate returns the rate converting one unit of from into to.
// The result is always positive.
func (r *Resolver) Rate(ctx context.Context, from, to string) float64 {
	fromCode := currency.Normalize(from)
	toCode := currency.Normalize(to)

	if fromCode == toCode {
		return 1.0
	}
	if rate, ok := currency.MinorToMajorRate(fromCode, toCode); ok {
		return rate
	}

	key := string(fromCode) + "_" + string(toCode)
	if cached, found := r.cache.Get(key); found {
		return cached.(float64)
	}

	rate, err := r.fetch(ctx, fromCode, toCode)
	if err == nil {
		r.cache.Set(key, rate, cache.NoExpiration)
		return rate
	}

	r.log.Warn().
		Err(err).
		Str("from", string(fromCode)).
		Str("to", string(toCode)).
		Msg("Error fetching FX rate")

	if fallback, ok := fallbackRates[pair{fromCode, toCode}]; ok {
		r.log.Warn().Float64("rate", fallback).Msg("Using fallback rate")
		return fallback
	}

	r.log.Warn().
		Str("from", string(fromCode)).
		Str("to", string(toCode)).
		Msg("No fallback rate available, using 1.0")
	return 1.0
}

func (r *Resolver) fetch(ctx context.Context, from, to currency.Code) (float64, error) {
	if r.source == nil {
		return 0, errNoSource
	}
	rate, err := r.source.GetRate(ctx, string(from), string(to))
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return 0, errNonPositiveRate
	}
	return rate, nil
}
