package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
var (
	// ErrSymbolNotFound indicates that a market data lookup returned no results for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrNoDividendData indicates that an instrument has no usable dividend history.
	ErrNoDividendData = errors.New("no dividend data")

	// ErrExchangeRateNotFound indicates that the FX source returned no rate for a currency pair.
	ErrExchangeRateNotFound = errors.New("exchange rate for currency pair not found")
)

// Validation errors for request parameters.
var (
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDays = errors.New("days must be a positive integer")
)

// Upstream errors represent failures of external collaborators.
// ErrUpstreamUnavailable aborts a whole calculation run; the others are
// wrapped into it or handled per holding.
var (
	// ErrUpstreamUnavailable indicates that a collaborator failed after all retries.
	// The whole dataset is unreliable, so the batch is aborted.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrRateLimited indicates that an API kept answering 429 after all retries.
	ErrRateLimited = errors.New("too many retries, still rate limited")

	// ErrMalformedResponse indicates that an API answered with data that could not be parsed.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrMissingCredentials indicates that a client was used without its API key.
	ErrMissingCredentials = errors.New("missing API credentials")
)

// Operation failure errors returned by the API layer.
var (
	ErrFailedToRetrieveDividends = errors.New("failed to retrieve dividends")
	ErrFailedToRetrievePortfolio = errors.New("failed to retrieve portfolio")
	ErrFailedToBuildSnapshot     = errors.New("failed to build portfolio snapshot")
	ErrNoCachedSummary           = errors.New("no cached dividend summary available")
)
