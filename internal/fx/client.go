// Package fx fetches and resolves currency exchange rates.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
)

// Source returns a spot conversion rate from base to symbol.
type Source interface {
	GetRate(ctx context.Context, base, symbol string) (float64, error)
}

// Client fetches rates from a "latest rates" endpoint that accepts
// base and symbols query parameters and answers {"rates": {"GBP": 0.79}}.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new FX client for the given endpoint URL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("client", "fx").Logger(),
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// GetRate fetches the rate converting one unit of base into symbol.
func (c *Client) GetRate(ctx context.Context, base, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("base", base)
	params.Set("symbols", symbol)

	reqURL := c.baseURL + "?" + params.Encode()
	c.log.Debug().Str("url", reqURL).Msg("Fetching rate")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("FX request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("FX API returned status %d", resp.StatusCode)
	}

	var result latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
	}
	if result.Rates == nil {
		return 0, fmt.Errorf("%w: no rates found in response", apperrors.ErrMalformedResponse)
	}

	rate, ok := result.Rates[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s->%s", apperrors.ErrExchangeRateNotFound, base, symbol)
	}

	return rate, nil
}
