package t212

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/model"
)

// Client provides methods for reading account data from the Trading 212
// public equity API. Every request goes through the client's RetryPolicy.
type Client struct {
	baseURL    string
	basePath   string
	apiKey     string
	httpClient *http.Client
	retry      RetryPolicy
	log        zerolog.Logger
}

// NewClient creates a new Trading 212 client.
//
// Parameters:
//   - baseURL: API root including the version path, e.g. https://live.trading212.com/api/v0/equity
//   - apiKey: Value sent in the Authorization header
//   - timeout: Timeout applied to every individual HTTP request
//   - policy: Retry behaviour for rate-limited and failed requests
func NewClient(baseURL, apiKey string, timeout time.Duration, policy RetryPolicy, log zerolog.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	basePath := ""
	if u, err := url.Parse(baseURL); err == nil {
		basePath = u.Path
	}
	return &Client{
		baseURL:    baseURL,
		basePath:   basePath,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		retry:      policy,
		log:        log.With().Str("client", "t212").Logger(),
	}
}

// GetPortfolio returns the open positions of the account as holdings.
// Positions with a non-positive quantity are skipped and every holding carries
// the account currency.
func (c *Client) GetPortfolio(ctx context.Context) ([]model.Holding, error) {
	var account AccountInfo
	if err := c.get(ctx, "/account/info", nil, &account); err != nil {
		return nil, fmt.Errorf("account info: %w", err)
	}

	var positions []Position
	if err := c.get(ctx, "/portfolio", nil, &positions); err != nil {
		return nil, fmt.Errorf("portfolio: %w", err)
	}

	holdings := make([]model.Holding, 0, len(positions))
	for _, p := range positions {
		if p.Ticker == "" || p.Quantity <= 0 {
			continue
		}
		holdings = append(holdings, model.Holding{
			Symbol:   SymbolFromTicker(p.Ticker),
			Shares:   p.Quantity,
			AvgPrice: p.AveragePrice,
			Currency: account.CurrencyCode,
		})
	}

	c.log.Debug().Int("positions", len(positions)).Int("holdings", len(holdings)).Msg("Fetched portfolio")
	return holdings, nil
}

// GetOrderHistory returns every historical order, following nextPagePath until
// the broker reports no further page.
func (c *Client) GetOrderHistory(ctx context.Context) ([]Order, error) {
	var orders []Order

	path := "/history/orders"
	var query url.Values
	seen := make(map[string]bool)

	for pages := 1; ; pages++ {
		var page OrdersPage
		if err := c.get(ctx, path, query, &page); err != nil {
			return nil, fmt.Errorf("order history page %d: %w", pages, err)
		}
		orders = append(orders, page.Items...)

		if page.NextPagePath == nil || *page.NextPagePath == "" {
			c.log.Debug().Int("pages", pages).Int("orders", len(orders)).Msg("Fetched order history")
			return orders, nil
		}
		if seen[*page.NextPagePath] {
			return nil, fmt.Errorf("%w: order history page %q repeated", apperrors.ErrMalformedResponse, *page.NextPagePath)
		}
		seen[*page.NextPagePath] = true

		var err error
		path, query, err = c.splitPagePath(*page.NextPagePath)
		if err != nil {
			return nil, err
		}
	}
}

// splitPagePath turns an absolute nextPagePath into a path relative to the
// client's base URL plus its query parameters.
func (c *Client) splitPagePath(next string) (string, url.Values, error) {
	u, err := url.Parse(next)
	if err != nil {
		return "", nil, fmt.Errorf("%w: next page path %q", apperrors.ErrMalformedResponse, next)
	}
	path := u.Path
	if c.basePath != "" && strings.HasPrefix(path, c.basePath) {
		path = strings.TrimPrefix(path, c.basePath)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, u.Query(), nil
}

// get performs an authenticated GET and decodes the JSON body into out.
//
// Retry behaviour:
//   - 429 responses are retried, honouring Retry-After when present
//   - Network errors are retried
//   - Any other non-2xx status fails immediately
//
// Exhausted retries are reported as ErrUpstreamUnavailable, with ErrRateLimited
// when the last failure was a 429.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.apiKey == "" {
		return apperrors.ErrMissingCredentials
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var hint time.Duration
	attempt := 0

	return retry.Do(ctx, c.retry.backoff(&hint), func(ctx context.Context) error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn().Err(err).Str("path", path).Int("attempt", attempt).Msg("Request failed, retrying")
			return retry.RetryableError(fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err))
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err))
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			hint = retryAfter(resp.Header)
			c.log.Warn().Str("path", path).Int("attempt", attempt).Dur("retry_after", hint).Msg("Rate limited")
			return retry.RetryableError(fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, apperrors.ErrRateLimited))
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: t212 returned status %d", apperrors.ErrMissingCredentials, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return fmt.Errorf("%w: t212 returned status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
		}
		return nil
	})
}
