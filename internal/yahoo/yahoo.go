package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
)

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying dividend
// history, quote metadata and recent prices.
type FinanceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewFinanceClient creates a new Yahoo Finance client.
//
// Parameters:
//   - baseURL: API root, e.g. https://query1.finance.yahoo.com
//   - timeout: Timeout applied to every request
func NewFinanceClient(baseURL string, timeout time.Duration) *FinanceClient {
	return &FinanceClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// QueryDividendHistory fetches up to ten years of dividend events for a symbol.
// The symbol must already be in Yahoo format (see ToYahooSymbol).
//
// Returns:
//   - DividendHistory: Events sorted by date ascending, empty when the instrument never paid
//   - error: If the HTTP request fails, Yahoo returns an error, or no results are found
func (c *FinanceClient) QueryDividendHistory(ctx context.Context, symbol string) (DividendHistory, error) {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=10y&events=div", c.baseURL, url.PathEscape(symbol))

	var response Response
	if err := c.queryYahoo(ctx, reqURL, &response); err != nil {
		return DividendHistory{}, err
	}
	if response.Chart.Error != nil {
		return DividendHistory{}, fmt.Errorf("yahoo error: %s", response.Chart.Error)
	}
	if len(response.Chart.Result) == 0 {
		return DividendHistory{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return ParseDividends(response)
}

// ParseDividends converts a raw chart response requested with events=div into
// a DividendHistory. Dividend dates are truncated to midnight UTC.
func ParseDividends(yahooResult Response) (DividendHistory, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return DividendHistory{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	history := DividendHistory{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
	}

	if result.Events == nil {
		return history, nil
	}

	for key, event := range result.Events.Dividends {
		ts := event.Date
		if ts == 0 {
			parsed, err := strconv.ParseInt(key, 10, 64)
			if err != nil {
				return DividendHistory{}, fmt.Errorf("%w: dividend key %q", apperrors.ErrMalformedResponse, key)
			}
			ts = parsed
		}
		if event.Amount < 0 {
			return DividendHistory{}, fmt.Errorf("%w: negative dividend %v", apperrors.ErrMalformedResponse, event.Amount)
		}
		history.Events = append(history.Events, Dividend{
			Date:   truncateToDay(time.Unix(ts, 0)),
			Amount: event.Amount,
		})
	}

	sort.Slice(history.Events, func(i, j int) bool {
		return history.Events[i].Date.Before(history.Events[j].Date)
	})

	return history, nil
}

// QueryQuoteSummary fetches instrument metadata and the announced ex-dividend date.
func (c *FinanceClient) QueryQuoteSummary(ctx context.Context, symbol string) (QuoteDetails, error) {
	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=calendarEvents,summaryDetail,price", c.baseURL, url.PathEscape(symbol))

	var response QuoteSummaryResponse
	if err := c.queryYahoo(ctx, reqURL, &response); err != nil {
		return QuoteDetails{}, err
	}
	if response.QuoteSummary.Error != nil {
		return QuoteDetails{}, fmt.Errorf("yahoo error: %s", response.QuoteSummary.Error)
	}
	if len(response.QuoteSummary.Result) == 0 {
		return QuoteDetails{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return ParseQuoteSummary(response.QuoteSummary.Result[0]), nil
}

// ParseQuoteSummary extracts QuoteDetails from a quoteSummary result.
// The calendarEvents ex-dividend date wins over the summaryDetail one.
func ParseQuoteSummary(result QuoteSummaryResult) QuoteDetails {
	var details QuoteDetails

	if result.Price != nil {
		details.Currency = result.Price.Currency
		details.Exchange = result.Price.Exchange
		details.FullExchangeName = result.Price.ExchangeName
		details.LongName = result.Price.LongName
		details.QuoteType = result.Price.QuoteType
	}
	if result.SummaryDetail != nil && details.Currency == "" {
		details.Currency = result.SummaryDetail.Currency
	}

	var exDate *RawValue
	if result.CalendarEvents != nil && result.CalendarEvents.ExDividendDate != nil {
		exDate = result.CalendarEvents.ExDividendDate
	} else if result.SummaryDetail != nil && result.SummaryDetail.ExDividendDate != nil {
		exDate = result.SummaryDetail.ExDividendDate
	}
	if exDate != nil && exDate.Raw > 0 {
		d := truncateToDay(time.Unix(int64(exDate.Raw), 0))
		details.AnnouncedExDate = &d
	}

	return details
}

// QueryLatestPrice fetches the last 5 days of daily prices and returns the most
// recent non-null close.
func (c *FinanceClient) QueryLatestPrice(ctx context.Context, symbol string) (LatestPrice, error) {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))

	var response Response
	if err := c.queryYahoo(ctx, reqURL, &response); err != nil {
		return LatestPrice{}, err
	}
	if response.Chart.Error != nil {
		return LatestPrice{}, fmt.Errorf("yahoo error: %s", response.Chart.Error)
	}
	if len(response.Chart.Result) == 0 {
		return LatestPrice{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return ParseLatestPrice(response)
}

// ParseLatestPrice returns the most recent non-null close of a chart response.
//
// The method performs validation to ensure:
//   - Timestamp data is present
//   - Close price data is present
//   - Data arrays have matching lengths
func ParseLatestPrice(yahooResult Response) (LatestPrice, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return LatestPrice{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return LatestPrice{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return LatestPrice{}, fmt.Errorf("no close prices returned")
	}
	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return LatestPrice{}, fmt.Errorf("mismatched data lengths")
	}

	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil {
			continue
		}
		return LatestPrice{
			Date:     truncateToDay(time.Unix(result.Timestamp[i], 0)),
			Close:    *closes[i],
			Currency: result.Meta.Currency,
		}, nil
	}

	return LatestPrice{}, fmt.Errorf("no close prices returned")
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API
// and decodes the JSON body into out.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
//
// Yahoo reports unknown symbols with a 404 and a JSON error body, so the body
// is decoded regardless of status; a non-JSON body with a non-200 status is an error.
func (c *FinanceClient) queryYahoo(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err)
	}

	return nil
}

// truncateToDay returns midnight UTC of t's UTC calendar day.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
