package t212

import "strings"

// AccountInfo is the response of GET /account/info.
type AccountInfo struct {
	ID           int64  `json:"id"`
	CurrencyCode string `json:"currencyCode"`
}

// Position is a single open position from GET /portfolio.
// AveragePrice and CurrentPrice are in the instrument's quote currency.
type Position struct {
	Ticker       string  `json:"ticker"` // e.g. "AAPL_US_EQ", "VODl_EQ"
	Quantity     float64 `json:"quantity"`
	AveragePrice float64 `json:"averagePrice"`
	CurrentPrice float64 `json:"currentPrice"`
	InitialFill  string  `json:"initialFillDate"`
}

// Order is a historical order from GET /history/orders.
// The fill fields are null for orders that never executed.
type Order struct {
	ID             int64    `json:"id"`
	Ticker         string   `json:"ticker"`
	Type           string   `json:"type"`   // MARKET, LIMIT, ...
	Status         string   `json:"status"` // FILLED, CANCELLED, REJECTED, ...
	DateCreated    string   `json:"dateCreated"`
	DateExecuted   string   `json:"dateExecuted"`
	FilledQuantity *float64 `json:"filledQuantity"`
	FilledValue    *float64 `json:"filledValue"`
	FillPrice      *float64 `json:"fillPrice"`
}

// OrdersPage is one page of order history. NextPagePath is absolute from the
// host, e.g. "/api/v0/equity/history/orders?cursor=123&limit=50".
type OrdersPage struct {
	Items        []Order `json:"items"`
	NextPagePath *string `json:"nextPagePath"`
}

// StatusFilled is the only order status that changes share counts.
const StatusFilled = "FILLED"

// SymbolFromTicker strips the instrument suffix from a Trading 212 ticker:
// "AAPL_US_EQ" becomes "AAPL" and "VODl_EQ" becomes "VODl".
func SymbolFromTicker(ticker string) string {
	symbol, _, _ := strings.Cut(ticker, "_")
	return symbol
}
