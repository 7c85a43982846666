package model

// Holding represents a single open position as reported by the broker.
// Holdings are read-only snapshots passed into a calculation run.
type Holding struct {
	Symbol   string  `json:"symbol"`   // Broker ticker (e.g. "AAPL", "VODl")
	Shares   float64 `json:"shares"`   // Current share count, never negative
	AvgPrice float64 `json:"avgPrice"` // Average cost basis in the instrument's quote currency
	Currency string  `json:"currency"` // Account currency reported by the broker
}

// Position is a Holding enriched with instrument metadata for display.
// AvgPriceMajor is the cost basis converted from minor units (e.g. pence)
// using the instrument's quote currency.
type Position struct {
	Holding
	YahooSymbol   string  `json:"yahooSymbol"`
	LongName      string  `json:"longName,omitempty"`
	Exchange      string  `json:"exchange,omitempty"`
	QuoteCurrency string  `json:"quoteCurrency"`
	AvgPriceMajor float64 `json:"avgPriceMajor"`
	LastPrice     float64 `json:"lastPrice"`   // Latest close in major units of the price currency
	MarketValue   float64 `json:"marketValue"` // Shares x LastPrice
}
