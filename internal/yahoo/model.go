package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange)
//   - Chart.Result[].Timestamp: Unix timestamps for each price point
//   - Chart.Result[].Indicators: Price arrays; entries are null on non-trading days
//   - Chart.Result[].Events.Dividends: Dividend events keyed by unix timestamp, present with events=div
//   - Chart.Error: Optional error object from Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart envelope.
type Chart struct {
	Result []Result `json:"result"`
	Error  *Error   `json:"error"`
}

// Error is the error object Yahoo returns instead of results.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e Error) String() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// Result is one chart result, normally the only element of Chart.Result.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
	Events     *Events             `json:"events,omitempty"`
}

// Meta holds instrument metadata from the chart endpoint.
type Meta struct {
	Currency         string `json:"currency"`
	Symbol           string `json:"symbol"`
	ExchangeName     string `json:"exchangeName"`
	FullExchangeName string `json:"fullExchangeName"`
	LongName         string `json:"longName"`
	Shortname        string `json:"shortName"`
	InstrumentType   string `json:"instrumentType"`
}

// IndicatorsContainer wraps the quote arrays.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds parallel OHLCV arrays. Pointers allow Yahoo's null entries.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// Events holds corporate events returned with events=div.
type Events struct {
	Dividends map[string]DividendEvent `json:"dividends"`
}

// DividendEvent is a raw dividend entry; Amount is in the chart currency.
type DividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

// QuoteSummaryResponse represents the raw quoteSummary response for the
// calendarEvents, summaryDetail and price modules.
type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummaryResult `json:"result"`
		Error  *Error               `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteSummaryResult holds the modules requested from quoteSummary.
type QuoteSummaryResult struct {
	CalendarEvents *struct {
		ExDividendDate *RawValue `json:"exDividendDate"`
		DividendDate   *RawValue `json:"dividendDate"`
	} `json:"calendarEvents"`
	SummaryDetail *struct {
		ExDividendDate *RawValue `json:"exDividendDate"`
		Currency       string    `json:"currency"`
	} `json:"summaryDetail"`
	Price *struct {
		Currency     string `json:"currency"`
		Exchange     string `json:"exchange"`
		ExchangeName string `json:"exchangeName"`
		LongName     string `json:"longName"`
		QuoteType    string `json:"quoteType"`
	} `json:"price"`
}

// RawValue is Yahoo's {"raw": ..., "fmt": ...} number wrapper.
type RawValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

// DividendHistory is the parsed result of a dividend history query.
// Events are sorted by date ascending and amounts are in Currency.
type DividendHistory struct {
	Symbol           string
	Currency         string
	ExchangeName     string
	FullExchangeName string
	LongName         string
	Events           []Dividend
}

// Dividend is a single parsed dividend payment.
type Dividend struct {
	Date   time.Time
	Amount float64
}

// QuoteDetails is the parsed result of a quote summary query.
// AnnouncedExDate is nil when Yahoo reports no ex-dividend date.
type QuoteDetails struct {
	Currency         string
	Exchange         string
	FullExchangeName string
	LongName         string
	QuoteType        string
	AnnouncedExDate  *time.Time
}

// LatestPrice is the most recent close and the currency it is quoted in.
type LatestPrice struct {
	Date     time.Time
	Close    float64
	Currency string
}
