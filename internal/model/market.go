package model

import "time"

// DividendEvent is a single historical dividend payment per share,
// expressed in the instrument's dividend currency.
type DividendEvent struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// InstrumentInfo holds instrument metadata from the market data provider.
type InstrumentInfo struct {
	Symbol           string `json:"symbol"`      // Broker symbol
	YahooSymbol      string `json:"yahooSymbol"` // Symbol used for the market data lookup
	Currency         string `json:"currency"`    // Raw quote currency, e.g. "GBp"
	Exchange         string `json:"exchange"`
	FullExchangeName string `json:"fullExchangeName"`
	IsLSE            bool   `json:"isLSE"`
	QuoteType        string `json:"quoteType"`
	LongName         string `json:"longName"`
}

// MarketData is everything the dividend estimator needs for one instrument.
// History is sorted by Date ascending. AnnouncedExDate is nil when the
// provider reports no forward-looking ex-dividend date.
type MarketData struct {
	Info             InstrumentInfo
	History          []DividendEvent
	AnnouncedExDate  *time.Time
	DividendCurrency string // Raw currency the History amounts are quoted in
}

// Quote is the latest known price of an instrument with its metadata.
// LastPrice is in PriceCurrency, which may be a minor unit such as "GBp".
type Quote struct {
	Info          InstrumentInfo
	LastPrice     float64
	PriceCurrency string
	AsOf          time.Time
}
