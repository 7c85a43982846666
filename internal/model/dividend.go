package model

import "time"

// DividendRecord is the calculated dividend for one holding.
// DividendPerShare and Payout are expressed in the configured base currency.
// A record with a Payout always carries an ExDividendDate and a DividendPerShare.
type DividendRecord struct {
	Symbol           string     `json:"symbol"`
	ExDividendDate   *time.Time `json:"exDividendDate"`
	DividendPerShare *float64   `json:"dividendPerShare"`
	Shares           *float64   `json:"shares"`
	Payout           *float64   `json:"payout"`
	IsEstimated      bool       `json:"isEstimated"`
}

// IsFuture reports whether the record's ex-dividend date lies strictly after today.
// Records without a date are neither past nor future.
func (r DividendRecord) IsFuture(today time.Time) bool {
	return r.ExDividendDate != nil && r.ExDividendDate.After(today)
}

// IsPast reports whether the record's ex-dividend date is on or before today.
func (r DividendRecord) IsPast(today time.Time) bool {
	return r.ExDividendDate != nil && !r.ExDividendDate.After(today)
}

// PayoutValue returns the payout or 0 when the payout is unknown.
func (r DividendRecord) PayoutValue() float64 {
	if r.Payout == nil {
		return 0
	}
	return *r.Payout
}

// PortfolioSummary aggregates a set of dividend records.
// Confirmed and Estimated partition Future; Past and Future never overlap.
type PortfolioSummary struct {
	TotalExpected float64          `json:"totalExpected"`
	Currency      string           `json:"currency"`
	Display       string           `json:"display"` // TotalExpected formatted with the currency symbol
	NextDividend  *DividendRecord  `json:"nextDividend"`
	Past          []DividendRecord `json:"pastDividends"`
	Future        []DividendRecord `json:"futureDividends"`
	Confirmed     []DividendRecord `json:"confirmedDividends"`
	Estimated     []DividendRecord `json:"estimatedDividends"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}
