package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundingPrecision is the number of decimal places kept for money and share counts.
const RoundingPrecision = 2

// round rounds a float64 value to RoundingPrecision decimal places.
// The value is converted to a decimal first, so amounts like 2.675 round to
// 2.68 instead of falling victim to their binary representation.
//
// Example:
//
//	round(123.456789)  // returns 123.46
//	round(0.005)       // returns 0.01
//	round(1.994)       // returns 1.99
func round(value float64) float64 {
	return decimal.NewFromFloat(value).Round(RoundingPrecision).InexactFloat64()
}

// mulRound multiplies a and b exactly and rounds the product.
func mulRound(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(RoundingPrecision).InexactFloat64()
}

// truncateToDay returns midnight UTC of t's UTC calendar day.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
