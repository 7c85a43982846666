package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

// Common validation errors
var (
	ErrInvalidCurrency = fmt.Errorf("invalid currency code")
)

// ValidateCurrencyCode checks that code is an ISO 4217 currency known to the money package.
// Lowercase codes are rejected; the caller normalizes first.
func ValidateCurrencyCode(code string) error {
	if len(code) != 3 || strings.ToUpper(code) != code || money.GetCurrency(code) == nil {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return nil
}

// parseDate parses a calendar date in YYYY-MM-DD form as UTC midnight.
func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(raw), time.UTC)
}
