// Package currency normalizes broker and market currency codes and converts
// minor-unit quotes (pence) to major units (pounds).
package currency

import "strings"

// Code is a canonical, upper-case currency code.
type Code string

const (
	// GBP is the home currency and the default for missing codes.
	GBP Code = "GBP"
	// GBX is UK pence, the minor unit of GBP. It is kept distinct from GBP.
	GBX Code = "GBX"
	USD Code = "USD"
	EUR Code = "EUR"
)

// Home is the currency assumed when a code is missing.
const Home = GBP

// minorUnits maps minor-unit codes to their settlement currency and the
// number of minor units per major unit.
var minorUnits = map[Code]struct {
	major  Code
	factor float64
}{
	GBX: {major: GBP, factor: 100},
}

// Normalize returns the canonical form of a currency code.
// Every casing of the UK pence denomination ("GBp", "GBx", "gbx", "GBX") maps
// to GBX. The all-lowercase "gbp" is treated as pence too, following the
// market-data convention that a lowercase final letter denotes the minor unit.
// An empty code defaults to the home currency.
func Normalize(code string) Code {
	code = strings.TrimSpace(code)
	if code == "" {
		return Home
	}
	switch code {
	case "GBp", "GBx", "gbp", "gbx", "GBX":
		return GBX
	}
	return Code(strings.ToUpper(code))
}

// IsMinor reports whether c is a minor-unit currency.
func IsMinor(c Code) bool {
	_, ok := minorUnits[c]
	return ok
}

// Major returns the currency c settles in: GBX becomes GBP, anything else is returned unchanged.
func Major(c Code) Code {
	if m, ok := minorUnits[c]; ok {
		return m.major
	}
	return c
}

// ToMajorUnits converts an amount quoted in c to major units.
func ToMajorUnits(c Code, amount float64) float64 {
	if m, ok := minorUnits[c]; ok {
		return amount / m.factor
	}
	return amount
}

// MinorToMajorRate returns the fixed rate between a minor-unit currency and its
// major counterpart, e.g. GBX->GBP = 0.01.
func MinorToMajorRate(from, to Code) (float64, bool) {
	m, ok := minorUnits[from]
	if !ok || m.major != to {
		return 0, false
	}
	return 1 / m.factor, true
}
