package yahoo

import "strings"

// symbolOverrides maps broker symbols that do not follow the suffix rule.
var symbolOverrides = map[string]string{
	"BTl": "BT-A.L", // BT Group Class A shares
	"BT":  "BT-A.L",
}

// ToYahooSymbol converts a Trading 212 symbol to Yahoo format.
// Explicit overrides win; a trailing lower-case "l" marks a London listing
// ("VODl" -> "VOD.L"); everything else passes through unchanged.
func ToYahooSymbol(symbol string) string {
	if mapped, ok := symbolOverrides[symbol]; ok {
		return mapped
	}

	if strings.HasSuffix(symbol, "l") && len(symbol) > 1 {
		base := symbol[:len(symbol)-1]
		if mapped, ok := symbolOverrides[base]; ok {
			return mapped
		}
		return base + ".L"
	}

	return symbol
}
