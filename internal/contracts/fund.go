package contracts

import (
	"strings"
)

// Currency is the denomination of a fund's NAV
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency accepts USD or EUR, case-insensitively
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case CurrencyUSD, CurrencyEUR:
		return c, nil
	default:
		return "", &ConfigError{Field: "currency", Value: s, Reason: "supported: USD, EUR"}
	}
}

// Region selects the factor datasets a fund is regressed against
type Region string

const (
	RegionUnitedStates Region = "United States"
	RegionDeveloped    Region = "Developed"
	RegionEurope       Region = "Europe"
	RegionEmerging     Region = "Emerging"
)

// Regions lists every supported region in display order
var Regions = []Region{RegionUnitedStates, RegionDeveloped, RegionEurope, RegionEmerging}

// ParseRegion matches a region name, ignoring case and surrounding whitespace
func ParseRegion(s string) (Region, error) {
	trimmed := strings.TrimSpace(s)
	for _, r := range Regions {
		if strings.EqualFold(trimmed, string(r)) {
			return r, nil
		}
	}
	return "", &ConfigError{Field: "region", Value: s, Reason: "supported: United States, Developed, Europe, Emerging"}
}

// EURUSDSymbol is the market data symbol of the EUR/USD exchange rate
const EURUSDSymbol = "EURUSD=X"

// DefaultWindow is the rolling regression window in months when none is given
const DefaultWindow = 36
