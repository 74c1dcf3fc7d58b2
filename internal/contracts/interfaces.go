package contracts

import (
	"context"
	"time"
)

// MarketDataProvider delivers raw price history and display names
// ⭐ SSOT: fund tickers and the EUR/USD rate are both fetched through this interface
type MarketDataProvider interface {
	FetchSeries(ctx context.Context, symbol string, start, end time.Time) ([]RawPoint, error)
	ResolveDisplayName(ctx context.Context, symbol string) (string, error)
}

// SpreadsheetLoader reads a single-column NAV sheet
// Returns the raw rows and the data column header used as the fund name
type SpreadsheetLoader interface {
	LoadColumn(ctx context.Context, path string) ([]RawPoint, string, error)
}

// FactorDataProvider delivers a named factor dataset
type FactorDataProvider interface {
	FetchFactorSet(ctx context.Context, dataset string, start, end time.Time) (*RawFactorSet, error)
}
