package growth

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/timeseries"
)

// DefaultMonths is the trailing horizon of the growth view (ten years)
const DefaultMonths = 120

// Growth rebases the last months of nav so that the first point equals 1.
// Undefined NAV months are skipped; a shorter history is used whole.
func Growth(nav contracts.MonthlySeries, months int) (contracts.MonthlySeries, error) {
	defined := timeseries.Defined(nav).Tail(months)
	if len(defined) == 0 {
		return nil, fmt.Errorf("%w: no defined NAV values", contracts.ErrInsufficientData)
	}

	base := defined.First().Value
	if base <= 0 {
		return nil, fmt.Errorf("%w: NAV %v at %s cannot be used as a base", contracts.ErrInsufficientData, base, defined.First().Period)
	}

	out := make(contracts.MonthlySeries, len(defined))
	for i, p := range defined {
		out[i] = contracts.Point{Period: p.Period, Value: p.Value / base}
	}
	return out, nil
}

// Summary is the compound annual growth rate between two months
type Summary struct {
	First contracts.Period `json:"first"`
	Last  contracts.Period `json:"last"`
	Years float64          `json:"years"`
	// Rate is the annual rate as a fraction
	Rate float64 `json:"rate"`
	// Percent is Rate in percent, rounded to two decimals
	Percent decimal.Decimal `json:"percent"`
}

// String renders the one-line summary shown in reports
func (s Summary) String() string {
	return fmt.Sprintf("CAGR from %s to %s: %s %%.", s.First, s.Last, s.Percent.StringFixed(2))
}

// CAGR annualizes the growth between the first and last point of series.
// Elapsed years are the months between the two periods divided by 12.
func CAGR(series contracts.MonthlySeries) (Summary, error) {
	if len(series) < 2 {
		return Summary{}, fmt.Errorf("%w: CAGR needs at least two months, got %d", contracts.ErrInsufficientData, len(series))
	}

	first, last := series.First(), series.Last()
	months := last.Period.Sub(first.Period)
	if months <= 0 {
		return Summary{}, fmt.Errorf("%w: %s..%s spans no time", contracts.ErrInsufficientData, first.Period, last.Period)
	}
	if !(first.Value > 0) || math.IsNaN(last.Value) || math.IsInf(last.Value, 0) {
		return Summary{}, fmt.Errorf("%w: cannot compound from %v to %v", contracts.ErrInsufficientData, first.Value, last.Value)
	}

	years := float64(months) / 12
	rate := math.Pow(last.Value/first.Value, 1/years) - 1

	return Summary{
		First:   first.Period,
		Last:    last.Period,
		Years:   years,
		Rate:    rate,
		Percent: decimal.NewFromFloat(rate * 100).Round(2),
	}, nil
}
