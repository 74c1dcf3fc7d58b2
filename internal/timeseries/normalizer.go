package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wonny/fundfactor/internal/contracts"
)

// ToMonthly resamples raw observations to month-end values.
// Each month takes its last defined observation; months between the first and
// last observation with no data stay in the series as NaN.
// The month containing now is still open and is dropped.
func ToMonthly(rows []contracts.RawPoint, now time.Time) (contracts.MonthlySeries, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: source returned no rows", contracts.ErrDataUnavailable)
	}

	sorted := make([]contracts.RawPoint, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	first := contracts.PeriodOf(sorted[0].Time)
	last := contracts.PeriodOf(sorted[len(sorted)-1].Time)

	out := make(contracts.MonthlySeries, last.Sub(first)+1)
	for i := range out {
		out[i] = contracts.Point{Period: first.Add(i), Value: math.NaN()}
	}
	for _, r := range sorted {
		if math.IsNaN(r.Value) {
			continue
		}
		out[contracts.PeriodOf(r.Time).Sub(first)].Value = r.Value
	}

	if out.Last().Period >= contracts.PeriodOf(now) {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: only the current month %s is available", contracts.ErrDataUnavailable, last)
	}
	return out, nil
}

// Defined drops undefined points
func Defined(s contracts.MonthlySeries) contracts.MonthlySeries {
	out := make(contracts.MonthlySeries, 0, len(s))
	for _, p := range s {
		if !math.IsNaN(p.Value) {
			out = append(out, p)
		}
	}
	return out
}
