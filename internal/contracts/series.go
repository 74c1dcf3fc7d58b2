package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// RawPoint is one observation as delivered by a provider (daily or irregular)
type RawPoint struct {
	Time  time.Time
	Value float64
}

// Point is one month of a MonthlySeries; NaN marks an undefined value
type Point struct {
	Period Period  `json:"period"`
	Value  float64 `json:"value"`
}

// MonthlySeries is ordered by strictly increasing period
// ⭐ SSOT: the in-progress month is never part of a MonthlySeries
type MonthlySeries []Point

// Validate checks ordering and uniqueness of periods
func (s MonthlySeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if s[i].Period <= s[i-1].Period {
			return fmt.Errorf("%w: period %s follows %s", ErrFormat, s[i].Period, s[i-1].Period)
		}
	}
	return nil
}

// First returns the earliest point
func (s MonthlySeries) First() Point {
	return s[0]
}

// Last returns the latest point
func (s MonthlySeries) Last() Point {
	return s[len(s)-1]
}

// Tail returns the last n points, or the whole series when it is shorter
func (s MonthlySeries) Tail(n int) MonthlySeries {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Index maps each period to its value
func (s MonthlySeries) Index() map[Period]float64 {
	idx := make(map[Period]float64, len(s))
	for _, p := range s {
		idx[p.Period] = p.Value
	}
	return idx
}

// FundPoint is one month of a fund's derived series
// EURUSD is NaN for USD funds and for months before the rate history starts
type FundPoint struct {
	Period    Period  `json:"period"`
	NAV       float64 `json:"nav"`
	EURUSD    float64 `json:"eur_usd"`
	ReturnUSD float64 `json:"return_usd"`
}

// FundSeries is the NAV / EUR_USD / USD return table of one fund
type FundSeries []FundPoint

// NAV extracts the NAV column
func (s FundSeries) NAV() MonthlySeries {
	out := make(MonthlySeries, len(s))
	for i, p := range s {
		out[i] = Point{Period: p.Period, Value: p.NAV}
	}
	return out
}

// ReturnUSD extracts the USD return column
func (s FundSeries) ReturnUSD() MonthlySeries {
	out := make(MonthlySeries, len(s))
	for i, p := range s {
		out[i] = Point{Period: p.Period, Value: p.ReturnUSD}
	}
	return out
}

// JSON has no NaN, so undefined values travel as null

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromNullable(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

type pointJSON struct {
	Period Period   `json:"period"`
	Value  *float64 `json:"value"`
}

// MarshalJSON encodes NaN as null
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(pointJSON{Period: p.Period, Value: nullable(p.Value)})
}

// UnmarshalJSON decodes null as NaN
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw pointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Period = raw.Period
	p.Value = fromNullable(raw.Value)
	return nil
}

type fundPointJSON struct {
	Period    Period   `json:"period"`
	NAV       *float64 `json:"nav"`
	EURUSD    *float64 `json:"eur_usd"`
	ReturnUSD *float64 `json:"return_usd"`
}

// MarshalJSON encodes NaN as null
func (p FundPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(fundPointJSON{
		Period:    p.Period,
		NAV:       nullable(p.NAV),
		EURUSD:    nullable(p.EURUSD),
		ReturnUSD: nullable(p.ReturnUSD),
	})
}

// UnmarshalJSON decodes null as NaN
func (p *FundPoint) UnmarshalJSON(data []byte) error {
	var raw fundPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Period = raw.Period
	p.NAV = fromNullable(raw.NAV)
	p.EURUSD = fromNullable(raw.EURUSD)
	p.ReturnUSD = fromNullable(raw.ReturnUSD)
	return nil
}
