package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/fundfactor/internal/contracts"
)

// DependentName labels the regressand: USD return in excess of the risk-free rate
const DependentName = "Fund-RF"

// Sample is the aligned regression input.
// ⭐ SSOT: Periods, FundRF and Factors always have the same length and contain no NaN
type Sample struct {
	Periods []contracts.Period
	FundRF  []float64
	// Factors holds Mkt-RF, SMB, HML, RMW, CMA, WML per row (RegressorNames without alpha)
	Factors [][]float64
}

// Len returns the number of observations
func (s *Sample) Len() int {
	return len(s.Periods)
}

// Slice returns observations [i, j) sharing the underlying storage
func (s *Sample) Slice(i, j int) *Sample {
	return &Sample{Periods: s.Periods[i:j], FundRF: s.FundRF[i:j], Factors: s.Factors[i:j]}
}

// Design builds the regressor matrix with a leading constant column
func (s *Sample) Design() *mat.Dense {
	k := len(contracts.RegressorNames)
	x := mat.NewDense(s.Len(), k, nil)
	for i, row := range s.Factors {
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
	}
	return x
}

// Response returns FundRF as a vector
func (s *Sample) Response() *mat.VecDense {
	return mat.NewVecDense(s.Len(), append([]float64(nil), s.FundRF...))
}

// Merge inner-joins the fund's USD return with the factor table on period and
// derives Fund-RF = month-over-month change of the USD return in percent minus RF.
// The change is taken between consecutive joined rows; rows where it or any
// factor is undefined are dropped.
func Merge(series contracts.FundSeries, table *contracts.FactorTable) (*Sample, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: no factor table", contracts.ErrInsufficientData)
	}

	byPeriod := make(map[contracts.Period]contracts.FactorRow, len(table.Rows))
	for _, r := range table.Rows {
		byPeriod[r.Period] = r
	}

	type joined struct {
		fund    contracts.FundPoint
		factors contracts.FactorRow
	}
	rows := make([]joined, 0, len(series))
	for _, p := range series {
		if f, ok := byPeriod[p.Period]; ok {
			rows = append(rows, joined{fund: p, factors: f})
		}
	}

	sample := &Sample{}
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].fund.ReturnUSD, rows[i].fund.ReturnUSD
		f := rows[i].factors

		fundRF := (cur/prev-1)*100 - f.RF
		regressors := []float64{f.MktRF, f.SMB, f.HML, f.RMW, f.CMA, f.WML}
		if !finite(fundRF) || !allFinite(regressors) {
			continue
		}

		sample.Periods = append(sample.Periods, rows[i].fund.Period)
		sample.FundRF = append(sample.FundRF, fundRF)
		sample.Factors = append(sample.Factors, regressors)
	}

	if sample.Len() == 0 {
		return nil, fmt.Errorf("%w: fund and factor data share no usable months (%d joined)", contracts.ErrInsufficientData, len(rows))
	}
	return sample, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if !finite(v) {
			return false
		}
	}
	return true
}
