package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/fundfactor/internal/contracts"
)

// MinObservations is the smallest sample that leaves a residual degree of freedom
var MinObservations = len(contracts.RegressorNames) + 1

// fit holds the normal-equation solution of one sample
type fit struct {
	beta *mat.VecDense
	inv  *mat.SymDense // (X'X)^-1
	x    *mat.Dense
	y    *mat.VecDense
}

// solve fits y = Xb by least squares through the Cholesky factor of X'X
func solve(s *Sample) (*fit, error) {
	x := s.Design()
	y := s.Response()
	_, k := x.Dims()

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, fmt.Errorf("%w: factor matrix is singular over %s..%s", contracts.ErrInsufficientData, s.Periods[0], s.Periods[s.Len()-1])
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	beta := mat.NewVecDense(k, nil)
	if err := chol.SolveVecTo(beta, &xty); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInsufficientData, err)
	}

	inv := mat.NewSymDense(k, nil)
	if err := chol.InverseTo(inv); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInsufficientData, err)
	}

	return &fit{beta: beta, inv: inv, x: x, y: y}, nil
}

// OLS regresses Fund-RF on a constant and the six factors over the whole sample
func OLS(s *Sample) (*contracts.RegressionResult, error) {
	n := s.Len()
	k := len(contracts.RegressorNames)
	if n < MinObservations {
		return nil, fmt.Errorf("%w: %d observations, need at least %d for %d regressors", contracts.ErrInsufficientData, n, MinObservations, k)
	}

	f, err := solve(s)
	if err != nil {
		return nil, err
	}

	var fitted mat.VecDense
	fitted.MulVec(f.x, f.beta)
	var resid mat.VecDense
	resid.SubVec(f.y, &fitted)

	ssr := mat.Dot(&resid, &resid)
	mean := 0.0
	for _, v := range s.FundRF {
		mean += v
	}
	mean /= float64(n)
	tss := 0.0
	for _, v := range s.FundRF {
		tss += (v - mean) * (v - mean)
	}

	dfResid := n - k
	dfModel := k - 1
	sigma2 := ssr / float64(dfResid)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dfResid)}

	coefs := make([]contracts.Coefficient, k)
	for j, name := range contracts.RegressorNames {
		est := f.beta.AtVec(j)
		se := math.Sqrt(sigma2 * f.inv.At(j, j))
		tv := est / se
		coefs[j] = contracts.Coefficient{
			Name:     name,
			Estimate: est,
			StdError: se,
			TValue:   tv,
			PValue:   2 * tDist.Survival(math.Abs(tv)),
		}
	}

	r2 := 1 - ssr/tss
	fStat := ((tss - ssr) / float64(dfModel)) / sigma2
	fDist := distuv.F{D1: float64(dfModel), D2: float64(dfResid)}

	return &contracts.RegressionResult{
		Dependent:        DependentName,
		Coefficients:     coefs,
		NObs:             n,
		DFModel:          dfModel,
		DFResid:          dfResid,
		RSquared:         r2,
		AdjRSquared:      1 - (1-r2)*float64(n-1)/float64(dfResid),
		FStatistic:       fStat,
		FPValue:          fDist.Survival(fStat),
		ResidualStdError: math.Sqrt(sigma2),
		Start:            s.Periods[0],
		End:              s.Periods[n-1],
	}, nil
}
