package regression

import (
	"fmt"
	"math"

	"github.com/wonny/fundfactor/internal/contracts"
)

// Rolling refits the static model on every window of consecutive
// observations. Each row is stamped with the window's last period, so the
// output has Len-window+1 rows.
func Rolling(s *Sample, window int) ([]contracts.RollingCoefficients, error) {
	if window < 1 {
		return nil, &contracts.ConfigError{Field: "window", Value: fmt.Sprint(window), Reason: "must be a positive integer"}
	}
	if s.Len() < window {
		return nil, fmt.Errorf("%w: regression window too big for data (window %d, %d observations)", contracts.ErrInsufficientData, window, s.Len())
	}
	if window < MinObservations {
		return nil, fmt.Errorf("%w: window %d leaves no residual degrees of freedom, need at least %d", contracts.ErrInsufficientData, window, MinObservations)
	}

	k := len(contracts.RegressorNames)
	out := make([]contracts.RollingCoefficients, 0, s.Len()-window+1)
	for end := window; end <= s.Len(); end++ {
		params := make([]float64, k)
		f, err := solve(s.Slice(end-window, end))
		if err != nil {
			// a degenerate window keeps its slot with undefined estimates
			for j := range params {
				params[j] = math.NaN()
			}
		} else {
			for j := range params {
				params[j] = f.beta.AtVec(j)
			}
		}
		out = append(out, contracts.RollingCoefficients{Period: s.Periods[end-1], Params: params})
	}
	return out, nil
}
