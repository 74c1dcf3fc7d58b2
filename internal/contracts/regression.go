package contracts

import "encoding/json"

// Regressor labels in design-matrix order; the intercept is reported as alpha
var RegressorNames = []string{"alpha", FactorMktRF, FactorSMB, FactorHML, FactorRMW, FactorCMA, FactorWML}

// Coefficient is one fitted parameter with its inference statistics
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdError float64 `json:"std_error"`
	TValue   float64 `json:"t_value"`
	PValue   float64 `json:"p_value"`
}

// RegressionResult is a static OLS fit of Fund-RF on the factors
type RegressionResult struct {
	Dependent        string        `json:"dependent"`
	Coefficients     []Coefficient `json:"coefficients"`
	NObs             int           `json:"nobs"`
	DFModel          int           `json:"df_model"`
	DFResid          int           `json:"df_resid"`
	RSquared         float64       `json:"r_squared"`
	AdjRSquared      float64       `json:"adj_r_squared"`
	FStatistic       float64       `json:"f_statistic"`
	FPValue          float64       `json:"f_p_value"`
	ResidualStdError float64       `json:"residual_std_error"`
	Start            Period        `json:"start"`
	End              Period        `json:"end"`
}

// Coefficient looks up a parameter by label
func (r *RegressionResult) Coefficient(name string) (Coefficient, bool) {
	for _, c := range r.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Alpha returns the intercept estimate (monthly, in percent)
func (r *RegressionResult) Alpha() float64 {
	c, _ := r.Coefficient("alpha")
	return c.Estimate
}

// RollingCoefficients is the fit of one window, stamped with the window's last period
// Params are aligned with RegressorNames
type RollingCoefficients struct {
	Period Period    `json:"period"`
	Params []float64 `json:"params"`
}

// Param returns the estimate for a regressor label
func (r RollingCoefficients) Param(name string) (float64, bool) {
	for i, n := range RegressorNames {
		if n == name && i < len(r.Params) {
			return r.Params[i], true
		}
	}
	return 0, false
}

// MarshalJSON emits params keyed by regressor label
func (r RollingCoefficients) MarshalJSON() ([]byte, error) {
	params := make(map[string]*float64, len(r.Params))
	for i, v := range r.Params {
		if i < len(RegressorNames) {
			params[RegressorNames[i]] = nullable(v)
		}
	}
	return json.Marshal(struct {
		Period Period              `json:"period"`
		Params map[string]*float64 `json:"params"`
	}{Period: r.Period, Params: params})
}

// MarshalJSON encodes non-finite statistics as null
func (c Coefficient) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string   `json:"name"`
		Estimate *float64 `json:"estimate"`
		StdError *float64 `json:"std_error"`
		TValue   *float64 `json:"t_value"`
		PValue   *float64 `json:"p_value"`
	}{c.Name, nullable(c.Estimate), nullable(c.StdError), nullable(c.TValue), nullable(c.PValue)})
}

// MarshalJSON encodes non-finite fit statistics as null
func (r RegressionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Dependent        string        `json:"dependent"`
		Coefficients     []Coefficient `json:"coefficients"`
		NObs             int           `json:"nobs"`
		DFModel          int           `json:"df_model"`
		DFResid          int           `json:"df_resid"`
		RSquared         *float64      `json:"r_squared"`
		AdjRSquared      *float64      `json:"adj_r_squared"`
		FStatistic       *float64      `json:"f_statistic"`
		FPValue          *float64      `json:"f_p_value"`
		ResidualStdError *float64      `json:"residual_std_error"`
		Start            Period        `json:"start"`
		End              Period        `json:"end"`
	}{
		Dependent:        r.Dependent,
		Coefficients:     r.Coefficients,
		NObs:             r.NObs,
		DFModel:          r.DFModel,
		DFResid:          r.DFResid,
		RSquared:         nullable(r.RSquared),
		AdjRSquared:      nullable(r.AdjRSquared),
		FStatistic:       nullable(r.FStatistic),
		FPValue:          nullable(r.FPValue),
		ResidualStdError: nullable(r.ResidualStdError),
		Start:            r.Start,
		End:              r.End,
	})
}
