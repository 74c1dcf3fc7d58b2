package fund

import (
	"fmt"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/growth"
	"github.com/wonny/fundfactor/internal/regression"
)

// Analysis is everything the reports render for one fund
type Analysis struct {
	Name     string             `json:"name"`
	Source   string             `json:"source"`
	Currency contracts.Currency `json:"currency"`
	Region   contracts.Region   `json:"region"`
	Window   int                `json:"window"`

	Series  contracts.FundSeries            `json:"series"`
	Growth  contracts.MonthlySeries         `json:"growth"`
	CAGR    growth.Summary                  `json:"cagr"`
	Static  *contracts.RegressionResult     `json:"static"`
	Rolling []contracts.RollingCoefficients `json:"rolling"`
}

// Sample merges the fund's USD return with its factor table
func (r *Record) Sample() (*regression.Sample, error) {
	return regression.Merge(r.series, r.factors)
}

// Analyze runs both regressions and the growth summary.
// Any failing step fails the whole analysis.
func (r *Record) Analyze() (*Analysis, error) {
	sample, err := r.Sample()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}

	static, err := regression.OLS(sample)
	if err != nil {
		return nil, fmt.Errorf("%s: static regression: %w", r.name, err)
	}

	rolling, err := regression.Rolling(sample, r.window)
	if err != nil {
		return nil, fmt.Errorf("%s: rolling regression (window %d): %w", r.name, r.window, err)
	}

	g, err := growth.Growth(r.nav, growth.DefaultMonths)
	if err != nil {
		return nil, fmt.Errorf("%s: growth: %w", r.name, err)
	}
	cagr, err := growth.CAGR(g)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}

	return &Analysis{
		Name:     r.name,
		Source:   r.Source(),
		Currency: r.currency,
		Region:   r.region,
		Window:   r.window,
		Series:   r.Series(),
		Growth:   g,
		CAGR:     cagr,
		Static:   static,
		Rolling:  rolling,
	}, nil
}
