package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/fund"
)

const ruleWidth = 78

// WriteSummary prints the fund header, CAGR, the static regression table and
// the latest rolling estimates
func WriteSummary(w io.Writer, a *fund.Analysis) error {
	p := &printer{w: w}

	p.rule("=")
	p.line("  %s", a.Name)
	p.rule("-")
	p.line("  Source    : %s (%s)", a.Source, a.Currency)
	p.line("  Region    : %s", a.Region)
	p.line("  Window    : %d months", a.Window)
	p.line("  %s", a.CAGR.String())
	p.rule("=")

	writeRegression(p, a.Static)

	if n := len(a.Rolling); n > 0 {
		p.line("")
		p.line("Rolling OLS (%d-month window): %d fits, %s to %s", a.Window, n, a.Rolling[0].Period, a.Rolling[n-1].Period)
		p.rule("-")
		p.line("%-10s %10s %10s %10s", "", "first", "last", "mean")
		for i, name := range contracts.RegressorNames {
			first, last := a.Rolling[0].Params[i], a.Rolling[n-1].Params[i]
			p.line("%-10s %10.4f %10.4f %10.4f", name, first, last, meanParam(a.Rolling, i))
		}
		p.rule("=")
	}
	return p.err
}

func writeRegression(p *printer, r *contracts.RegressionResult) {
	p.line("%-28s %s", "OLS Regression Results", "")
	p.rule("=")
	p.line("%-18s %-20s %-22s %12.3f", "Dep. Variable:", r.Dependent, "R-squared:", r.RSquared)
	p.line("%-18s %-20s %-22s %12.3f", "Model:", "OLS", "Adj. R-squared:", r.AdjRSquared)
	p.line("%-18s %-20s %-22s %12.4g", "Sample:", r.Start.String()+" - "+r.End.String(), "F-statistic:", r.FStatistic)
	p.line("%-18s %-20d %-22s %12.3g", "No. Observations:", r.NObs, "Prob (F-statistic):", r.FPValue)
	p.line("%-18s %-20d %-22s %12.4f", "Df Residuals:", r.DFResid, "Residual Std. Error:", r.ResidualStdError)
	p.line("%-18s %-20d", "Df Model:", r.DFModel)
	p.rule("=")
	p.line("%-10s %12s %12s %10s %10s", "", "coef", "std err", "t", "P>|t|")
	p.rule("-")
	for _, c := range r.Coefficients {
		p.line("%-10s %12.4f %12.4f %10.3f %10.3f", c.Name, c.Estimate, c.StdError, c.TValue, c.PValue)
	}
	p.rule("=")
}

func meanParam(rows []contracts.RollingCoefficients, i int) float64 {
	sum, n := 0.0, 0
	for _, r := range rows {
		if v := r.Params[i]; !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// printer keeps the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) rule(ch string) {
	p.line("%s", strings.Repeat(ch, ruleWidth))
}
