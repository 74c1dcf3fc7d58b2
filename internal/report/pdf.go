package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/fund"
)

const (
	pageMargin = 15.0
	fontFamily = "Helvetica"
)

// rgb is a line colour
type rgb struct{ r, g, b int }

// palette colours the regressors in RegressorNames order
var palette = []rgb{
	{0, 0, 0},
	{31, 119, 180},
	{255, 127, 14},
	{44, 160, 44},
	{214, 39, 40},
	{148, 103, 189},
	{140, 86, 75},
}

// chartSeries is one line of a chart
type chartSeries struct {
	label  string
	colour rgb
	values []float64
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N} ._()-]+`)

// FileName is the report file for a fund name inside dir
func FileName(dir, name string) string {
	clean := strings.TrimSpace(unsafeFileChars.ReplaceAllString(name, "_"))
	if clean == "" {
		clean = "fund"
	}
	return filepath.Join(dir, clean+".pdf")
}

// WritePDFFile renders the report to path
func WritePDFFile(path string, a *fund.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WritePDF(f, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePDF renders the fund name, the growth chart with its CAGR, the static
// regression table and the rolling coefficients chart
func WritePDF(w io.Writer, a *fund.Analysis) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(a.Name, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(contentW, 10, tr(a.Name), "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("%s  |  %s  |  %s  |  window %d", a.Source, a.Currency, a.Region, a.Window)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// growth of one unit
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(contentW, 6, "Growth of 1 (NAV, fund currency)", "", 1, "L", false, 0, "")
	growthVals := make([]float64, len(a.Growth))
	for i, p := range a.Growth {
		growthVals[i] = p.Value
	}
	y := pdf.GetY() + 2
	drawLineChart(pdf, pageMargin, y, contentW, 70, periodsOf(a.Growth), []chartSeries{
		{label: "Growth", colour: palette[1], values: growthVals},
	})
	pdf.SetY(y + 80)
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(contentW, 6, a.CAGR.String(), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeRegressionTable(pdf, contentW, a.Static)

	// rolling coefficients
	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Rolling OLS coefficients (%d-month window)", a.Window), "", 1, "L", false, 0, "")
	periods := make([]contracts.Period, len(a.Rolling))
	series := make([]chartSeries, len(contracts.RegressorNames))
	for j, name := range contracts.RegressorNames {
		series[j] = chartSeries{label: name, colour: palette[j%len(palette)], values: make([]float64, len(a.Rolling))}
	}
	for i, row := range a.Rolling {
		periods[i] = row.Period
		for j := range series {
			series[j].values[i] = row.Params[j]
		}
	}
	drawLineChart(pdf, pageMargin, pdf.GetY()+2, contentW, 110, periods, series)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func writeRegressionTable(pdf *fpdf.Fpdf, width float64, r *contracts.RegressionResult) {
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(width, 6, fmt.Sprintf("OLS regression of %s, %s to %s", r.Dependent, r.Start, r.End), "", 1, "L", false, 0, "")

	headers := []string{"", "coef", "std err", "t", "P>|t|"}
	colW := width / float64(len(headers))

	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, h := range headers {
		pdf.CellFormat(colW, 6, h, "TB", 0, "R", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 9)
	for _, c := range r.Coefficients {
		pdf.CellFormat(colW, 5, c.Name, "", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 5, fmt.Sprintf("%.4f", c.Estimate), "", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 5, fmt.Sprintf("%.4f", c.StdError), "", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 5, fmt.Sprintf("%.3f", c.TValue), "", 0, "R", false, 0, "")
		pdf.CellFormat(colW, 5, fmt.Sprintf("%.3f", c.PValue), "", 1, "R", false, 0, "")
	}
	pdf.CellFormat(width, 0, "", "T", 1, "", false, 0, "")
	pdf.Ln(2)

	stats := [][2]string{
		{"Observations", fmt.Sprintf("%d", r.NObs)},
		{"R-squared", fmt.Sprintf("%.3f", r.RSquared)},
		{"Adj. R-squared", fmt.Sprintf("%.3f", r.AdjRSquared)},
		{"F-statistic", fmt.Sprintf("%.4g (p = %.3g)", r.FStatistic, r.FPValue)},
		{"Residual std. error", fmt.Sprintf("%.4f", r.ResidualStdError)},
	}
	for _, s := range stats {
		pdf.CellFormat(colW*2, 5, s[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(colW*3, 5, s[1], "", 1, "L", false, 0, "")
	}
}

// drawLineChart plots series over periods inside the box at (x, y).
// Undefined values break the line.
func drawLineChart(pdf *fpdf.Fpdf, x, y, w, h float64, periods []contracts.Period, series []chartSeries) {
	const (
		axisPad   = 12.0
		legendGap = 5.0
	)
	plotX, plotY := x+axisPad, y
	plotW, plotH := w-axisPad, h-legendGap*2

	lo, hi := valueRange(series)
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	n := len(periods)
	xAt := func(i int) float64 {
		if n <= 1 {
			return plotX + plotW/2
		}
		return plotX + plotW*float64(i)/float64(n-1)
	}
	yAt := func(v float64) float64 {
		return plotY + plotH - plotH*(v-lo)/(hi-lo)
	}

	// frame and horizontal grid
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetFont(fontFamily, "", 7)
	pdf.SetTextColor(80, 80, 80)
	for k := 0; k <= 4; k++ {
		v := lo + (hi-lo)*float64(k)/4
		gy := yAt(v)
		pdf.Line(plotX, gy, plotX+plotW, gy)
		pdf.Text(x, gy+1, fmt.Sprintf("%.2f", v))
	}
	if lo < 0 && hi > 0 {
		pdf.SetDrawColor(100, 100, 100)
		pdf.Line(plotX, yAt(0), plotX+plotW, yAt(0))
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(plotX, plotY, plotW, plotH, "D")

	if n > 0 {
		for _, i := range []int{0, n / 2, n - 1} {
			label := periods[i].String()
			pdf.Text(xAt(i)-pdf.GetStringWidth(label)/2, plotY+plotH+4, label)
		}
	}

	// lines
	pdf.SetLineWidth(0.4)
	for _, s := range series {
		pdf.SetDrawColor(s.colour.r, s.colour.g, s.colour.b)
		for i := 1; i < len(s.values) && i < n; i++ {
			a, b := s.values[i-1], s.values[i]
			if math.IsNaN(a) || math.IsNaN(b) {
				continue
			}
			pdf.Line(xAt(i-1), yAt(a), xAt(i), yAt(b))
		}
	}

	// legend
	lx, ly := plotX, plotY+plotH+legendGap*1.8
	for _, s := range series {
		pdf.SetDrawColor(s.colour.r, s.colour.g, s.colour.b)
		pdf.Line(lx, ly-1, lx+5, ly-1)
		pdf.Text(lx+6, ly, s.label)
		lx += 8 + pdf.GetStringWidth(s.label) + 4
	}

	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
}

func valueRange(series []chartSeries) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	return lo, hi
}

func periodsOf(s contracts.MonthlySeries) []contracts.Period {
	out := make([]contracts.Period, len(s))
	for i, p := range s {
		out[i] = p.Period
	}
	return out
}
