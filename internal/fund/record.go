package fund

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/currency"
	"github.com/wonny/fundfactor/internal/timeseries"
	"github.com/wonny/fundfactor/pkg/logger"
)

// SpreadsheetExtensions are the accepted NAV file types
var SpreadsheetExtensions = []string{".xls", ".xlsx", ".xlsm"}

// Spec is an unvalidated fund definition as typed by a user or read from a file
type Spec struct {
	// Name overrides the resolved display name when set
	Name     string
	Ticker   string
	File     string
	Currency string
	Region   string
	// Window is the rolling regression window in months; 0 selects DefaultWindow
	Window int
}

// FactorSource returns the merged factor table of a region
type FactorSource interface {
	Fetch(ctx context.Context, region contracts.Region, start, end time.Time) (*contracts.FactorTable, error)
}

// Deps are the collaborators a Record is built with
type Deps struct {
	Market      contracts.MarketDataProvider
	Spreadsheet contracts.SpreadsheetLoader
	Factors     FactorSource
	Logger      *logger.Logger
	// HistoryStart is the earliest date requested from every source
	HistoryStart time.Time
	// Now defaults to time.Now
	Now func() time.Time
}

// Record is one fund with its derived series. It is immutable once built.
type Record struct {
	name     string
	ticker   string
	file     string
	currency contracts.Currency
	region   contracts.Region
	window   int

	nav     contracts.MonthlySeries
	series  contracts.FundSeries
	factors *contracts.FactorTable
}

// settings is a Spec after validation
type settings struct {
	name     string
	ticker   string
	file     string
	currency contracts.Currency
	region   contracts.Region
	window   int
}

// Validate checks every field of spec without touching any data source
func (s Spec) Validate() error {
	_, err := s.validate()
	return err
}

func (s Spec) validate() (settings, error) {
	out := settings{
		name:   strings.TrimSpace(s.Name),
		ticker: strings.TrimSpace(s.Ticker),
		file:   strings.TrimSpace(s.File),
		window: s.Window,
	}

	switch {
	case out.ticker == "" && out.file == "":
		return settings{}, &contracts.ConfigError{Field: "source", Reason: "a ticker or a spreadsheet file is required"}
	case out.ticker != "" && out.file != "":
		return settings{}, &contracts.ConfigError{Field: "source", Value: out.ticker + " / " + out.file, Reason: "give either a ticker or a file, not both"}
	case out.file != "" && !IsSpreadsheet(out.file):
		return settings{}, &contracts.ConfigError{Field: "file", Value: out.file, Reason: "expected an .xls, .xlsx or .xlsm file"}
	}

	cur, err := contracts.ParseCurrency(s.Currency)
	if err != nil {
		return settings{}, err
	}
	out.currency = cur

	region, err := contracts.ParseRegion(s.Region)
	if err != nil {
		return settings{}, err
	}
	out.region = region

	switch {
	case out.window == 0:
		out.window = contracts.DefaultWindow
	case out.window < 0:
		return settings{}, &contracts.ConfigError{Field: "window", Value: strconv.Itoa(out.window), Reason: "must be a positive integer"}
	}
	return out, nil
}

// IsSpreadsheet reports whether path has an accepted spreadsheet extension
func IsSpreadsheet(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SpreadsheetExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ParseWindow reads a window typed by a user; blank selects DefaultWindow
func ParseWindow(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return contracts.DefaultWindow, nil
	}
	w, err := strconv.Atoi(s)
	if err != nil || w < 1 {
		return 0, &contracts.ConfigError{Field: "window", Value: s, Reason: "must be a positive integer"}
	}
	return w, nil
}

// NewRecord validates spec, then resolves the fund name and loads the factor
// table, the NAV history and its USD conversion.
// Nothing is returned unless every step succeeds.
func NewRecord(ctx context.Context, spec Spec, deps Deps) (*Record, error) {
	cfg, err := spec.validate()
	if err != nil {
		return nil, err
	}

	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("fund")
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	end := now()

	r := &Record{
		name:     cfg.name,
		ticker:   cfg.ticker,
		file:     cfg.file,
		currency: cfg.currency,
		region:   cfg.region,
		window:   cfg.window,
	}

	if r.ticker != "" {
		if deps.Market == nil {
			return nil, errors.New("fund: no market data provider configured")
		}
		display, err := deps.Market.ResolveDisplayName(ctx, r.ticker)
		if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
			return nil, fmt.Errorf("resolving ticker %q: %w", r.ticker, err)
		}
		if err != nil {
			log.WithError(err).WithField("ticker", r.ticker).Error("Ticker could not be resolved")
			return nil, fmt.Errorf("%w: ticker %q: %w", contracts.ErrInvalidConfiguration, r.ticker, err)
		}
		if r.name == "" {
			r.name = display
		}
	}

	if deps.Factors == nil {
		return nil, errors.New("fund: no factor provider configured")
	}
	r.factors, err = deps.Factors.Fetch(ctx, r.region, deps.HistoryStart, end)
	if err != nil {
		return nil, fmt.Errorf("factors for %s: %w", r.region, err)
	}

	raw, err := r.loadNAV(ctx, deps, end)
	if err != nil {
		return nil, err
	}
	r.nav, err = timeseries.ToMonthly(raw, end)
	if err != nil {
		return nil, fmt.Errorf("NAV of %s: %w", r.Source(), err)
	}

	if r.currency == contracts.CurrencyEUR && deps.Market == nil {
		return nil, errors.New("fund: EUR conversion needs a market data provider")
	}
	r.series, err = currency.NewConverter(deps.Market, log).Convert(ctx, r.nav, r.currency, deps.HistoryStart, end)
	if err != nil {
		return nil, fmt.Errorf("converting %s to USD: %w", r.Source(), err)
	}

	log.WithFields(map[string]interface{}{
		"fund":     r.name,
		"source":   r.Source(),
		"currency": string(r.currency),
		"region":   string(r.region),
		"months":   len(r.nav),
		"factors":  len(r.factors.Rows),
	}).Info("Fund loaded")
	return r, nil
}

func (r *Record) loadNAV(ctx context.Context, deps Deps, end time.Time) ([]contracts.RawPoint, error) {
	if r.ticker != "" {
		rows, err := deps.Market.FetchSeries(ctx, r.ticker, deps.HistoryStart, end)
		if err != nil {
			if errors.Is(err, contracts.ErrDataUnavailable) {
				return nil, fmt.Errorf("NAV of %s: %w", r.ticker, err)
			}
			return nil, fmt.Errorf("%w: NAV of %s: %w", contracts.ErrDataUnavailable, r.ticker, err)
		}
		return rows, nil
	}

	if deps.Spreadsheet == nil {
		return nil, errors.New("fund: no spreadsheet loader configured")
	}
	rows, header, err := deps.Spreadsheet.LoadColumn(ctx, r.file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.file, err)
	}
	if r.name == "" {
		r.name = strings.TrimSpace(header)
	}
	if r.name == "" {
		r.name = strings.TrimSuffix(filepath.Base(r.file), filepath.Ext(r.file))
	}
	return rows, nil
}

// Name is the fund's display name
func (r *Record) Name() string { return r.name }

// Ticker is the market symbol, empty for spreadsheet funds
func (r *Record) Ticker() string { return r.ticker }

// File is the spreadsheet path, empty for ticker funds
func (r *Record) File() string { return r.file }

// Source is the ticker or file the NAV came from
func (r *Record) Source() string {
	if r.ticker != "" {
		return r.ticker
	}
	return r.file
}

// Currency is the NAV denomination
func (r *Record) Currency() contracts.Currency { return r.currency }

// Region selects the factor datasets
func (r *Record) Region() contracts.Region { return r.region }

// Window is the rolling regression window in months
func (r *Record) Window() int { return r.window }

// NAV returns a copy of the monthly NAV in the fund's own currency
func (r *Record) NAV() contracts.MonthlySeries { return slices.Clone(r.nav) }

// Series returns a copy of the NAV, EUR/USD and USD return table
func (r *Record) Series() contracts.FundSeries { return slices.Clone(r.series) }

// Factors returns a copy of the region's factor table
func (r *Record) Factors() *contracts.FactorTable {
	return &contracts.FactorTable{Region: r.factors.Region, Rows: slices.Clone(r.factors.Rows)}
}
