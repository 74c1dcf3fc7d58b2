package currency

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/internal/timeseries"
	"github.com/wonny/fundfactor/pkg/logger"
)

// Converter expresses a fund's NAV in USD
type Converter struct {
	market contracts.MarketDataProvider
	logger *logger.Logger
	now    func() time.Time
}

// NewConverter creates a converter that fetches exchange rates from market
func NewConverter(market contracts.MarketDataProvider, log *logger.Logger) *Converter {
	return &Converter{
		market: market,
		logger: log.Component("currency"),
		now:    time.Now,
	}
}

// Convert builds the fund series for nav denominated in cur.
// USD: the USD return is the NAV itself. EUR: the EUR/USD rate is left-joined
// onto the NAV, so months before the rate history starts keep their NAV with an
// undefined USD return.
func (c *Converter) Convert(ctx context.Context, nav contracts.MonthlySeries, cur contracts.Currency, start, end time.Time) (contracts.FundSeries, error) {
	switch cur {
	case contracts.CurrencyUSD:
		out := make(contracts.FundSeries, len(nav))
		for i, p := range nav {
			out[i] = contracts.FundPoint{Period: p.Period, NAV: p.Value, EURUSD: math.NaN(), ReturnUSD: p.Value}
		}
		return out, nil

	case contracts.CurrencyEUR:
		rates, err := c.fetchRates(ctx, start, end)
		if err != nil {
			return nil, err
		}
		idx := rates.Index()

		out := make(contracts.FundSeries, len(nav))
		known := 0
		for i, p := range nav {
			rate, ok := idx[p.Period]
			if !ok {
				rate = math.NaN()
			}
			out[i] = contracts.FundPoint{Period: p.Period, NAV: p.Value, EURUSD: rate, ReturnUSD: p.Value * rate}
			if !math.IsNaN(out[i].ReturnUSD) {
				known++
			}
		}

		c.logger.WithFields(map[string]interface{}{
			"months":     len(nav),
			"with_rate":  known,
			"rate_start": rates.First().Period.String(),
		}).Debug("Converted EUR NAV to USD")
		return out, nil

	default:
		return nil, &contracts.ConfigError{Field: "currency", Value: string(cur), Reason: "supported: USD, EUR"}
	}
}

func (c *Converter) fetchRates(ctx context.Context, start, end time.Time) (contracts.MonthlySeries, error) {
	rows, err := c.market.FetchSeries(ctx, contracts.EURUSDSymbol, start, end)
	if err != nil {
		c.logger.WithError(err).Error("Failed to fetch EUR/USD rate")
		if errors.Is(err, contracts.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", contracts.ErrDataUnavailable, contracts.EURUSDSymbol, err)
	}

	rates, err := timeseries.ToMonthly(rows, c.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", contracts.EURUSDSymbol, err)
	}
	return rates, nil
}
