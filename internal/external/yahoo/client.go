package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/pkg/httputil"
	"github.com/wonny/fundfactor/pkg/logger"
)

// DefaultBaseURL is the public Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client reads price history and fund names from the Yahoo Finance chart API
// ⭐ SSOT: Yahoo Finance calls are made only by this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client; an empty baseURL selects DefaultBaseURL
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("yahoo"),
		baseURL:    baseURL,
	}
}

var _ contracts.MarketDataProvider = (*Client)(nil)

// chartResponse is the subset of /v8/finance/chart used here
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		LongName  string `json:"longName"`
		ShortName string `json:"shortName"`
		// Daily bars are stamped at local midnight of the exchange
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
		Timezone             string `json:"timezone"`
		GMTOffset            int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []interface{} `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []interface{} `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// fetchChart calls the chart endpoint for symbol with params
func (c *Client) fetchChart(ctx context.Context, symbol string, params url.Values) (*chartResult, error) {
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: HTTP request failed: %w", contracts.ErrDataUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response body failed: %w", contracts.ErrDataUnavailable, symbol, err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s: unexpected status code: %d", contracts.ErrDataUnavailable, symbol, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s: decode chart: %v", contracts.ErrFormat, symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", contracts.ErrDataUnavailable, symbol, chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status code: %d", contracts.ErrDataUnavailable, symbol, resp.StatusCode)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: no chart result", contracts.ErrDataUnavailable, symbol)
	}
	return &chart.Chart.Result[0], nil
}

// FetchSeries returns daily closes adjusted for dividends and splits between start and end.
// Bars without a price are skipped.
func (c *Client) FetchSeries(ctx context.Context, symbol string, start, end time.Time) ([]contracts.RawPoint, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")

	result, err := c.fetchChart(ctx, symbol, params)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Error("Failed to fetch price history")
		return nil, err
	}

	rows := parseCloses(result)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no prices between %s and %s", contracts.ErrDataUnavailable, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(rows),
	}).Debug("Fetched prices")
	return rows, nil
}

// ResolveDisplayName returns the long name Yahoo lists for symbol.
// An unknown symbol is an error.
func (c *Client) ResolveDisplayName(ctx context.Context, symbol string) (string, error) {
	params := url.Values{}
	params.Set("range", "5d")
	params.Set("interval", "1d")

	result, err := c.fetchChart(ctx, symbol, params)
	if err != nil {
		return "", err
	}

	switch {
	case result.Meta.LongName != "":
		return result.Meta.LongName, nil
	case result.Meta.ShortName != "":
		return result.Meta.ShortName, nil
	default:
		return symbol, nil
	}
}

// parseCloses pairs timestamps with adjusted closes, falling back to raw closes
func parseCloses(result *chartResult) []contracts.RawPoint {
	var values []interface{}
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		values = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		values = result.Indicators.Quote[0].Close
	}

	loc := result.location()
	rows := make([]contracts.RawPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(values) {
			break
		}
		v, ok := toFloat(values[i])
		if !ok {
			continue // null bar (holiday or missing quote)
		}
		rows = append(rows, contracts.RawPoint{Time: time.Unix(ts, 0).In(loc), Value: v})
	}
	return rows
}

// location is the exchange time zone, so a bar falls in the month it was traded.
// The named zone follows daylight saving; gmtoffset is only the offset at request time.
func (r *chartResult) location() *time.Location {
	if name := r.Meta.ExchangeTimezoneName; name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if r.Meta.GMTOffset != 0 {
		return time.FixedZone(r.Meta.Timezone, r.Meta.GMTOffset)
	}
	return time.UTC
}

// toFloat converts a JSON number, reporting false for null
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
