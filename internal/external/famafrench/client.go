package famafrench

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/pkg/httputil"
	"github.com/wonny/fundfactor/pkg/logger"
)

// DefaultBaseURL is Kenneth French's data library
const DefaultBaseURL = "https://mba.tuck.dartmouth.edu/pages/faculty/ken.french"

// missingMarkers are the library's placeholders for unavailable values
var missingMarkers = []float64{-99.99, -999}

// Client downloads factor datasets from the data library
// ⭐ SSOT: data library calls are made only by this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new data library client; an empty baseURL selects DefaultBaseURL
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("famafrench"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

var _ contracts.FactorDataProvider = (*Client)(nil)

// DatasetURL is where the zipped CSV of dataset is published
func (c *Client) DatasetURL(dataset string) string {
	return fmt.Sprintf("%s/ftp/%s_CSV.zip", c.baseURL, dataset)
}

// FetchFactorSet downloads dataset and returns its monthly table between start and end
func (c *Client) FetchFactorSet(ctx context.Context, dataset string, start, end time.Time) (*contracts.RawFactorSet, error) {
	body, err := c.fetch(ctx, c.DatasetURL(dataset))
	if err != nil {
		c.logger.WithError(err).WithField("dataset", dataset).Error("Failed to download dataset")
		return nil, fmt.Errorf("%w: dataset %s: %w", contracts.ErrDataUnavailable, dataset, err)
	}

	csvData, err := unzipCSV(body)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset %s: %v", contracts.ErrFormat, dataset, err)
	}

	set, err := ParseMonthly(dataset, bytes.NewReader(csvData))
	if err != nil {
		return nil, err
	}

	set.Rows = filterRows(set.Rows, contracts.PeriodOf(start), contracts.PeriodOf(end))
	if len(set.Rows) == 0 {
		return nil, fmt.Errorf("%w: dataset %s has no months between %s and %s", contracts.ErrDataUnavailable, dataset, contracts.PeriodOf(start), contracts.PeriodOf(end))
	}

	c.logger.WithFields(map[string]interface{}{
		"dataset": dataset,
		"columns": set.Columns,
		"count":   len(set.Rows),
	}).Debug("Fetched factor dataset")
	return set, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}
	return body, nil
}

// unzipCSV returns the first CSV member of a zip archive
func unzipCSV(body []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	for _, f := range zr.File {
		if !strings.EqualFold(path.Ext(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return data, nil
	}
	return nil, errors.New("archive has no CSV file")
}

// ParseMonthly reads the first table of a library CSV file: the monthly block.
// The table starts at a header whose first cell is empty and ends at the first
// row not keyed by a YYYYMM month (usually the annual block's title).
// Column labels are kept verbatim.
func ParseMonthly(dataset string, r io.Reader) (*contracts.RawFactorSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	set := &contracts.RawFactorSet{Name: dataset}
	inTable := false
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: dataset %s line %d: %v", contracts.ErrFormat, dataset, line, err)
		}

		if !inTable {
			if isHeader(record) {
				set.Columns = append([]string(nil), record[1:]...)
				inTable = true
			}
			continue
		}

		key := strings.TrimSpace(record[0])
		if len(key) != 6 {
			break
		}
		period, err := contracts.ParsePeriod(key)
		if err != nil {
			break
		}

		row, err := parseValues(record[1:], len(set.Columns))
		if err != nil {
			return nil, fmt.Errorf("%w: dataset %s month %s: %v", contracts.ErrFormat, dataset, period, err)
		}
		set.Rows = append(set.Rows, contracts.RawFactorRow{Period: period, Values: row})
	}

	if !inTable {
		return nil, fmt.Errorf("%w: dataset %s has no table header", contracts.ErrFormat, dataset)
	}
	return set, nil
}

func isHeader(record []string) bool {
	if len(record) < 2 || strings.TrimSpace(record[0]) != "" {
		return false
	}
	for _, label := range record[1:] {
		if strings.TrimSpace(label) == "" {
			return false
		}
	}
	return true
}

func parseValues(cells []string, want int) ([]float64, error) {
	if len(cells) < want {
		return nil, fmt.Errorf("%d values, want %d", len(cells), want)
	}
	out := make([]float64, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(cells[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not numeric", cells[i])
		}
		out[i] = markMissing(v)
	}
	return out, nil
}

func markMissing(v float64) float64 {
	for _, m := range missingMarkers {
		if v == m {
			return math.NaN()
		}
	}
	return v
}

func filterRows(rows []contracts.RawFactorRow, from, to contracts.Period) []contracts.RawFactorRow {
	out := rows[:0]
	for _, r := range rows {
		if r.Period >= from && r.Period <= to {
			out = append(out, r)
		}
	}
	return out
}
