package famafrench

import (
	"archive/zip"
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/pkg/config"
	"github.com/wonny/fundfactor/pkg/httputil"
	"github.com/wonny/fundfactor/pkg/logger"
)

const fiveFactorCSV = `This file was created by CMPT_ME_BEME_OP_INV_RETS using the 202401 CRSP database.
The 1-month TBill return is from Ibbotson and Associates Inc.

,Mkt-RF,SMB,HML,RMW,CMA,RF
196307,  -0.39,  -0.41,  -0.97,   0.68,  -1.18,   0.27
196308,   5.07,  -0.80,   1.80,   0.36,  -0.35,   0.25
196309,  -1.57,  -0.52,   0.13,  -0.71,   0.29,   0.27
196310,   2.53,  -1.39,  -0.10,   2.80,  -2.01,   0.29

 Annual Factors: January-December 
,Mkt-RF,SMB,HML,RMW,CMA,RF
1964,  12.57,   0.11,   8.95,   0.15,   4.65,   3.54
`

const momentumCSV = `This file was created by CMPT_ME_PRIOR_RETS using the 202401 CRSP database.
It contains a momentum factor, constructed from six value-weight portfolios formed using independent sorts on size and prior return of NYSE, AMEX, and NASDAQ stocks.
Missing data are indicated by -99.99 or -999.

,Mom   
196307,   0.90
196308,   1.01
196309, -99.99
196310,   2.20

Annual Factors:
,Mom   
1964,   9.14
`

func zipped(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{HTTP: config.HTTPConfig{Timeout: 5 * time.Second}}
	return NewClient(httputil.New(cfg, logger.Nop()), logger.Nop(), server.URL)
}

func TestParseMonthly_FiveFactors(t *testing.T) {
	set, err := ParseMonthly("F-F_Research_Data_5_Factors_2x3", strings.NewReader(fiveFactorCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Mkt-RF", "SMB", "HML", "RMW", "CMA", "RF"}, set.Columns)
	require.Len(t, set.Rows, 4, "annual block is not part of the monthly table")
	assert.Equal(t, contracts.NewPeriod(1963, time.July), set.Rows[0].Period)
	assert.Equal(t, []float64{-0.39, -0.41, -0.97, 0.68, -1.18, 0.27}, set.Rows[0].Values)
	assert.Equal(t, contracts.NewPeriod(1963, time.October), set.Rows[3].Period)
}

func TestParseMonthly_MomentumKeepsRawLabel(t *testing.T) {
	set, err := ParseMonthly("F-F_Momentum_Factor", strings.NewReader(momentumCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Mom   "}, set.Columns)
	require.Len(t, set.Rows, 4)
	assert.True(t, math.IsNaN(set.Rows[2].Values[0]), "-99.99 marks a missing value")
	assert.Equal(t, 2.2, set.Rows[3].Values[0])
}

func TestParseMonthly_Errors(t *testing.T) {
	_, err := ParseMonthly("x", strings.NewReader("no table here\n"))
	assert.ErrorIs(t, err, contracts.ErrFormat)

	_, err = ParseMonthly("x", strings.NewReader(",A,B\n202001,1.0,abc\n"))
	assert.ErrorIs(t, err, contracts.ErrFormat)
}

func TestFetchFactorSet(t *testing.T) {
	archive := zipped(t, "F-F_Research_Data_5_Factors_2x3.CSV", fiveFactorCSV)
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write(archive)
	})

	start := time.Date(1963, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(1963, 9, 30, 0, 0, 0, 0, time.UTC)
	set, err := client.FetchFactorSet(context.Background(), "F-F_Research_Data_5_Factors_2x3", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/ftp/F-F_Research_Data_5_Factors_2x3_CSV.zip", gotPath)
	require.Len(t, set.Rows, 2)
	assert.Equal(t, contracts.NewPeriod(1963, time.August), set.Rows[0].Period)
	assert.Equal(t, contracts.NewPeriod(1963, time.September), set.Rows[1].Period)
}

func TestFetchFactorSet_Failures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := client.FetchFactorSet(context.Background(), "Missing_Factors", time.Time{}, time.Now())
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a zip"))
	})
	_, err = client.FetchFactorSet(context.Background(), "Broken", time.Time{}, time.Now())
	assert.ErrorIs(t, err, contracts.ErrFormat)

	archive := zipped(t, "Europe_5_Factors.csv", fiveFactorCSV)
	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})
	_, err = client.FetchFactorSet(context.Background(), "Europe_5_Factors", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Now())
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable, "no months in range")
}

func TestListDatasets(t *testing.T) {
	page := `<html><body><table>
<tr><td><b>Fama/French 5 Factors (2x3)</b></td>
<td><a href="ftp/F-F_Research_Data_5_Factors_2x3_CSV.zip">CSV</a></td>
<td><a href="ftp/F-F_Research_Data_5_Factors_2x3_TXT.zip">TXT</a></td></tr>
<tr><td><b>Momentum Factor (Mom)</b></td>
<td><a href="ftp/F-F_Momentum_Factor_CSV.zip">CSV</a></td></tr>
<tr><td><a href="ftp/Europe_5_Factors_CSV.zip">CSV</a></td>
<td><a href="ftp/Europe_5_Factors_CSV.zip">CSV again</a></td></tr>
<tr><td><a href="Data_Library/f-f_5_factors_2x3.html">Details</a></td></tr>
</table></body></html>`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data_library.html", r.URL.Path)
		_, _ = w.Write([]byte(page))
	})

	datasets, err := client.ListDatasets(context.Background())
	require.NoError(t, err)

	names := make([]string, len(datasets))
	for i, d := range datasets {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Europe_5_Factors", "F-F_Momentum_Factor", "F-F_Research_Data_5_Factors_2x3"}, names)
	assert.True(t, strings.HasSuffix(datasets[0].URL, "/ftp/Europe_5_Factors_CSV.zip"))
}

func TestFetchFactorSet_DeadlineStaysInChain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchFactorSet(ctx, "Europe_5_Factors", time.Time{}, time.Now())
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
