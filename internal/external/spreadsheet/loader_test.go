package spreadsheet

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/pkg/logger"
)

func TestParseGrid(t *testing.T) {
	grid := [][]string{
		{"Date", " Global Equity Fund "},
		{"2020-01-31", "100.5"},
		{"2020-02-28", ""},
		{"45322", "101"},
		{"03/31/2020"},
	}

	rows, header, err := ParseGrid(grid)
	require.NoError(t, err)

	assert.Equal(t, "Global Equity Fund", header)
	require.Len(t, rows, 2)
	assert.Equal(t, time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC), rows[0].Time)
	assert.Equal(t, 100.5, rows[0].Value)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), rows[1].Time, "Excel serial date")
}

func TestParseGrid_Errors(t *testing.T) {
	tests := []struct {
		name    string
		grid    [][]string
		wantErr error
	}{
		{"empty sheet", nil, contracts.ErrDataUnavailable},
		{"single column", [][]string{{"Date"}, {"2020-01-31"}}, contracts.ErrFormat},
		{"text value", [][]string{{"Date", "NAV"}, {"2020-01-31", "n/a"}}, contracts.ErrFormat},
		{"bad date", [][]string{{"Date", "NAV"}, {"someday", "1.0"}}, contracts.ErrFormat},
		{"no values", [][]string{{"Date", "NAV"}, {"2020-01-31", " "}}, contracts.ErrDataUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseGrid(tt.grid)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadColumn_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fund.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Acme Europe Fund"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2021-01-29", 10.25}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2021-02-26", 10.5}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, header, err := NewLoader(logger.Nop()).LoadColumn(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Acme Europe Fund", header)
	require.Len(t, rows, 2)
	assert.Equal(t, 10.5, rows[1].Value)
	assert.Equal(t, time.February, rows[1].Time.Month())
}

func TestLoadColumn_RejectsOtherExtensions(t *testing.T) {
	_, _, err := NewLoader(logger.Nop()).LoadColumn(context.Background(), "fund.csv")
	assert.ErrorIs(t, err, contracts.ErrInvalidConfiguration)
}

func TestLoadColumn_MissingFile(t *testing.T) {
	_, _, err := NewLoader(logger.Nop()).LoadColumn(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}
