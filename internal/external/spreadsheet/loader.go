package spreadsheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/fundfactor/internal/contracts"
	"github.com/wonny/fundfactor/pkg/logger"
)

// dateLayouts are the text date forms accepted in the index column
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"01-02-06",
	"2006-01",
}

// Loader reads single-column NAV sheets.
// The first row is a header: the index label, then the fund name.
// Below it, column A holds dates and column B the NAV.
type Loader struct {
	logger *logger.Logger
}

// NewLoader creates a spreadsheet loader
func NewLoader(log *logger.Logger) *Loader {
	return &Loader{logger: log.Component("spreadsheet")}
}

var _ contracts.SpreadsheetLoader = (*Loader)(nil)

// LoadColumn reads the first sheet of path and returns its dated values and the
// data column header
func (l *Loader) LoadColumn(ctx context.Context, path string) ([]contracts.RawPoint, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	var (
		grid [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xls":
		grid, err = readXLS(path)
	case ".xlsx", ".xlsm":
		grid, err = readXLSX(path)
	default:
		return nil, "", &contracts.ConfigError{Field: "file", Value: path, Reason: "expected an .xls, .xlsx or .xlsm file"}
	}
	if err != nil {
		l.logger.WithError(err).WithField("path", path).Error("Failed to open spreadsheet")
		return nil, "", fmt.Errorf("%w: %s: %w", contracts.ErrDataUnavailable, path, err)
	}

	rows, header, err := ParseGrid(grid)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	l.logger.WithFields(map[string]interface{}{
		"path":   path,
		"header": header,
		"count":  len(rows),
	}).Debug("Loaded spreadsheet")
	return rows, header, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		grid = append(grid, []string{row.Col(0), row.Col(1)})
	}
	return grid, nil
}

// ParseGrid turns sheet cells into dated values.
// Rows with a blank value are skipped; any other non-numeric value is a format error.
func ParseGrid(grid [][]string) ([]contracts.RawPoint, string, error) {
	if len(grid) == 0 {
		return nil, "", fmt.Errorf("%w: sheet is empty", contracts.ErrDataUnavailable)
	}
	header := grid[0]
	if len(header) < 2 {
		return nil, "", fmt.Errorf("%w: header row needs an index and a data column", contracts.ErrFormat)
	}
	name := strings.TrimSpace(header[1])

	rows := make([]contracts.RawPoint, 0, len(grid)-1)
	for i, record := range grid[1:] {
		line := i + 2
		if len(record) < 2 || strings.TrimSpace(record[1]) == "" {
			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, "", fmt.Errorf("%w: row %d: column %q value %q is not numeric", contracts.ErrFormat, line, name, record[1])
		}
		date, err := parseDate(record[0])
		if err != nil {
			return nil, "", fmt.Errorf("%w: row %d: %v", contracts.ErrFormat, line, err)
		}
		rows = append(rows, contracts.RawPoint{Time: date, Value: value})
	}

	if len(rows) == 0 {
		return nil, "", fmt.Errorf("%w: column %q has no values", contracts.ErrDataUnavailable, name)
	}
	return rows, name, nil
}

// parseDate accepts Excel serial dates and common text layouts
func parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if serial, err := strconv.ParseFloat(cell, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q not recognised", cell)
}
