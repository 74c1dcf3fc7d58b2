package contracts

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a calendar month, counted in months since January of year 0
// ⭐ SSOT: every monthly index in the pipeline uses this type
type Period int

// NewPeriod builds a Period from a year and month
func NewPeriod(year int, month time.Month) Period {
	return Period(year*12 + int(month) - 1)
}

// PeriodOf returns the month containing t
func PeriodOf(t time.Time) Period {
	return NewPeriod(t.Year(), t.Month())
}

// ParsePeriod accepts "2006-01" and the library's compact "200601"
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	var yearStr, monthStr string
	switch {
	case len(s) == 7 && s[4] == '-':
		yearStr, monthStr = s[:4], s[5:]
	case len(s) == 6:
		yearStr, monthStr = s[:4], s[4:]
	default:
		return 0, fmt.Errorf("%w: period %q", ErrFormat, s)
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, fmt.Errorf("%w: period %q", ErrFormat, s)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: period %q", ErrFormat, s)
	}
	return NewPeriod(year, time.Month(month)), nil
}

// Year returns the calendar year
func (p Period) Year() int {
	return int(p) / 12
}

// Month returns the calendar month
func (p Period) Month() time.Month {
	return time.Month(int(p)%12 + 1)
}

// Sub returns the number of months from q to p
func (p Period) Sub(q Period) int {
	return int(p - q)
}

// Add shifts the period by n months
func (p Period) Add(n int) Period {
	return p + Period(n)
}

// Start returns midnight UTC on the first day of the month
func (p Period) Start() time.Time {
	return time.Date(p.Year(), p.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the month
func (p Period) End() time.Time {
	return p.Add(1).Start().Add(-time.Nanosecond)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year(), int(p.Month()))
}

// MarshalText implements encoding.TextMarshaler
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
