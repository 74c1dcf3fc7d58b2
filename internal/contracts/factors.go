package contracts

import (
	"encoding/json"
	"fmt"
)

// Canonical factor column labels
const (
	FactorMktRF = "Mkt-RF"
	FactorSMB   = "SMB"
	FactorHML   = "HML"
	FactorRMW   = "RMW"
	FactorCMA   = "CMA"
	FactorRF    = "RF"
	FactorWML   = "WML"
)

// FactorColumns is the fixed column order of a FactorTable
var FactorColumns = []string{FactorMktRF, FactorSMB, FactorHML, FactorRMW, FactorCMA, FactorRF, FactorWML}

// RawFactorSet is one dataset as published by the factor library
// Column labels are kept exactly as published, including stray whitespace
type RawFactorSet struct {
	Name    string
	Columns []string
	Rows    []RawFactorRow
}

// RawFactorRow holds the values of one month, aligned with RawFactorSet.Columns
type RawFactorRow struct {
	Period Period
	Values []float64
}

// ColumnIndex returns the position of label, or -1
func (s *RawFactorSet) ColumnIndex(label string) int {
	for i, c := range s.Columns {
		if c == label {
			return i
		}
	}
	return -1
}

// FactorRow is one month of factor returns in percent
type FactorRow struct {
	Period Period  `json:"period"`
	MktRF  float64 `json:"mkt_rf"`
	SMB    float64 `json:"smb"`
	HML    float64 `json:"hml"`
	RMW    float64 `json:"rmw"`
	CMA    float64 `json:"cma"`
	RF     float64 `json:"rf"`
	WML    float64 `json:"wml"`
}

// Values returns the row in FactorColumns order
func (r FactorRow) Values() []float64 {
	return []float64{r.MktRF, r.SMB, r.HML, r.RMW, r.CMA, r.RF, r.WML}
}

// FactorRowFromValues builds a row from values in FactorColumns order
func FactorRowFromValues(period Period, v []float64) (FactorRow, error) {
	if len(v) != len(FactorColumns) {
		return FactorRow{}, fmt.Errorf("%w: factor row %s has %d values, want %d", ErrFormat, period, len(v), len(FactorColumns))
	}
	return FactorRow{Period: period, MktRF: v[0], SMB: v[1], HML: v[2], RMW: v[3], CMA: v[4], RF: v[5], WML: v[6]}, nil
}

// FactorTable is the merged six-factor + RF table of one region
// ⭐ SSOT: rows are unique per period and strictly increasing
type FactorTable struct {
	Region Region      `json:"region"`
	Rows   []FactorRow `json:"rows"`
}

// Periods lists the table's months in order
func (t *FactorTable) Periods() []Period {
	out := make([]Period, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Period
	}
	return out
}

type factorRowJSON struct {
	Period Period     `json:"period"`
	Values []*float64 `json:"values"`
}

// MarshalJSON encodes the row compactly, NaN as null
func (r FactorRow) MarshalJSON() ([]byte, error) {
	values := r.Values()
	out := factorRowJSON{Period: r.Period, Values: make([]*float64, len(values))}
	for i, v := range values {
		out.Values[i] = nullable(v)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the compact form produced by MarshalJSON
func (r *FactorRow) UnmarshalJSON(data []byte) error {
	var raw factorRowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := make([]float64, len(raw.Values))
	for i, v := range raw.Values {
		values[i] = fromNullable(v)
	}
	row, err := FactorRowFromValues(raw.Period, values)
	if err != nil {
		return err
	}
	*r = row
	return nil
}
