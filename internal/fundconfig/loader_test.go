package fundconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundfactor/internal/contracts"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "fund.yaml", `
name: Acme Europe
ticker: 0P0000XXXX.F
currency: EUR
region: Europe
window: 24
`)

	f, raw, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	spec := f.Spec()
	assert.Equal(t, "Acme Europe", spec.Name)
	assert.Equal(t, "0P0000XXXX.F", spec.Ticker)
	assert.Equal(t, "EUR", spec.Currency)
	assert.Equal(t, 24, spec.Window)
}

func TestLoad_TOMLResolvesRelativeFile(t *testing.T) {
	path := writeFile(t, "fund.toml", `
file = "navs/acme.xlsx"
currency = "USD"
region = "Developed"
`)

	f, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "navs", "acme.xlsx"), f.File)
	assert.Zero(t, f.Window)
}

func TestLoad_UnknownFieldsFail(t *testing.T) {
	yamlPath := writeFile(t, "fund.yaml", "ticker: VTSAX\ncurrency: USD\nregion: Europe\nwindwo: 12\n")
	_, _, err := Load(yamlPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "windwo")

	tomlPath := writeFile(t, "fund.toml", "ticker = \"VTSAX\"\ncurrency = \"USD\"\nregion = \"Europe\"\nregoin = \"x\"\n")
	_, _, err = Load(tomlPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regoin")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "fund.json", "{}")
	_, _, err := Load(path)
	assert.ErrorIs(t, err, contracts.ErrInvalidConfiguration)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		fund      Fund
		wantField string
	}{
		{"no source", Fund{Currency: "USD", Region: "Europe"}, "ticker"},
		{"both sources", Fund{Ticker: "X", File: "a.xls", Currency: "USD", Region: "Europe"}, "ticker"},
		{"missing currency", Fund{Ticker: "X", Region: "Europe"}, "currency"},
		{"negative window", Fund{Ticker: "X", Currency: "USD", Region: "Europe", Window: -1}, "window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.fund)
			require.Error(t, err)
			assert.ErrorIs(t, err, contracts.ErrInvalidConfiguration)

			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestValidate_FundRules(t *testing.T) {
	err := Validate(&Fund{Ticker: "X", Currency: "GBP", Region: "Europe"})
	assert.ErrorIs(t, err, contracts.ErrInvalidConfiguration)

	err = Validate(&Fund{File: "nav.csv", Currency: "USD", Region: "Europe"})
	assert.ErrorIs(t, err, contracts.ErrInvalidConfiguration)

	assert.NoError(t, Validate(&Fund{Ticker: "X", Currency: "usd", Region: "emerging"}))
}
