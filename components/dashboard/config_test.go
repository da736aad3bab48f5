package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

func TestVariantsAreValid(t *testing.T) {
	for _, name := range Variants() {
		cfg, err := VariantConfig(name)
		require.NoError(t, err, name)
		require.NoError(t, cfg.Validate(), name)
		assert.Equal(t, name, cfg.Variant)
	}
}

func TestVariantConfigDefaultsToRetail(t *testing.T) {
	cfg, err := VariantConfig("")
	require.NoError(t, err)
	assert.Equal(t, VariantRetail, cfg.Variant)
	assert.Equal(t, CountryFilterSingle, cfg.Filters.Country)
	assert.Equal(t, "Realizado por Martha Rugeles y Camila Gallego", cfg.Footer)

	_, err = VariantConfig("quarterly")
	require.Error(t, err)
}

func TestDecodeConfigOverlaysVariant(t *testing.T) {
	doc := `
version: "1"
variant: strategic
title: Ventas LATAM
empty_selection: match_none
charts:
  - id: sales_by_category
    kind: pie
  - id: monthly_sales_profit
dataset:
  path: ./ventas.csv
  columns:
    sales: Importe
`
	cfg, err := DecodeConfig(strings.NewReader(doc), nil)
	require.NoError(t, err)

	assert.Equal(t, "Ventas LATAM", cfg.Title)
	assert.Equal(t, CountryFilterMulti, cfg.Filters.Country)
	assert.True(t, cfg.Filters.DateRange)
	assert.Equal(t, sales.MatchNone, cfg.Policy())
	require.Len(t, cfg.Charts, 2)
	assert.Equal(t, "pie", cfg.Charts[0].Kind)
	assert.Equal(t, "./ventas.csv", cfg.Dataset.Path)
	assert.Equal(t, DefaultDatasetURL, cfg.Dataset.URL)
	assert.Equal(t, "es_ES", cfg.Locale)
}

func TestDecodeConfigRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown field":    "version: \"1\"\ncolour: red\n",
		"bad chart kind":   "charts:\n  - id: sales_by_category\n    kind: radar\n",
		"bad palette":      "palette: [\"pink\"]\n",
		"bad policy":       "empty_selection: maybe\n",
		"bad country":      "filters:\n  country: several\n",
		"missing chart id": "charts:\n  - kind: bar\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeConfig(strings.NewReader(doc), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed validation")
		})
	}
}

func TestDecodeConfigRejectsCrossFieldErrors(t *testing.T) {
	cases := map[string]string{
		"unknown chart":    "charts:\n  - id: sales_by_planet\n",
		"duplicate chart":  "charts:\n  - id: sales_by_category\n  - id: sales_by_category\n",
		"kind not allowed": "charts:\n  - id: monthly_sales_profit\n    kind: pie\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeConfig(strings.NewReader(doc), nil)
			require.Error(t, err)
		})
	}
}

func TestDecodeConfigRejectsEmptyDocument(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader(""), nil)
	require.Error(t, err)
}

func TestReadConfigFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Tablero\npalette: [\"#000000\"]\n"), 0o600))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "Tablero", cfg.Title)
	assert.Equal(t, []string{"#000000"}, cfg.Palette)
	assert.Equal(t, VariantRetail, cfg.Variant)

	_, err = ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfigLoaderOptions(t *testing.T) {
	cfg, _ := VariantConfig(VariantRetail)
	cfg.Dataset = DatasetConfig{Path: "ventas.csv", Format: "csv", Columns: map[string]string{"sales": "Importe"}}

	opts, err := cfg.LoaderOptions()
	require.NoError(t, err)

	assert.Equal(t, dataset.FormatCSV, opts.Format)
	assert.Equal(t, "ventas.csv", opts.Source.Name())
	assert.Contains(t, opts.Columns[dataset.FieldSales], "Importe")

	cfg.Dataset = DatasetConfig{}
	_, err = cfg.LoaderOptions()
	require.Error(t, err)
}

func TestJSONSchemaValidatorCustomSchema(t *testing.T) {
	validator := NewJSONSchemaValidatorFor([]byte(`{"type":"object","required":["name"]}`))

	require.NoError(t, validator.Validate(map[string]any{"name": "ventas"}))
	require.Error(t, validator.Validate(map[string]any{}))
	require.Error(t, validator.Validate(nil))
}

func TestJSONSchemaValidatorReportsBrokenSchema(t *testing.T) {
	validator := NewJSONSchemaValidatorFor([]byte(`{"type":`))

	err := validator.Validate(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}
