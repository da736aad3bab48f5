package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

const (
	configVersionV1 = "1"
	// ConfigVersion exposes the current config format version for tooling.
	ConfigVersion = configVersionV1

	VariantRetail    = "retail"
	VariantStrategic = "strategic"

	// DefaultDatasetURL is the published retail workbook.
	DefaultDatasetURL = "https://docs.google.com/spreadsheets/d/16LxoNFY-rwmJh6adZ1_ByV4im8k_T__i/edit?usp=sharing&ouid=104676576460693310333&rtpof=true&sd=true"
)

// Country filter modes.
const (
	CountryFilterNone   = "none"
	CountryFilterSingle = "single"
	CountryFilterMulti  = "multi"
)

// Config describes one dashboard variant: which filters and charts it shows
// and how values are labelled.
type Config struct {
	Version        string            `json:"version" yaml:"version"`
	Variant        string            `json:"variant,omitempty" yaml:"variant,omitempty"`
	Title          string            `json:"title" yaml:"title"`
	Footer         string            `json:"footer,omitempty" yaml:"footer,omitempty"`
	Locale         string            `json:"locale" yaml:"locale"`
	Currency       string            `json:"currency" yaml:"currency"`
	Theme          string            `json:"theme,omitempty" yaml:"theme,omitempty"`
	Palette        []string          `json:"palette,omitempty" yaml:"palette,omitempty"`
	EmptySelection string            `json:"empty_selection,omitempty" yaml:"empty_selection,omitempty"`
	Filters        FilterConfig      `json:"filters" yaml:"filters"`
	Charts         []ChartConfig     `json:"charts" yaml:"charts"`
	Dataset        DatasetConfig     `json:"dataset" yaml:"dataset"`
	CountryAliases map[string]string `json:"country_aliases,omitempty" yaml:"country_aliases,omitempty"`
	Source         string            `json:"-" yaml:"-"`
}

// FilterConfig toggles the selection controls.
type FilterConfig struct {
	Country   string `json:"country" yaml:"country"`
	Category  bool   `json:"category" yaml:"category"`
	Segment   bool   `json:"segment" yaml:"segment"`
	DateRange bool   `json:"date_range" yaml:"date_range"`
}

// ChartConfig enables one chart, optionally overriding its kind and title.
type ChartConfig struct {
	ID    string `json:"id" yaml:"id"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// DatasetConfig points at the sales document.
type DatasetConfig struct {
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Path        string            `json:"path,omitempty" yaml:"path,omitempty"`
	Format      string            `json:"format,omitempty" yaml:"format,omitempty"`
	Sheet       string            `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Columns     map[string]string `json:"columns,omitempty" yaml:"columns,omitempty"`
	DateLayouts []string          `json:"date_layouts,omitempty" yaml:"date_layouts,omitempty"`
}

var defaultPalette = []string{"#D94F6D", "#F1C6D2", "#6E6E6E"}

// Variants returns the names of the built-in configs.
func Variants() []string {
	names := []string{VariantRetail, VariantStrategic}
	sort.Strings(names)
	return names
}

// VariantConfig returns a built-in config.
func VariantConfig(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", VariantRetail:
		return retailConfig(), nil
	case VariantStrategic:
		return strategicConfig(), nil
	default:
		return Config{}, fmt.Errorf("dashboard: unknown variant %q", name)
	}
}

func retailConfig() Config {
	return Config{
		Version:  configVersionV1,
		Variant:  VariantRetail,
		Title:    "Panel Estratégico de Ventas y Comportamiento",
		Locale:   "es_ES",
		Currency: "$",
		Palette:  append([]string(nil), defaultPalette...),
		Filters:  FilterConfig{Country: CountryFilterSingle},
		Charts: []ChartConfig{
			{ID: ChartSalesByCategory},
			{ID: ChartSalesBySubcategory},
			{ID: ChartSalesBySegment, Kind: string(KindDonut)},
			{ID: ChartMonthlySalesProfit},
			{ID: ChartSalesByShipMode, Kind: string(KindTreemap)},
		},
		Dataset: DatasetConfig{URL: DefaultDatasetURL},
		Footer:  "Realizado por Martha Rugeles y Camila Gallego",
	}
}

func strategicConfig() Config {
	return Config{
		Version:  configVersionV1,
		Variant:  VariantStrategic,
		Title:    "Dashboard Ventas Minorista",
		Locale:   "es_ES",
		Currency: "$",
		Palette:  append([]string(nil), defaultPalette...),
		Filters: FilterConfig{
			Country:   CountryFilterMulti,
			Category:  true,
			Segment:   true,
			DateRange: true,
		},
		Charts: []ChartConfig{
			{ID: ChartSalesByCategory},
			{ID: ChartSalesBySegment, Kind: string(KindPie)},
			{ID: ChartSalesByCountryTop10},
			{ID: ChartSalesByCountryMap},
			{ID: ChartMonthlySalesProfit},
			{ID: ChartSalesByShipMode, Kind: string(KindBar)},
		},
		Dataset: DatasetConfig{URL: DefaultDatasetURL},
	}
}

// ReadConfig loads a config file from disk.
func ReadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("dashboard: open config %s: %w", path, err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(data), nil)
	if err != nil {
		return Config{}, fmt.Errorf("dashboard: decode config %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// DecodeConfig validates a YAML document against the config schema and
// overlays it on the built-in variant it names.
func DecodeConfig(r io.Reader, validator ConfigValidator) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("dashboard: read config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("dashboard: parse config: %w", err)
	}
	if raw == nil {
		return Config{}, fmt.Errorf("dashboard: config is empty")
	}
	if validator == nil {
		validator = NewJSONSchemaValidator()
	}
	if err := validator.Validate(raw); err != nil {
		return Config{}, err
	}

	variant, _ := raw["variant"].(string)
	cfg, err := VariantConfig(variant)
	if err != nil {
		return Config{}, err
	}
	if _, ok := raw["charts"]; ok {
		cfg.Charts = nil
	}
	if _, ok := raw["palette"]; ok {
		cfg.Palette = nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("dashboard: parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules the schema cannot express.
func (c *Config) Validate() error {
	if c.Version != configVersionV1 {
		return fmt.Errorf("dashboard: unsupported config version %q", c.Version)
	}
	if _, err := sales.ParseEmptyPolicy(c.EmptySelection); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	switch c.Filters.Country {
	case CountryFilterNone, CountryFilterSingle, CountryFilterMulti:
	default:
		return fmt.Errorf("dashboard: unknown country filter mode %q", c.Filters.Country)
	}
	seen := make(map[string]struct{}, len(c.Charts))
	for idx, chart := range c.Charts {
		builder, ok := defaultCharts.Lookup(chart.ID)
		if !ok {
			return fmt.Errorf("dashboard: chart at index %d has unknown id %q", idx, chart.ID)
		}
		if _, dup := seen[chart.ID]; dup {
			return fmt.Errorf("dashboard: chart %s listed twice", chart.ID)
		}
		seen[chart.ID] = struct{}{}
		if chart.Kind != "" && !builder.allows(ChartKind(chart.Kind)) {
			return fmt.Errorf("dashboard: chart %s cannot be drawn as %q", chart.ID, chart.Kind)
		}
	}
	if _, err := dataset.ParseFormat(c.Dataset.Format); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// Policy returns the parsed empty-selection policy.
func (c Config) Policy() sales.EmptyPolicy {
	policy, err := sales.ParseEmptyPolicy(c.EmptySelection)
	if err != nil {
		return sales.MatchAll
	}
	return policy
}

// LoaderOptions turns the dataset section into loader options.
func (c Config) LoaderOptions() (dataset.Options, error) {
	var source dataset.Source
	switch {
	case c.Dataset.Path != "":
		source = dataset.FileSource{Path: c.Dataset.Path}
	case c.Dataset.URL != "":
		httpSource, err := dataset.NewHTTPSource(dataset.HTTPConfig{URL: c.Dataset.URL})
		if err != nil {
			return dataset.Options{}, err
		}
		source = httpSource
	default:
		return dataset.Options{}, fmt.Errorf("dashboard: dataset url or path is required")
	}
	format, err := dataset.ParseFormat(c.Dataset.Format)
	if err != nil {
		return dataset.Options{}, err
	}
	columns, err := dataset.DefaultColumns().Merge(c.Dataset.Columns)
	if err != nil {
		return dataset.Options{}, err
	}
	return dataset.Options{
		Source:      source,
		Format:      format,
		Sheet:       c.Dataset.Sheet,
		Columns:     columns,
		DateLayouts: c.Dataset.DateLayouts,
	}, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = configVersionV1
	}
	if c.Locale == "" {
		c.Locale = "es_ES"
	}
	if len(c.Palette) == 0 {
		c.Palette = append([]string(nil), defaultPalette...)
	}
	if c.Filters.Country == "" {
		c.Filters.Country = CountryFilterSingle
	}
}
