package dashboard

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// ChartKind names a visual form.
type ChartKind string

const (
	KindBar     ChartKind = "bar"
	KindHBar    ChartKind = "hbar"
	KindPie     ChartKind = "pie"
	KindDonut   ChartKind = "donut"
	KindLine    ChartKind = "line"
	KindTreemap ChartKind = "treemap"
	KindMap     ChartKind = "map"
)

// Chart identifiers accepted in configs.
const (
	ChartSalesByCategory     = "sales_by_category"
	ChartSalesBySubcategory  = "sales_by_subcategory"
	ChartSalesBySegment      = "sales_by_segment"
	ChartSalesByShipMode     = "sales_by_ship_mode"
	ChartSalesByCountryTop10 = "sales_by_country_top10"
	ChartSalesByCountryMap   = "sales_by_country_map"
	ChartMonthlySalesProfit  = "monthly_sales_profit"
)

// ChartSpec is a chart-ready view of one aggregation result.
type ChartSpec struct {
	ID     string       `json:"id"`
	Kind   ChartKind    `json:"kind"`
	Title  string       `json:"title"`
	Labels []string     `json:"labels"`
	Series []SeriesSpec `json:"series"`
	Colors []string     `json:"colors"`
}

// SeriesSpec holds one measure across the chart labels.
type SeriesSpec struct {
	Name    string    `json:"name"`
	Values  []float64 `json:"values"`
	Display []string  `json:"display"`
	Color   string    `json:"color"`
}

// KPICard is a formatted headline figure.
type KPICard struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// Presenter shapes aggregation results for display. It never changes totals.
type Presenter struct {
	locale   string
	currency string
	palette  []string
	aliases  map[string]string
}

// NewPresenter builds a presenter from the labelling part of a config.
func NewPresenter(cfg Config) *Presenter {
	palette := cfg.Palette
	if len(palette) == 0 {
		palette = defaultPalette
	}
	return &Presenter{
		locale:   cfg.Locale,
		currency: cfg.Currency,
		palette:  append([]string(nil), palette...),
		aliases:  cfg.CountryAliases,
	}
}

// Locale reports the presenter locale.
func (p *Presenter) Locale() string {
	return p.locale
}

// Groups turns grouped totals into a chart. withProfit adds a second series.
func (p *Presenter) Groups(id, title string, kind ChartKind, groups []sales.GroupTotal, withProfit bool) ChartSpec {
	labels := make([]string, len(groups))
	salesSeries := p.newSeries(Label("series.sales", p.locale), len(groups), 0)
	var profitSeries SeriesSpec
	if withProfit {
		profitSeries = p.newSeries(Label("series.profit", p.locale), len(groups), 1)
	}
	for i, group := range groups {
		labels[i] = group.Key
		if kind == KindMap {
			labels[i] = p.mapName(group.Key)
		}
		p.fill(&salesSeries, i, group.Sales)
		if withProfit {
			p.fill(&profitSeries, i, group.Profit)
		}
	}
	series := []SeriesSpec{salesSeries}
	if withProfit {
		series = append(series, profitSeries)
	}
	return ChartSpec{
		ID:     id,
		Kind:   kind,
		Title:  title,
		Labels: labels,
		Series: series,
		Colors: p.colors(len(labels)),
	}
}

// Months turns monthly totals into a sales and profit line chart.
func (p *Presenter) Months(id, title string, months []sales.MonthTotal) ChartSpec {
	labels := make([]string, len(months))
	salesSeries := p.newSeries(Label("series.sales", p.locale), len(months), 2)
	profitSeries := p.newSeries(Label("series.profit", p.locale), len(months), 0)
	for i, month := range months {
		labels[i] = MonthLabel(month.Month, p.locale)
		p.fill(&salesSeries, i, month.Sales)
		p.fill(&profitSeries, i, month.Profit)
	}
	return ChartSpec{
		ID:     id,
		Kind:   KindLine,
		Title:  title,
		Labels: labels,
		Series: []SeriesSpec{salesSeries, profitSeries},
		Colors: []string{salesSeries.Color, profitSeries.Color},
	}
}

// KPIs formats the headline figures.
func (p *Presenter) KPIs(kpis sales.KPIs) []KPICard {
	customers := int64(kpis.Customers)
	return []KPICard{
		{ID: "total_sales", Label: Label("kpi.sales", p.locale), Value: kpis.TotalSales.InexactFloat64(), Display: p.Money(kpis.TotalSales)},
		{ID: "total_profit", Label: Label("kpi.profit", p.locale), Value: kpis.TotalProfit.InexactFloat64(), Display: p.Money(kpis.TotalProfit)},
		{ID: "customers", Label: Label("kpi.customers", p.locale), Value: float64(customers), Display: humanize.Comma(customers)},
	}
}

// Money renders an amount in whole units with thousands separators and the
// currency prefix. Halves round to even.
func (p *Presenter) Money(amount decimal.Decimal) string {
	whole := amount.RoundBank(0).IntPart()
	sign := ""
	if whole < 0 {
		sign = "-"
		whole = -whole
	}
	return sign + p.currency + humanize.Comma(whole)
}

func (p *Presenter) newSeries(name string, size, colorIdx int) SeriesSpec {
	return SeriesSpec{
		Name:    name,
		Values:  make([]float64, size),
		Display: make([]string, size),
		Color:   p.color(colorIdx),
	}
}

func (p *Presenter) fill(series *SeriesSpec, idx int, amount decimal.Decimal) {
	series.Values[idx] = amount.InexactFloat64()
	series.Display[idx] = p.Money(amount)
}

func (p *Presenter) colors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = p.color(i)
	}
	return out
}

func (p *Presenter) color(idx int) string {
	return p.palette[idx%len(p.palette)]
}

func (p *Presenter) mapName(country string) string {
	if alias, ok := p.aliases[country]; ok && alias != "" {
		return alias
	}
	if alias, ok := worldMapNames[strings.ToLower(country)]; ok {
		return alias
	}
	return country
}

// worldMapNames maps Spanish country names in the dataset to the English
// names used by the echarts world map.
var worldMapNames = map[string]string{
	"alemania":       "Germany",
	"argentina":      "Argentina",
	"australia":      "Australia",
	"brasil":         "Brazil",
	"canadá":         "Canada",
	"chile":          "Chile",
	"china":          "China",
	"colombia":       "Colombia",
	"españa":         "Spain",
	"estados unidos": "United States",
	"filipinas":      "Philippines",
	"francia":        "France",
	"india":          "India",
	"indonesia":      "Indonesia",
	"italia":         "Italy",
	"japón":          "Japan",
	"méxico":         "Mexico",
	"nigeria":        "Nigeria",
	"países bajos":   "Netherlands",
	"perú":           "Peru",
	"reino unido":    "United Kingdom",
	"rusia":          "Russia",
	"sudáfrica":      "South Africa",
	"turquía":        "Turkey",
}
