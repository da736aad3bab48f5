package dashboard

import (
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

func groupChart(agg func(*sales.Table) []sales.GroupTotal, withProfit bool, kinds ...ChartKind) ChartBuilder {
	return ChartBuilder{
		Kinds: kinds,
		Build: func(p *Presenter, table *sales.Table, id, title string, kind ChartKind) ChartSpec {
			return p.Groups(id, title, kind, agg(table), withProfit)
		},
	}
}

var builtinCharts = map[string]ChartBuilder{
	ChartSalesByCategory:     groupChart(sales.ByCategory, false, KindBar, KindHBar, KindPie, KindDonut, KindTreemap),
	ChartSalesBySubcategory:  groupChart(sales.BySubcategory, true, KindHBar, KindBar),
	ChartSalesBySegment:      groupChart(sales.BySegment, false, KindDonut, KindPie, KindBar),
	ChartSalesByShipMode:     groupChart(sales.ByShipMode, false, KindTreemap, KindBar, KindPie, KindDonut),
	ChartSalesByCountryTop10: groupChart(sales.ByCountryTop10, false, KindBar, KindHBar),
	ChartSalesByCountryMap:   groupChart(sales.ByCountry, false, KindMap),
	ChartMonthlySalesProfit: {
		Kinds: []ChartKind{KindLine},
		Build: func(p *Presenter, table *sales.Table, id, title string, _ ChartKind) ChartSpec {
			return p.Months(id, title, sales.ByMonth(table))
		},
	},
}

var builtinChartOrder = []string{
	ChartSalesByCategory,
	ChartSalesBySubcategory,
	ChartSalesBySegment,
	ChartSalesByShipMode,
	ChartSalesByCountryTop10,
	ChartSalesByCountryMap,
	ChartMonthlySalesProfit,
}

// BuildChart runs the aggregation behind a chart and shapes the result.
func BuildChart(p *Presenter, table *sales.Table, chart ChartConfig) (ChartSpec, bool) {
	builder, ok := defaultCharts.Lookup(chart.ID)
	if !ok {
		return ChartSpec{}, false
	}
	kind := builder.defaultKind()
	if chart.Kind != "" && builder.allows(ChartKind(chart.Kind)) {
		kind = ChartKind(chart.Kind)
	}
	title := chart.Title
	if title == "" {
		title = Label("chart."+chart.ID, p.Locale())
	}
	return builder.Build(p, table, chart.ID, title, kind), true
}
