package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "380px"

// ChartRenderer turns a chart spec into embeddable HTML.
type ChartRenderer interface {
	Render(ctx context.Context, scope string, spec ChartSpec) (string, error)
}

// EChartsRenderer renders chart specs server side with go-echarts.
type EChartsRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// EChartsOption customizes renderer behavior.
type EChartsOption func(*EChartsRenderer)

// WithChartCache injects a render cache. Pass nil to disable caching.
func WithChartCache(cache RenderCache) EChartsOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsOption {
	return func(r *EChartsRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsOption {
	return func(r *EChartsRenderer) {
		if host = ensureTrailingSlash(strings.TrimSpace(host)); host != "" {
			r.assetsHost = host
		}
	}
}

// WithChartHeight overrides the chart container height.
func WithChartHeight(height string) EChartsOption {
	return func(r *EChartsRenderer) {
		if height != "" {
			r.height = height
		}
	}
}

// NewEChartsRenderer builds a renderer with a five minute chart cache.
func NewEChartsRenderer(options ...EChartsOption) *EChartsRenderer {
	r := &EChartsRenderer{
		cache:      NewChartCache(5 * time.Minute),
		theme:      types.ThemeWesteros,
		assetsHost: DefaultEChartsAssetsHost(),
		height:     defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// ChartCache exposes the render cache, nil when caching is disabled.
func (r *EChartsRenderer) ChartCache() RenderCache {
	return r.cache
}

// Render draws the spec, reusing cached markup for the same scope and spec.
func (r *EChartsRenderer) Render(ctx context.Context, scope string, spec ChartSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	renderFn := func() (string, error) {
		return r.render(spec)
	}
	if r.cache == nil {
		return renderFn()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", scope, spec.ID, r.theme, specHash(spec))
	return r.cache.GetOrRender(key, renderFn)
}

func (r *EChartsRenderer) render(spec ChartSpec) (string, error) {
	switch spec.Kind {
	case KindBar:
		return renderChart(r.barChart(spec, false))
	case KindHBar:
		return renderChart(r.barChart(spec, true))
	case KindPie:
		return renderChart(r.pieChart(spec, false))
	case KindDonut:
		return renderChart(r.pieChart(spec, true))
	case KindLine:
		return renderChart(r.lineChart(spec))
	case KindTreemap:
		return renderChart(r.treeMapChart(spec))
	case KindMap:
		return renderChart(r.mapChart(spec))
	default:
		return "", fmt.Errorf("dashboard: unsupported chart kind %q", spec.Kind)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("dashboard: render chart: %w", err)
	}
	return buf.String(), nil
}

func (r *EChartsRenderer) globalOptions(spec ChartSpec, trigger string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:   r.theme,
		Width:   "100%",
		Height:  r.height,
		ChartID: spec.ID,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(spec.Series) > 1), Top: "bottom"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

func (r *EChartsRenderer) barChart(spec ChartSpec, horizontal bool) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(spec, "axis")...)
	bar.SetXAxis(spec.Labels)
	perPoint := len(spec.Series) == 1
	for _, s := range spec.Series {
		data := make([]opts.BarData, len(s.Values))
		for i, value := range s.Values {
			data[i] = opts.BarData{Name: labelAt(spec.Labels, i), Value: value}
			if perPoint && i < len(spec.Colors) {
				data[i].ItemStyle = &opts.ItemStyle{Color: spec.Colors[i]}
			}
		}
		if perPoint {
			bar.AddSeries(s.Name, data)
			continue
		}
		bar.AddSeries(s.Name, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	if horizontal {
		bar.XYReversal()
	}
	return bar
}

func (r *EChartsRenderer) pieChart(spec ChartSpec, donut bool) *charts.Pie {
	pie := charts.NewPie()
	global := append(r.globalOptions(spec, "item"), charts.WithColorsOpts(opts.Colors(spec.Colors)))
	pie.SetGlobalOptions(global...)
	radius := []string{"0%", "70%"}
	if donut {
		radius = []string{"40%", "70%"}
	}
	for _, s := range spec.Series {
		data := make([]opts.PieData, len(s.Values))
		for i, value := range s.Values {
			data[i] = opts.PieData{Name: labelAt(spec.Labels, i), Value: value}
		}
		pie.AddSeries(s.Name, data).SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{Radius: radius}),
		)
	}
	return pie
}

func (r *EChartsRenderer) lineChart(spec ChartSpec) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOptions(spec, "axis")...)
	line.SetXAxis(spec.Labels)
	for _, s := range spec.Series {
		data := make([]opts.LineData, len(s.Values))
		for i, value := range s.Values {
			data[i] = opts.LineData{Name: labelAt(spec.Labels, i), Value: value}
		}
		line.AddSeries(s.Name, data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func (r *EChartsRenderer) treeMapChart(spec ChartSpec) *charts.TreeMap {
	tree := charts.NewTreeMap()
	global := append(r.globalOptions(spec, "item"), charts.WithColorsOpts(opts.Colors(spec.Colors)))
	tree.SetGlobalOptions(global...)
	for _, s := range spec.Series {
		tree.AddSeries(s.Name, treeMapNodes(spec.Labels, s.Values))
	}
	return tree
}

// treeMapNodes builds leaf nodes in whole units.
func treeMapNodes(labels []string, values []float64) []opts.TreeMapNode {
	nodes := make([]opts.TreeMapNode, len(values))
	for i, value := range values {
		nodes[i] = opts.TreeMapNode{Name: labelAt(labels, i), Value: int(math.RoundToEven(value))}
	}
	return nodes
}

func (r *EChartsRenderer) mapChart(spec ChartSpec) *charts.Map {
	world := charts.NewMap()
	world.RegisterMapType("world")
	var maxValue float64
	for _, s := range spec.Series {
		for _, value := range s.Values {
			if value > maxValue {
				maxValue = value
			}
		}
	}
	global := append(r.globalOptions(spec, "item"), charts.WithVisualMapOpts(opts.VisualMap{
		Calculable: opts.Bool(true),
		Min:        0,
		Max:        float32(maxValue),
		InRange:    &opts.VisualMapInRange{Color: []string{"#FFFFFF", spec.colorOr(0, "#D94F6D")}},
	}))
	world.SetGlobalOptions(global...)
	for _, s := range spec.Series {
		data := make([]opts.MapData, len(s.Values))
		for i, value := range s.Values {
			data[i] = opts.MapData{Name: labelAt(spec.Labels, i), Value: value}
		}
		world.AddSeries(s.Name, data)
	}
	return world
}

func (s ChartSpec) colorOr(idx int, fallback string) string {
	if idx < len(s.Colors) && s.Colors[idx] != "" {
		return s.Colors[idx]
	}
	return fallback
}

func labelAt(labels []string, idx int) string {
	if idx < len(labels) {
		return labels[idx]
	}
	return ""
}
