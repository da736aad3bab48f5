package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/gorouter"
	salesdash "github.com/goliatone/go-sales-dashboard/pkg/dashboard"
)

type cli struct {
	Config     string `type:"path" env:"SALES_DASHBOARD_CONFIG" help:"Dashboard config YAML (overrides --variant)."`
	Variant    string `default:"retail" enum:"retail,strategic" help:"Built-in dashboard variant."`
	Dataset    string `env:"SALES_DASHBOARD_DATASET" help:"Dataset URL or local path overriding the config."`
	AssetsHost string `help:"Host serving the ECharts scripts (default SALES_DASHBOARD_ASSETS_HOST)."`
	LogLevel   string `default:"info" enum:"debug,info,warn,error" help:"Log level."`
	LogFormat  string `default:"text" enum:"text,json" help:"Log format."`

	Serve    serveCmd    `cmd:"" help:"Serve the dashboard over HTTP."`
	Summary  summaryCmd  `cmd:"" help:"Print KPIs and grouped totals for a selection."`
	Render   renderCmd   `cmd:"" help:"Write the dashboard page to a static HTML file."`
	Variants variantsCmd `cmd:"" help:"List the built-in dashboard variants."`

	stdout io.Writer
}

type selectionFlags struct {
	Country  []string `help:"Countries to include (repeat or comma separate; 'Todos' for all)."`
	Category []string `help:"Categories to include."`
	Segment  []string `help:"Segments to include."`
	From     string   `help:"First order date, YYYY-MM-DD."`
	To       string   `help:"Last order date, YYYY-MM-DD."`
	Session  string   `help:"Session id (defaults to the shared session)."`
}

type serveCmd struct {
	Addr         string        `default:":8080" env:"SALES_DASHBOARD_ADDR" help:"Listen address."`
	BasePath     string        `default:"" help:"Prefix for every dashboard route."`
	NoWarm       bool          `name:"no-warm" help:"Skip loading the dataset before serving."`
	RestartEvery time.Duration `default:"30s" help:"Minimum interval between session restarts (0 disables the limit)."`
}

type summaryCmd struct {
	selectionFlags
	Format string `default:"text" enum:"text,json" help:"Output format."`
}

type renderCmd struct {
	selectionFlags
	Out string `required:"" type:"path" help:"Destination HTML file."`
}

type variantsCmd struct {
	Show string `help:"Print the full YAML config of one variant."`
}

func main() {
	app := &cli{stdout: os.Stdout}
	ctx := kong.Parse(app,
		kong.Name("salesctl"),
		kong.Description("Retail sales dashboard: serve, summarize and render."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	err := ctx.Run(app)
	ctx.FatalIfErrorf(err)
}

func (c *cli) build(withTemplates bool, restartLimit *rate.Limiter) (*salesdash.Dashboard, *slog.Logger, error) {
	logger := dashboard.NewLogger(c.LogLevel, c.LogFormat, os.Stderr)
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dash, err := salesdash.New(cfg, salesdash.BuildOptions{
		Logger:       logger,
		Templates:    withTemplates,
		Charts:       []dashboard.EChartsOption{dashboard.WithChartAssetsHost(c.AssetsHost)},
		RestartLimit: restartLimit,
	})
	if err != nil {
		return nil, nil, err
	}
	return dash, logger, nil
}

func (c *cli) loadConfig() (dashboard.Config, error) {
	var (
		cfg dashboard.Config
		err error
	)
	if c.Config != "" {
		cfg, err = dashboard.ReadConfig(c.Config)
	} else {
		cfg, err = dashboard.VariantConfig(c.Variant)
	}
	if err != nil {
		return dashboard.Config{}, err
	}
	if source := strings.TrimSpace(c.Dataset); source != "" {
		if strings.Contains(source, "://") {
			cfg.Dataset.URL, cfg.Dataset.Path = source, ""
		} else {
			cfg.Dataset.Path = source
		}
	}
	return cfg, nil
}

func (s selectionFlags) lookup() dashboard.QueryLookup {
	values := map[string]string{}
	if len(s.Country) > 0 {
		values[dashboard.QueryCountry] = strings.Join(s.Country, ",")
	}
	if len(s.Category) > 0 {
		values[dashboard.QueryCategory] = strings.Join(s.Category, ",")
	}
	if len(s.Segment) > 0 {
		values[dashboard.QuerySegment] = strings.Join(s.Segment, ",")
	}
	if s.From != "" {
		values[dashboard.QueryFrom] = s.From
	}
	if s.To != "" {
		values[dashboard.QueryTo] = s.To
	}
	return dashboard.MapLookup(values)
}

func (cmd *serveCmd) Run(ctx context.Context, app *cli) error {
	var limiter *rate.Limiter
	if cmd.RestartEvery > 0 {
		limiter = rate.NewLimiter(rate.Every(cmd.RestartEvery), 1)
	}
	dash, logger, err := app.build(true, limiter)
	if err != nil {
		return err
	}
	if !cmd.NoWarm {
		if err := dash.Commands.Warm(ctx, commands.WarmSessionInput{}); err != nil {
			return fmt.Errorf("salesctl: load dataset: %w", err)
		}
	}
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: dash.Controller,
		API:        dash.Commands,
		BasePath:   cmd.BasePath,
	}); err != nil {
		return fmt.Errorf("salesctl: register routes: %w", err)
	}
	logger.Info("dashboard ready",
		slog.String("addr", cmd.Addr),
		slog.String("variant", dash.Config.Variant),
		slog.String("page", strings.TrimRight(cmd.BasePath, "/")+"/sales"),
	)
	return server.Serve(cmd.Addr)
}

func (cmd *summaryCmd) Run(ctx context.Context, app *cli) error {
	sel, err := dashboard.ParseSelection(cmd.lookup())
	if err != nil {
		return err
	}
	dash, _, err := app.build(false, nil)
	if err != nil {
		return err
	}
	snap, err := dash.Controller.Snapshot(ctx, cmd.Session, sel)
	if err != nil {
		return err
	}
	if cmd.Format == "json" {
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return writeSummary(app.stdout, snap)
}

func writeSummary(w io.Writer, snap dashboard.Snapshot) error {
	fmt.Fprintf(w, "%s\n", snap.Title)
	fmt.Fprintf(w, "rows: %d of %d\n\n", snap.Rows, snap.TotalRows)
	for _, kpi := range snap.KPIs {
		fmt.Fprintf(w, "%-20s %s\n", kpi.Label, kpi.Display)
	}
	for _, chart := range snap.Charts {
		fmt.Fprintf(w, "\n%s\n", chart.Title)
		for i, label := range chart.Labels {
			cells := make([]string, 0, len(chart.Series))
			for _, series := range chart.Series {
				cells = append(cells, fmt.Sprintf("%s %s", series.Name, series.Display[i]))
			}
			fmt.Fprintf(w, "  %-28s %s\n", label, strings.Join(cells, "  "))
		}
	}
	return nil
}

func (cmd *renderCmd) Run(ctx context.Context, app *cli) error {
	sel, err := dashboard.ParseSelection(cmd.lookup())
	if err != nil {
		return err
	}
	dash, _, err := app.build(true, nil)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(cmd.Out)
	if err != nil {
		return fmt.Errorf("salesctl: resolve output path: %w", err)
	}
	f, err := os.Create(out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("salesctl: create %s: %w", out, err)
	}
	if err := dash.Controller.RenderHTML(ctx, cmd.Session, sel, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "wrote %s\n", out)
	return nil
}

func (cmd *variantsCmd) Run(app *cli) error {
	if cmd.Show != "" {
		cfg, err := dashboard.VariantConfig(cmd.Show)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(app.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	for _, name := range dashboard.Variants() {
		cfg, err := dashboard.VariantConfig(name)
		if err != nil {
			return err
		}
		ids := make([]string, len(cfg.Charts))
		for i, chart := range cfg.Charts {
			ids[i] = chart.ID
		}
		fmt.Fprintf(app.stdout, "%-10s %s\n           charts: %s\n", name, cfg.Title, strings.Join(ids, ", "))
	}
	return nil
}
