package dashboard

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	core "github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Config re-export for convenience.
type Config = core.Config

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Dashboard bundles a fully wired service with its controller and commands.
type Dashboard struct {
	Config     Config
	Sessions   *dataset.SessionManager
	Service    *Service
	Controller *core.Controller
	Commands   *httpapi.CommandExecutor
}

// BuildOptions tunes New.
type BuildOptions struct {
	Logger       *slog.Logger
	Templates    bool // enables the HTML page renderer
	Charts       []core.EChartsOption
	RestartLimit *rate.Limiter // nil allows every restart
}

// New wires loader, sessions, service, controller and commands from a config.
func New(cfg Config, opts BuildOptions) (*Dashboard, error) {
	loaderOpts, err := cfg.LoaderOptions()
	if err != nil {
		return nil, err
	}
	loader, err := dataset.NewLoader(loaderOpts)
	if err != nil {
		return nil, err
	}
	var telemetry core.Telemetry
	if opts.Logger != nil {
		telemetry = core.NewLogTelemetry(opts.Logger)
	}
	sessions := dataset.NewSessionManager(loader)
	chartOpts := append([]core.EChartsOption{core.WithChartTheme(cfg.Theme)}, opts.Charts...)
	service := core.NewService(Options{
		Sessions:  sessions,
		Config:    cfg,
		Telemetry: telemetry,
		Charts:    core.NewEChartsRenderer(chartOpts...),
	})
	var renderer core.Renderer
	if opts.Templates {
		if renderer, err = core.NewTemplateRenderer(); err != nil {
			return nil, fmt.Errorf("dashboard: templates: %w", err)
		}
	}
	return &Dashboard{
		Config:     service.Config(),
		Sessions:   sessions,
		Service:    service,
		Controller: core.NewController(core.ControllerOptions{Service: service, Renderer: renderer}),
		Commands: &httpapi.CommandExecutor{
			WarmCommander:    commands.NewWarmSessionCommand(service, telemetry),
			RestartCommander: commands.NewRestartSessionCommand(service, telemetry).WithLimiter(opts.RestartLimit),
		},
	}, nil
}
