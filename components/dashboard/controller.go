package dashboard

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

var errMissingRenderer = errors.New("dashboard: template renderer not configured")

// ControllerOptions wires the collaborators of a Controller.
type ControllerOptions struct {
	Service  *Service
	Renderer Renderer
	Template string
}

// Controller adapts the service to transports: HTML pages and JSON payloads.
type Controller struct {
	service  *Service
	renderer Renderer
	template string
}

// NewController wires the service and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = PageTemplate
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
	}
}

// Service exposes the underlying service.
func (c *Controller) Service() *Service {
	return c.service
}

// RenderHTML renders the dashboard page for the selection into out.
func (c *Controller) RenderHTML(ctx context.Context, sessionID string, sel sales.Selection, out io.Writer) error {
	if c.service == nil {
		return errMissingSessions
	}
	if c.renderer == nil {
		return errMissingRenderer
	}
	page, err := c.service.Render(ctx, sessionID, sel)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, c.ViewData(page), out)
	return err
}

// Snapshot returns the JSON payload for the selection.
func (c *Controller) Snapshot(ctx context.Context, sessionID string, sel sales.Selection) (Snapshot, error) {
	if c.service == nil {
		return Snapshot{}, errMissingSessions
	}
	return c.service.Snapshot(ctx, sessionID, sel)
}

// Options returns picker values for the session.
func (c *Controller) Options(ctx context.Context, sessionID string) (FilterOptions, error) {
	if c.service == nil {
		return FilterOptions{}, errMissingSessions
	}
	return c.service.FilterOptions(ctx, sessionID)
}

// ViewData flattens a page into the template context.
func (c *Controller) ViewData(page Page) map[string]any {
	cfg := c.service.Config()
	locale := cfg.Locale
	snap := page.Snapshot

	kpis := make([]map[string]any, 0, len(snap.KPIs))
	for _, kpi := range snap.KPIs {
		kpis = append(kpis, map[string]any{"id": kpi.ID, "label": kpi.Label, "display": kpi.Display})
	}
	charts := make([]map[string]any, 0, len(page.Charts))
	for _, chart := range page.Charts {
		charts = append(charts, map[string]any{"id": chart.ID, "title": chart.Title, "kind": string(chart.Kind), "html": chart.HTML})
	}

	opts := page.Options
	countryAll := len(snap.Selection.Countries) == len(opts.Countries)
	filters := map[string]any{
		"country_mode": opts.CountryMode,
		"category":     opts.Category,
		"segment":      opts.Segment,
		"date_range":   opts.DateRange,
		"countries":    pickerOptions(opts.Countries, snap.Selection.Countries, opts.CountryMode == CountryFilterSingle && countryAll),
		"categories":   pickerOptions(opts.Categories, snap.Selection.Categories, false),
		"segments":     pickerOptions(opts.Segments, snap.Selection.Segments, false),
		"min_date":     formatDay(opts.MinDate),
		"max_date":     formatDay(opts.MaxDate),
		"from":         formatDay(snap.Selection.Range.Start),
		"to":           formatDay(snap.Selection.Range.End),
	}

	accent := defaultPalette[0]
	if len(cfg.Palette) > 0 {
		accent = cfg.Palette[0]
	}
	return map[string]any{
		"lang":       languageTag(locale).String(),
		"title":      snap.Title,
		"footer":     page.Footer,
		"accent":     accent,
		"session_id": snap.SessionID,
		"rows":       snap.Rows,
		"kpis":       kpis,
		"charts":     charts,
		"filters":    filters,
		"labels": map[string]string{
			"country":  Label("filter.country", locale),
			"category": Label("filter.category", locale),
			"segment":  Label("filter.segment", locale),
			"from":     Label("filter.from", locale),
			"to":       Label("filter.to", locale),
			"apply":    Label("filter.apply", locale),
			"all":      Label("filter.all", locale),
			"empty":    Label("filter.empty", locale),
		},
	}
}

func pickerOptions(values, selected []string, none bool) []map[string]any {
	chosen := make(map[string]struct{}, len(selected))
	if !none {
		for _, v := range selected {
			chosen[v] = struct{}{}
		}
	}
	out := make([]map[string]any, 0, len(values))
	for _, v := range values {
		_, ok := chosen[v]
		out = append(out, map[string]any{"value": v, "selected": ok})
	}
	return out
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(queryDateLayout)
}
