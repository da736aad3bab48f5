package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

var (
	errMissingSessions = errors.New("dashboard: session manager not configured")

	// ErrInvalidSelection reports a selection the active config cannot honour.
	ErrInvalidSelection = errors.New("dashboard: invalid selection")
)

// Options configures the dashboard Service. Collaborators are interfaces or
// injected values so shells can swap implementations.
type Options struct {
	Sessions  *dataset.SessionManager
	Config    Config
	Presenter *Presenter
	Charts    ChartRenderer
	Telemetry Telemetry
	Clock     func() time.Time
}

// Service runs the filter, aggregate and present pipeline for a session.
type Service struct {
	opts   Options
	policy sales.EmptyPolicy
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Config.Version == "" {
		opts.Config, _ = VariantConfig(VariantRetail)
	}
	if opts.Presenter == nil {
		opts.Presenter = NewPresenter(opts.Config)
	}
	if opts.Charts == nil {
		opts.Charts = NewEChartsRenderer(WithChartTheme(opts.Config.Theme))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts, policy: opts.Config.Policy()}
}

// Config returns the active dashboard config.
func (s *Service) Config() Config {
	return s.opts.Config
}

// Warm loads the session table, blocking until the fetch completes.
func (s *Service) Warm(ctx context.Context, sessionID string) (*dataset.Session, error) {
	session, table, err := s.table(ctx, sessionID)
	if err != nil {
		return session, err
	}
	s.recordTelemetry(ctx, "dashboard.session.warm", map[string]any{
		"session_id": session.ID,
		"rows":       table.Len(),
	})
	return session, nil
}

// Restart drops the cached table and rendered charts of a session.
func (s *Service) Restart(ctx context.Context, sessionID string) (*dataset.Session, error) {
	if s.opts.Sessions == nil {
		return nil, errMissingSessions
	}
	previous := sessionID
	if previous == "" {
		previous = s.opts.Sessions.Default().ID
	}
	session, err := s.opts.Sessions.Restart(previous)
	if err != nil {
		return nil, err
	}
	purged := 0
	if cached, ok := s.opts.Charts.(interface{ ChartCache() RenderCache }); ok && cached.ChartCache() != nil {
		purged = cached.ChartCache().Purge(previous + ":")
	}
	s.recordTelemetry(ctx, "dashboard.session.restart", map[string]any{
		"previous_id":   previous,
		"session_id":    session.ID,
		"purged_charts": purged,
	})
	return session, nil
}

// FilterOptions returns picker values and the default selection.
func (s *Service) FilterOptions(ctx context.Context, sessionID string) (FilterOptions, error) {
	session, table, err := s.table(ctx, sessionID)
	if err != nil {
		return FilterOptions{}, err
	}
	return s.filterOptions(session.ID, table), nil
}

// Snapshot filters the session table, runs every enabled aggregation and
// shapes the results.
func (s *Service) Snapshot(ctx context.Context, sessionID string, sel sales.Selection) (Snapshot, error) {
	started := s.opts.Clock()
	session, table, err := s.table(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	sel, err = s.resolveSelection(table, sel)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.snapshot", map[string]any{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return Snapshot{}, err
	}
	filtered := sales.Filter(table, sel, s.policy)
	metrics := sales.ComputeKPIs(filtered)

	charts := make([]ChartSpec, 0, len(s.opts.Config.Charts))
	for _, chart := range s.opts.Config.Charts {
		spec, ok := BuildChart(s.opts.Presenter, filtered, chart)
		if !ok {
			continue
		}
		charts = append(charts, spec)
	}

	snap := Snapshot{
		SessionID:   session.ID,
		Variant:     s.opts.Config.Variant,
		Title:       s.opts.Config.Title,
		Selection:   sel,
		Rows:        filtered.Len(),
		TotalRows:   table.Len(),
		Metrics:     metrics,
		KPIs:        s.opts.Presenter.KPIs(metrics),
		Charts:      charts,
		GeneratedAt: s.opts.Clock().UTC(),
	}
	s.recordTelemetry(ctx, "dashboard.snapshot", map[string]any{
		"session_id": session.ID,
		"rows":       snap.Rows,
		"total_rows": snap.TotalRows,
		"charts":     len(charts),
		"elapsed_ms": s.opts.Clock().Sub(started).Milliseconds(),
	})
	return snap, nil
}

// Render builds the snapshot and draws every chart.
func (s *Service) Render(ctx context.Context, sessionID string, sel sales.Selection) (Page, error) {
	snap, err := s.Snapshot(ctx, sessionID, sel)
	if err != nil {
		return Page{}, err
	}
	options, err := s.FilterOptions(ctx, snap.SessionID)
	if err != nil {
		return Page{}, err
	}
	rendered := make([]RenderedChart, len(snap.Charts))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, spec := range snap.Charts {
		group.Go(func() error {
			html, err := s.opts.Charts.Render(groupCtx, snap.SessionID, spec)
			if err != nil {
				return fmt.Errorf("dashboard: chart %s: %w", spec.ID, err)
			}
			rendered[i] = RenderedChart{ChartSpec: spec, HTML: html}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Page{}, err
	}
	return Page{
		Snapshot: snap,
		Options:  options,
		Charts:   rendered,
		Footer:   s.opts.Config.Footer,
	}, nil
}

func (s *Service) table(ctx context.Context, sessionID string) (*dataset.Session, *sales.Table, error) {
	if s.opts.Sessions == nil {
		return nil, nil, errMissingSessions
	}
	session, err := s.opts.Sessions.Resolve(sessionID)
	if err != nil {
		return nil, nil, err
	}
	table, err := session.Table(ctx)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.session.load", map[string]any{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return session, nil, err
	}
	return session, table, nil
}

func (s *Service) filterOptions(sessionID string, table *sales.Table) FilterOptions {
	filters := s.opts.Config.Filters
	options := FilterOptions{
		SessionID:   sessionID,
		CountryMode: filters.Country,
		Category:    filters.Category,
		Segment:     filters.Segment,
		DateRange:   filters.DateRange,
		Countries:   table.Distinct(sales.DimensionCountry),
		Categories:  table.Distinct(sales.DimensionCategory),
		Segments:    table.Distinct(sales.DimensionSegment),
		Default:     sales.DefaultSelection(table),
	}
	if start, end, ok := table.DateBounds(); ok {
		options.MinDate, options.MaxDate = start, end
	}
	return options
}

// resolveSelection applies the config to a requested selection. Disabled
// filters and omitted (nil) sets select every value; an explicitly empty set
// is left for the empty-selection policy.
func (s *Service) resolveSelection(table *sales.Table, sel sales.Selection) (sales.Selection, error) {
	filters := s.opts.Config.Filters
	out := sales.Selection{
		Countries:  sel.Countries,
		Categories: sel.Categories,
		Segments:   sel.Segments,
		Range:      sel.Range,
	}
	switch filters.Country {
	case CountryFilterNone:
		out.Countries = nil
	case CountryFilterSingle:
		if len(out.Countries) > 1 {
			return sales.Selection{}, fmt.Errorf("%w: only one country may be selected", ErrInvalidSelection)
		}
	}
	if !filters.Category {
		out.Categories = nil
	}
	if !filters.Segment {
		out.Segments = nil
	}
	if !filters.DateRange {
		out.Range = sales.DateRange{}
	}

	if out.Countries == nil {
		out.Countries = table.Distinct(sales.DimensionCountry)
	}
	if out.Categories == nil {
		out.Categories = table.Distinct(sales.DimensionCategory)
	}
	if out.Segments == nil {
		out.Segments = table.Distinct(sales.DimensionSegment)
	}
	return out, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
