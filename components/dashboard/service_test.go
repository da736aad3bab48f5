package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

func newTestService(t *testing.T, variant string, mutate ...func(*Config)) (*Service, *recordingTelemetry) {
	t.Helper()
	cfg, err := VariantConfig(variant)
	require.NoError(t, err)
	for _, fn := range mutate {
		fn(&cfg)
	}
	telemetry := &recordingTelemetry{}
	svc := NewService(Options{
		Sessions:  fixtureSessions(),
		Config:    cfg,
		Charts:    &stubChartRenderer{},
		Telemetry: telemetry,
		Clock:     func() time.Time { return day(2024, time.March, 1) },
	})
	return svc, telemetry
}

func chartIDs(specs []ChartSpec) []string {
	ids := make([]string, len(specs))
	for i, spec := range specs {
		ids[i] = spec.ID
	}
	return ids
}

func TestServiceSnapshotDefaultSelection(t *testing.T) {
	svc, telemetry := newTestService(t, VariantRetail)

	snap, err := svc.Snapshot(context.Background(), "", sales.Selection{})
	require.NoError(t, err)

	assert.NotEmpty(t, snap.SessionID)
	assert.Equal(t, 4, snap.Rows)
	assert.Equal(t, 4, snap.TotalRows)
	assert.Equal(t, "1584.56", snap.Metrics.TotalSales.String())
	assert.Equal(t, 3, snap.Metrics.Customers)
	assert.Equal(t, []string{
		ChartSalesByCategory,
		ChartSalesBySubcategory,
		ChartSalesBySegment,
		ChartMonthlySalesProfit,
		ChartSalesByShipMode,
	}, chartIDs(snap.Charts))
	assert.Equal(t, KindDonut, snap.Charts[2].Kind)
	assert.Equal(t, KindTreemap, snap.Charts[4].Kind)
	assert.Equal(t, "Ventas por Categoría", snap.Charts[0].Title)
	assert.Equal(t, []string{"Alemania", "Francia", "México"}, snap.Selection.Countries)

	event, ok := telemetry.find("dashboard.snapshot")
	require.True(t, ok)
	assert.Equal(t, 4, event.payload["rows"])
}

func TestServiceSnapshotSingleCountry(t *testing.T) {
	svc, _ := newTestService(t, VariantRetail)

	snap, err := svc.Snapshot(context.Background(), "", sales.Selection{
		Countries:  []string{"México"},
		Categories: []string{"Muebles"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Rows, "category filter is disabled in the retail variant")
	assert.Equal(t, "150", snap.Metrics.TotalSales.String())
	assert.Equal(t, []string{"Tecnología", "Muebles"}, snap.Charts[0].Labels)
}

func TestServiceSnapshotRejectsSeveralCountriesInSingleMode(t *testing.T) {
	svc, telemetry := newTestService(t, VariantRetail)

	_, err := svc.Snapshot(context.Background(), "", sales.Selection{Countries: []string{"México", "Francia"}})

	require.ErrorIs(t, err, ErrInvalidSelection)
	event, ok := telemetry.find("dashboard.snapshot")
	require.True(t, ok)
	assert.Contains(t, event.payload, "error")
}

func TestServiceSnapshotStrategicFilters(t *testing.T) {
	svc, _ := newTestService(t, VariantStrategic)

	snap, err := svc.Snapshot(context.Background(), "", sales.Selection{
		Countries:  []string{"México", "Francia"},
		Categories: []string{"Tecnología"},
		Range:      sales.DateRange{Start: day(2024, time.January, 1), End: day(2024, time.January, 31)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, snap.Rows)
	assert.Equal(t, "300", snap.Metrics.TotalSales.String())
	assert.Equal(t, 1, snap.Metrics.Customers)
	assert.Contains(t, chartIDs(snap.Charts), ChartSalesByCountryMap)
}

func TestServiceSnapshotEmptyResult(t *testing.T) {
	svc, _ := newTestService(t, VariantStrategic)

	snap, err := svc.Snapshot(context.Background(), "", sales.Selection{
		Range: sales.DateRange{Start: day(2025, time.June, 1), End: day(2025, time.January, 1)},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, snap.Rows)
	assert.True(t, snap.Metrics.TotalSales.IsZero())
	assert.Equal(t, "$0", snap.KPIs[0].Display)
	for _, chart := range snap.Charts {
		if chart.ID == ChartMonthlySalesProfit {
			assert.Len(t, chart.Labels, 12)
			continue
		}
		assert.Empty(t, chart.Labels, chart.ID)
	}
}

func TestServiceEmptySetPolicy(t *testing.T) {
	svc, _ := newTestService(t, VariantStrategic, func(cfg *Config) {
		cfg.EmptySelection = string(sales.MatchNone)
	})

	snap, err := svc.Snapshot(context.Background(), "", sales.Selection{Segments: []string{}})
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Rows, "an explicitly empty set matches nothing")

	snap, err = svc.Snapshot(context.Background(), "", sales.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Rows, "omitted sets select every value")
}

func TestServiceReportsDataUnavailable(t *testing.T) {
	telemetry := &recordingTelemetry{}
	sessions := dataset.NewSessionManager(dataset.TableLoaderFunc(func(context.Context) (*sales.Table, error) {
		return nil, fmt.Errorf("%w: remote error 404", sales.ErrDataUnavailable)
	}))
	svc := NewService(Options{Sessions: sessions, Telemetry: telemetry, Charts: &stubChartRenderer{}})

	_, err := svc.Snapshot(context.Background(), "", sales.Selection{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sales.ErrDataUnavailable))

	_, err = svc.FilterOptions(context.Background(), "")
	require.ErrorIs(t, err, sales.ErrDataUnavailable)

	_, ok := telemetry.find("dashboard.session.load")
	assert.True(t, ok)
}

func TestServiceWithoutSessions(t *testing.T) {
	svc := NewService(Options{})

	_, err := svc.Snapshot(context.Background(), "", sales.Selection{})
	require.ErrorIs(t, err, errMissingSessions)
	_, err = svc.Restart(context.Background(), "")
	require.ErrorIs(t, err, errMissingSessions)
}

func TestServiceUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, VariantRetail)

	_, err := svc.Snapshot(context.Background(), "missing", sales.Selection{})

	require.ErrorIs(t, err, dataset.ErrSessionNotFound)
}

func TestServiceFilterOptions(t *testing.T) {
	svc, _ := newTestService(t, VariantStrategic)

	options, err := svc.FilterOptions(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, CountryFilterMulti, options.CountryMode)
	assert.True(t, options.DateRange)
	assert.Equal(t, []string{"Alemania", "Francia", "México"}, options.Countries)
	assert.Equal(t, []string{"Consumidor", "Corporativo", "Oficina en casa"}, options.Segments)
	assert.Equal(t, day(2023, time.December, 1), options.MinDate)
	assert.Equal(t, day(2024, time.February, 10), options.MaxDate)
	assert.Equal(t, options.Countries, options.Default.Countries)
}

func TestServiceRenderDrawsCharts(t *testing.T) {
	cfg, _ := VariantConfig(VariantRetail)
	cfg.Footer = "Hecho con datos abiertos"
	charts := &stubChartRenderer{}
	svc := NewService(Options{Sessions: fixtureSessions(), Config: cfg, Charts: charts})

	page, err := svc.Render(context.Background(), "", sales.Selection{})
	require.NoError(t, err)

	require.Len(t, page.Charts, 5)
	assert.Equal(t, int32(5), charts.calls.Load())
	assert.Contains(t, page.Charts[0].HTML, page.Snapshot.SessionID)
	assert.Equal(t, "Hecho con datos abiertos", page.Footer)
	assert.Equal(t, page.Snapshot.SessionID, page.Options.SessionID)
}

func TestServiceWarmAndRestart(t *testing.T) {
	cache := NewChartCache(time.Minute)
	cfg, _ := VariantConfig(VariantRetail)
	telemetry := &recordingTelemetry{}
	svc := NewService(Options{
		Sessions:  fixtureSessions(),
		Config:    cfg,
		Charts:    NewEChartsRenderer(WithChartCache(cache)),
		Telemetry: telemetry,
	})

	warmed, err := svc.Warm(context.Background(), "")
	require.NoError(t, err)
	_, err = svc.Render(context.Background(), warmed.ID, sales.Selection{})
	require.NoError(t, err)
	require.Equal(t, 5, cache.Len())

	restarted, err := svc.Restart(context.Background(), "")
	require.NoError(t, err)

	assert.NotEqual(t, warmed.ID, restarted.ID)
	assert.Equal(t, 0, cache.Len())
	event, ok := telemetry.find("dashboard.session.restart")
	require.True(t, ok)
	assert.Equal(t, 5, event.payload["purged_charts"])
	assert.Equal(t, warmed.ID, event.payload["previous_id"])
}
