package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	if len(out) > 0 && out[0] != nil {
		_, _ = out[0].Write([]byte("ok"))
	}
	return "ok", nil
}

type stubCharts struct{}

func (stubCharts) Render(_ context.Context, scope string, spec dashboard.ChartSpec) (string, error) {
	return scope + ":" + spec.ID, nil
}

func newTestApp(t *testing.T, base string) (*fiber.App, *dataset.SessionManager, *stubRenderer) {
	t.Helper()
	records := []sales.Record{
		{OrderDate: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC), Country: "Perú", Customer: "Rosa", Category: "Tecnología", Subcategory: "Accesorios", Segment: "Consumidor", ShipMode: "Estándar", Sales: decimal.NewFromInt(75), Profit: decimal.NewFromInt(15)},
		{OrderDate: time.Date(2024, time.June, 8, 0, 0, 0, 0, time.UTC), Country: "Brasil", Customer: "João", Category: "Muebles", Subcategory: "Sillas", Segment: "Corporativo", ShipMode: "Primera clase", Sales: decimal.NewFromInt(310), Profit: decimal.NewFromInt(42)},
	}
	sessions := dataset.NewSessionManager(dataset.TableLoaderFunc(func(context.Context) (*sales.Table, error) {
		return sales.NewTable(records), nil
	}))
	cfg, err := dashboard.VariantConfig(dashboard.VariantStrategic)
	require.NoError(t, err)
	service := dashboard.NewService(dashboard.Options{Sessions: sessions, Config: cfg, Charts: stubCharts{}})
	renderer := &stubRenderer{}
	controller := dashboard.NewController(dashboard.ControllerOptions{Service: service, Renderer: renderer})

	server := router.NewFiberAdapter()
	require.NoError(t, Register(Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API: &httpapi.CommandExecutor{
			WarmCommander:    commands.NewWarmSessionCommand(service, nil),
			RestartCommander: commands.NewRestartSessionCommand(service, nil),
		},
		BasePath: base,
	}))
	return server.WrappedRouter(), sessions, renderer
}

func TestRegisterValidatesConfig(t *testing.T) {
	require.Error(t, Register(Config[struct{}]{}))
}

func TestHTMLRoute(t *testing.T) {
	app, _, renderer := newTestApp(t, "/admin")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/sales", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 1, renderer.calls)
}

func TestSnapshotRoute(t *testing.T) {
	app, _, _ := newTestApp(t, "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sales/_snapshot?country=Brasil&segment=Corporativo", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap dashboard.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 1, snap.Rows)
	assert.Equal(t, "310", snap.Metrics.TotalSales.String())
	assert.Equal(t, snap.SessionID, resp.Header.Get(dashboard.SessionHeader))
}

func TestSnapshotRouteBadQuery(t *testing.T) {
	app, _, _ := newTestApp(t, "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sales/_snapshot?to=06-08-2024", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOptionsRouteUsesSessionHeader(t *testing.T) {
	app, sessions, _ := newTestApp(t, "")
	session := sessions.Open()
	req := httptest.NewRequest(http.MethodGet, "/sales/_options", nil)
	req.Header.Set(dashboard.SessionHeader, session.ID)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var options dashboard.FilterOptions
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&options))
	assert.Equal(t, session.ID, options.SessionID)
	assert.Equal(t, []string{"Brasil", "Perú"}, options.Countries)
}

func TestRestartRoute(t *testing.T) {
	app, sessions, _ := newTestApp(t, "")
	session := sessions.Open()
	body, _ := json.Marshal(map[string]string{"session_id": session.ID})
	req := httptest.NewRequest(http.MethodPost, "/sales/session/restart", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result commands.RestartSessionResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, session.ID, result.PreviousID)
	_, err = sessions.Get(session.ID)
	assert.ErrorIs(t, err, dataset.ErrSessionNotFound)
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	app, _, _ := newTestApp(t, "")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sales/_snapshot?session=nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
