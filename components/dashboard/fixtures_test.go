package dashboard

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-sales-dashboard/pkg/dataset"
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func fixtureRecords() []sales.Record {
	return []sales.Record{
		{OrderDate: day(2024, time.January, 5), Country: "México", Customer: "Ana", Category: "Tecnología", Subcategory: "Teléfonos", Segment: "Consumidor", ShipMode: "Estándar", Sales: decimal.NewFromInt(100), Profit: decimal.NewFromInt(10)},
		{OrderDate: day(2024, time.February, 10), Country: "México", Customer: "Luis", Category: "Muebles", Subcategory: "Sillas", Segment: "Corporativo", ShipMode: "Primera clase", Sales: decimal.NewFromInt(50), Profit: decimal.NewFromInt(-5)},
		{OrderDate: day(2024, time.January, 20), Country: "Francia", Customer: "Ana", Category: "Tecnología", Subcategory: "Copiadoras", Segment: "Consumidor", ShipMode: "Estándar", Sales: decimal.NewFromInt(200), Profit: decimal.NewFromInt(40)},
		{OrderDate: day(2023, time.December, 1), Country: "Alemania", Customer: "Otto", Category: "Material de oficina", Subcategory: "Papel", Segment: "Oficina en casa", ShipMode: "Mismo día", Sales: decimal.RequireFromString("1234.56"), Profit: decimal.RequireFromString("300.40")},
	}
}

func fixtureSessions() *dataset.SessionManager {
	table := sales.NewTable(fixtureRecords())
	return dataset.NewSessionManager(dataset.TableLoaderFunc(func(context.Context) (*sales.Table, error) {
		return table, nil
	}))
}

type recordedEvent struct {
	name    string
	payload map[string]any
}

type recordingTelemetry struct {
	events []recordedEvent
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.events = append(r.events, recordedEvent{name: event, payload: payload})
}

func (r *recordingTelemetry) find(name string) (recordedEvent, bool) {
	for _, event := range r.events {
		if event.name == name {
			return event, true
		}
	}
	return recordedEvent{}, false
}

type stubChartRenderer struct {
	calls atomic.Int32
}

func (s *stubChartRenderer) Render(_ context.Context, scope string, spec ChartSpec) (string, error) {
	s.calls.Add(1)
	return "<div id=\"" + scope + "-" + spec.ID + "\"></div>", nil
}
