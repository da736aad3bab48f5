package dashboard

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// ChartBuilder runs one aggregation and shapes it for the chart kinds it supports.
// The first kind is used when a config does not name one.
type ChartBuilder struct {
	Kinds []ChartKind
	Build func(p *Presenter, table *sales.Table, id, title string, kind ChartKind) ChartSpec
}

func (b ChartBuilder) defaultKind() ChartKind {
	return b.Kinds[0]
}

func (b ChartBuilder) allows(kind ChartKind) bool {
	for _, k := range b.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ChartRegistry maps chart ids to their builders, keeping registration order.
type ChartRegistry struct {
	mu       sync.RWMutex
	builders map[string]ChartBuilder
	order    []string
}

// NewChartRegistry returns a registry holding the built-in sales charts.
func NewChartRegistry() *ChartRegistry {
	reg := &ChartRegistry{builders: map[string]ChartBuilder{}}
	for _, id := range builtinChartOrder {
		_ = reg.Register(id, builtinCharts[id])
	}
	return reg
}

// Register adds or replaces the builder for id.
func (r *ChartRegistry) Register(id string, builder ChartBuilder) error {
	if id == "" {
		return fmt.Errorf("dashboard: chart id is required")
	}
	if builder.Build == nil || len(builder.Kinds) == 0 {
		return fmt.Errorf("dashboard: chart %s needs a build func and at least one kind", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[id]; !exists {
		r.order = append(r.order, id)
	}
	r.builders[id] = builder
	return nil
}

// Lookup returns the builder registered for id.
func (r *ChartRegistry) Lookup(id string) (ChartBuilder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	builder, ok := r.builders[id]
	return builder, ok
}

// IDs lists registered chart ids in registration order.
func (r *ChartRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

var defaultCharts = NewChartRegistry()

// RegisterChart makes a custom chart available to every config.
func RegisterChart(id string, builder ChartBuilder) error {
	return defaultCharts.Register(id, builder)
}

// ChartIDs lists every chart a config may enable.
func ChartIDs() []string {
	return defaultCharts.IDs()
}
