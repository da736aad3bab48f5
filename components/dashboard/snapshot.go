package dashboard

import (
	"time"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// Snapshot is the full dashboard state for one selection: headline figures
// plus every enabled chart, ready for a client to draw.
type Snapshot struct {
	SessionID   string          `json:"session_id"`
	Variant     string          `json:"variant"`
	Title       string          `json:"title"`
	Selection   sales.Selection `json:"selection"`
	Rows        int             `json:"rows"`
	TotalRows   int             `json:"total_rows"`
	Metrics     sales.KPIs      `json:"metrics"`
	KPIs        []KPICard       `json:"kpis"`
	Charts      []ChartSpec     `json:"charts"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// FilterOptions lists the values each picker offers and which pickers are shown.
type FilterOptions struct {
	SessionID   string          `json:"session_id"`
	CountryMode string          `json:"country_mode"`
	Category    bool            `json:"category"`
	Segment     bool            `json:"segment"`
	DateRange   bool            `json:"date_range"`
	Countries   []string        `json:"countries"`
	Categories  []string        `json:"categories"`
	Segments    []string        `json:"segments"`
	MinDate     time.Time       `json:"min_date"`
	MaxDate     time.Time       `json:"max_date"`
	Default     sales.Selection `json:"default"`
}

// RenderedChart pairs a chart spec with its server-rendered markup.
type RenderedChart struct {
	ChartSpec
	HTML string `json:"html"`
}

// Page is what the HTML view needs: the snapshot, picker values and chart markup.
type Page struct {
	Snapshot Snapshot        `json:"snapshot"`
	Options  FilterOptions   `json:"options"`
	Charts   []RenderedChart `json:"charts"`
	Footer   string          `json:"footer,omitempty"`
}
