package sales

import (
	"fmt"
	"strings"
	"time"
)

// EmptyPolicy decides how an empty value set in a Selection is interpreted.
// The policy applies to every dimension alike.
type EmptyPolicy string

const (
	// MatchAll ignores a dimension whose set is empty.
	MatchAll EmptyPolicy = "match_all"
	// MatchNone rejects every row when a dimension set is empty.
	MatchNone EmptyPolicy = "match_none"
)

// ParseEmptyPolicy maps config strings onto a policy. Blank means MatchAll.
func ParseEmptyPolicy(value string) (EmptyPolicy, error) {
	switch EmptyPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", MatchAll:
		return MatchAll, nil
	case MatchNone:
		return MatchNone, nil
	default:
		return "", fmt.Errorf("sales: unknown empty selection policy %q", value)
	}
}

// DateRange is a closed interval of calendar dates. A zero bound is open.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the date falls inside the interval, inclusive on
// both ends at day granularity.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	if !r.Start.IsZero() && day.Before(truncateDay(r.Start)) {
		return false
	}
	if !r.End.IsZero() && day.After(truncateDay(r.End)) {
		return false
	}
	return true
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Selection is the filter state produced by the UI controls.
type Selection struct {
	Countries  []string  `json:"countries"`
	Categories []string  `json:"categories"`
	Segments   []string  `json:"segments"`
	Range      DateRange `json:"range"`
}

// DefaultSelection selects every value present in the table and its full
// date span, which leaves the table unfiltered under either policy.
func DefaultSelection(table *Table) Selection {
	sel := Selection{
		Countries:  table.Distinct(DimensionCountry),
		Categories: table.Distinct(DimensionCategory),
		Segments:   table.Distinct(DimensionSegment),
	}
	if start, end, ok := table.DateBounds(); ok {
		sel.Range = DateRange{Start: start, End: end}
	}
	return sel
}

// Key returns a stable string for the selection, suitable for cache keys.
func (s Selection) Key() string {
	var b strings.Builder
	b.WriteString("c=")
	b.WriteString(strings.Join(s.Countries, "|"))
	b.WriteString(";k=")
	b.WriteString(strings.Join(s.Categories, "|"))
	b.WriteString(";s=")
	b.WriteString(strings.Join(s.Segments, "|"))
	b.WriteString(";r=")
	b.WriteString(formatBound(s.Range.Start))
	b.WriteString("..")
	b.WriteString(formatBound(s.Range.End))
	return b.String()
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
