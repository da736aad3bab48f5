package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// Query parameter names shared by every transport.
const (
	QueryCountry  = "country"
	QueryCategory = "category"
	QuerySegment  = "segment"
	QueryFrom     = "from"
	QueryTo       = "to"
	QuerySession  = "session"

	// SessionHeader names the session a request belongs to.
	SessionHeader = "X-Dashboard-Session"
)

const queryDateLayout = "2006-01-02"

// allKeywords select every value of a dimension.
var allKeywords = map[string]struct{}{
	"all":   {},
	"todos": {},
	"todas": {},
	"*":     {},
}

// noneKeywords produce an explicitly empty set, which the configured
// empty-selection policy then interprets.
var noneKeywords = map[string]struct{}{
	"none":    {},
	"ninguno": {},
	"ninguna": {},
}

// QueryNone is the keyword EncodeSelection writes for an empty set.
const QueryNone = "none"

// QueryLookup returns a raw parameter value and whether it was present.
type QueryLookup func(key string) (string, bool)

// ParseSelection reads a selection from comma-separated query values.
// Absent parameters, blank values and the "all"/"Todos" keyword leave a
// dimension unconstrained; "none" yields an empty set. Dates use YYYY-MM-DD.
func ParseSelection(lookup QueryLookup) (sales.Selection, error) {
	var sel sales.Selection
	sel.Countries = parseList(lookup, QueryCountry)
	sel.Categories = parseList(lookup, QueryCategory)
	sel.Segments = parseList(lookup, QuerySegment)

	var err error
	if sel.Range.Start, err = parseDay(lookup, QueryFrom); err != nil {
		return sales.Selection{}, err
	}
	if sel.Range.End, err = parseDay(lookup, QueryTo); err != nil {
		return sales.Selection{}, err
	}
	return sel, nil
}

// EncodeSelection is the inverse of ParseSelection, used for links and CLI echo.
func EncodeSelection(sel sales.Selection) map[string]string {
	out := map[string]string{}
	encodeList(out, QueryCountry, sel.Countries)
	encodeList(out, QueryCategory, sel.Categories)
	encodeList(out, QuerySegment, sel.Segments)
	if !sel.Range.Start.IsZero() {
		out[QueryFrom] = sel.Range.Start.Format(queryDateLayout)
	}
	if !sel.Range.End.IsZero() {
		out[QueryTo] = sel.Range.End.Format(queryDateLayout)
	}
	return out
}

func encodeList(out map[string]string, key string, values []string) {
	switch {
	case values == nil:
	case len(values) == 0:
		out[key] = QueryNone
	default:
		out[key] = strings.Join(values, ",")
	}
}

func parseList(lookup QueryLookup, key string) []string {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyword := strings.ToLower(part)
		if _, all := allKeywords[keyword]; all {
			return nil
		}
		if _, none := noneKeywords[keyword]; none {
			return []string{}
		}
		values = append(values, part)
	}
	return values
}

func parseDay(lookup QueryLookup, key string) (time.Time, error) {
	raw, ok := lookup(key)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidSelection, key)
	}
	return day, nil
}

// MapLookup adapts a plain map to QueryLookup.
func MapLookup(values map[string]string) QueryLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
