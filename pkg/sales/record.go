package sales

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single order line of the sales table.
type Record struct {
	OrderDate   time.Time
	Country     string
	Customer    string
	Category    string
	Subcategory string
	Segment     string
	ShipMode    string
	Sales       decimal.Decimal
	Profit      decimal.Decimal
	OrderMonth  time.Month
}

// Dimension names a categorical column of the table.
type Dimension string

const (
	DimensionCountry     Dimension = "country"
	DimensionCategory    Dimension = "category"
	DimensionSubcategory Dimension = "subcategory"
	DimensionSegment     Dimension = "segment"
	DimensionShipMode    Dimension = "ship_mode"
	DimensionCustomer    Dimension = "customer"
)

// Value returns the record value for the dimension.
func (r Record) Value(dim Dimension) string {
	switch dim {
	case DimensionCountry:
		return r.Country
	case DimensionCategory:
		return r.Category
	case DimensionSubcategory:
		return r.Subcategory
	case DimensionSegment:
		return r.Segment
	case DimensionShipMode:
		return r.ShipMode
	case DimensionCustomer:
		return r.Customer
	default:
		return ""
	}
}

// Table is a read-only collection of records. Downstream components never
// mutate it; Filter returns a new Table.
type Table struct {
	records []Record
}

// NewTable copies records into a table and derives the order month.
func NewTable(records []Record) *Table {
	out := make([]Record, len(records))
	for i, rec := range records {
		if !rec.OrderDate.IsZero() {
			rec.OrderMonth = rec.OrderDate.Month()
		}
		out[i] = rec
	}
	return &Table{records: out}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the row at index i.
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Records returns a copy of every row.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Distinct returns the sorted unique values of a dimension.
func (t *Table) Distinct(dim Dimension) []string {
	if t.Len() == 0 {
		return []string{}
	}
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, rec := range t.records {
		v := rec.Value(dim)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// DateBounds returns the earliest and latest order dates. ok is false for an
// empty table.
func (t *Table) DateBounds() (start, end time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end = t.records[0].OrderDate, t.records[0].OrderDate
	for _, rec := range t.records[1:] {
		if rec.OrderDate.Before(start) {
			start = rec.OrderDate
		}
		if rec.OrderDate.After(end) {
			end = rec.OrderDate
		}
	}
	return start, end, true
}
