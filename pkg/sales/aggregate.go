package sales

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// GroupTotal is the aggregate of one categorical key.
type GroupTotal struct {
	Key    string          `json:"key"`
	Sales  decimal.Decimal `json:"sales"`
	Profit decimal.Decimal `json:"profit"`
	Rows   int             `json:"rows"`
}

// MonthTotal is the aggregate of one calendar month, years merged.
type MonthTotal struct {
	Month  time.Month      `json:"month"`
	Sales  decimal.Decimal `json:"sales"`
	Profit decimal.Decimal `json:"profit"`
	Rows   int             `json:"rows"`
}

// KPIs are the headline metrics of a filtered table.
type KPIs struct {
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	Customers   int             `json:"customers"`
}

// SortOrder controls how grouped totals are ordered by sales.
type SortOrder int

const (
	Descending SortOrder = iota
	Ascending
)

// GroupBy sums sales and profit per dimension value. Keys keep first-seen
// order until sorted, so ties resolve in the order keys appear in the table.
func GroupBy(table *Table, dim Dimension, order SortOrder) []GroupTotal {
	if table.Len() == 0 {
		return []GroupTotal{}
	}
	index := make(map[string]int)
	groups := make([]GroupTotal, 0)
	for _, rec := range table.records {
		key := rec.Value(dim)
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, GroupTotal{Key: key, Sales: decimal.Zero, Profit: decimal.Zero})
		}
		groups[idx].Sales = groups[idx].Sales.Add(rec.Sales)
		groups[idx].Profit = groups[idx].Profit.Add(rec.Profit)
		groups[idx].Rows++
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if order == Ascending {
			return groups[i].Sales.LessThan(groups[j].Sales)
		}
		return groups[i].Sales.GreaterThan(groups[j].Sales)
	})
	return groups
}

// ByCategory returns sales per category, highest first.
func ByCategory(table *Table) []GroupTotal {
	return GroupBy(table, DimensionCategory, Descending)
}

// BySubcategory returns sales and profit per subcategory, lowest sales first
// so a horizontal bar chart draws the largest bar on top.
func BySubcategory(table *Table) []GroupTotal {
	return GroupBy(table, DimensionSubcategory, Ascending)
}

// BySegment returns sales per customer segment, highest first.
func BySegment(table *Table) []GroupTotal {
	return GroupBy(table, DimensionSegment, Descending)
}

// ByShipMode returns sales per shipping method, highest first.
func ByShipMode(table *Table) []GroupTotal {
	return GroupBy(table, DimensionShipMode, Descending)
}

// ByCountry returns sales for every country, highest first.
func ByCountry(table *Table) []GroupTotal {
	return GroupBy(table, DimensionCountry, Descending)
}

// ByCountryTop returns the n countries with the highest sales.
func ByCountryTop(table *Table, n int) []GroupTotal {
	groups := ByCountry(table)
	if n > 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// ByCountryTop10 returns the ten countries with the highest sales.
func ByCountryTop10(table *Table) []GroupTotal {
	return ByCountryTop(table, 10)
}

// ByMonth returns exactly twelve entries, January through December. Months
// without rows carry zero totals.
func ByMonth(table *Table) []MonthTotal {
	months := make([]MonthTotal, 12)
	for i := range months {
		months[i] = MonthTotal{Month: time.Month(i + 1), Sales: decimal.Zero, Profit: decimal.Zero}
	}
	for i := 0; i < table.Len(); i++ {
		rec := table.records[i]
		if rec.OrderMonth < time.January || rec.OrderMonth > time.December {
			continue
		}
		m := &months[rec.OrderMonth-1]
		m.Sales = m.Sales.Add(rec.Sales)
		m.Profit = m.Profit.Add(rec.Profit)
		m.Rows++
	}
	return months
}

// ComputeKPIs sums sales and profit and counts distinct customer names.
// Names are compared exactly.
func ComputeKPIs(table *Table) KPIs {
	kpis := KPIs{TotalSales: decimal.Zero, TotalProfit: decimal.Zero}
	if table.Len() == 0 {
		return kpis
	}
	customers := make(map[string]struct{})
	for _, rec := range table.records {
		kpis.TotalSales = kpis.TotalSales.Add(rec.Sales)
		kpis.TotalProfit = kpis.TotalProfit.Add(rec.Profit)
		customers[rec.Customer] = struct{}{}
	}
	kpis.Customers = len(customers)
	return kpis
}
