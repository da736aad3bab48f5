package dataset

import (
	"fmt"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// Field identifies a column of the sales schema.
type Field string

const (
	FieldOrderDate   Field = "order_date"
	FieldCountry     Field = "country"
	FieldCustomer    Field = "customer"
	FieldCategory    Field = "category"
	FieldSubcategory Field = "subcategory"
	FieldSegment     Field = "segment"
	FieldShipMode    Field = "ship_mode"
	FieldSales       Field = "sales"
	FieldProfit      Field = "profit"
)

// Fields lists every required column.
var Fields = []Field{
	FieldOrderDate,
	FieldCountry,
	FieldCustomer,
	FieldCategory,
	FieldSubcategory,
	FieldSegment,
	FieldShipMode,
	FieldSales,
	FieldProfit,
}

// Columns maps schema fields to the header names accepted for them.
type Columns map[Field][]string

// DefaultColumns accepts the Spanish headers of the retail workbook and their
// English equivalents.
func DefaultColumns() Columns {
	return Columns{
		FieldOrderDate:   {"Fecha del pedido", "Order Date"},
		FieldCountry:     {"País/Región", "Country/Region", "Country"},
		FieldCustomer:    {"Nombre del cliente", "Customer Name"},
		FieldCategory:    {"Categoría", "Category"},
		FieldSubcategory: {"Subcategoría", "Sub-Category", "Subcategory"},
		FieldSegment:     {"Segmento", "Segment"},
		FieldShipMode:    {"Método de envío", "Ship Mode"},
		FieldSales:       {"Ventas", "Sales"},
		FieldProfit:      {"Ganancia", "Profit"},
	}
}

// Merge returns a copy of c where overrides replace the aliases of a field.
func (c Columns) Merge(overrides map[string]string) (Columns, error) {
	out := make(Columns, len(c))
	for field, aliases := range c {
		out[field] = append([]string(nil), aliases...)
	}
	for key, header := range overrides {
		field := Field(normalizeHeader(key))
		if !knownField(field) {
			return nil, fmt.Errorf("dataset: unknown column field %q", key)
		}
		out[field] = []string{header}
	}
	return out, nil
}

// Resolve locates every field in the header row.
func (c Columns) Resolve(header []string) (map[Field]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}
	index := make(map[Field]int, len(Fields))
	var missing []string
	for _, field := range Fields {
		found := false
		for _, alias := range c[field] {
			if pos, ok := positions[normalizeHeader(alias)]; ok {
				index[field] = pos
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, string(field))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", sales.ErrMalformedSchema, strings.Join(missing, ", "))
	}
	return index, nil
}

func knownField(f Field) bool {
	for _, field := range Fields {
		if field == f {
			return true
		}
	}
	return false
}

func normalizeHeader(h string) string {
	return strcase.ToSnake(strings.TrimSpace(h))
}
