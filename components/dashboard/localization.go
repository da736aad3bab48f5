package dashboard

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ResolveLocalizedValue selects the best translation for the provided locale and falls back to the supplied value.
// Keys are matched case-insensitively, and language-region pairs (`es-mx`, `es_MX`) automatically fall back to their
// base language (`es`) when present.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		if candidate == "" {
			continue
		}
		for key, value := range values {
			if strings.EqualFold(normalizeLocale(key), candidate) && value != "" {
				return value
			}
		}
	}
	if value, ok := values["default"]; ok && value != "" {
		return value
	}
	return fallback
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	candidates = append(candidates, "default")
	return candidates
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(locale)), "_", "-")
}

// mondayLocale converts `es-es` or `es_ES` into a locale monday supports,
// falling back to any region of the same language and then to en_US.
func mondayLocale(locale string) monday.Locale {
	parts := strings.SplitN(normalizeLocale(locale), "-", 2)
	supported := monday.ListLocales()
	if len(parts) == 2 && parts[1] != "" {
		candidate := monday.Locale(parts[0] + "_" + strings.ToUpper(parts[1]))
		for _, l := range supported {
			if l == candidate {
				return candidate
			}
		}
	}
	if parts[0] != "" {
		for _, l := range supported {
			if strings.HasPrefix(strings.ToLower(string(l)), parts[0]+"_") {
				return l
			}
		}
	}
	return monday.LocaleEnUS
}

// MonthLabel returns the abbreviated, title-cased month name for the locale.
func MonthLabel(month time.Month, locale string) string {
	ref := time.Date(2000, month, 1, 0, 0, 0, 0, time.UTC)
	label := monday.Format(ref, "Jan", mondayLocale(locale))
	label = strings.TrimSuffix(label, ".")
	return cases.Title(languageTag(locale)).String(label)
}

func languageTag(locale string) language.Tag {
	tag, err := language.Parse(normalizeLocale(locale))
	if err != nil {
		return language.Und
	}
	return tag
}

var labels = map[string]map[string]string{
	"series.sales":                      {"es": "Ventas", "default": "Sales"},
	"series.profit":                     {"es": "Ganancia", "default": "Profit"},
	"kpi.sales":                         {"es": "Ventas Totales", "default": "Total Sales"},
	"kpi.profit":                        {"es": "Ganancia Total", "default": "Total Profit"},
	"kpi.customers":                     {"es": "Clientes Únicos", "default": "Unique Customers"},
	"filter.all":                        {"es": "Todos", "default": "All"},
	"filter.country":                    {"es": "País", "default": "Country"},
	"filter.category":                   {"es": "Categoría", "default": "Category"},
	"filter.segment":                    {"es": "Segmento", "default": "Segment"},
	"filter.from":                       {"es": "Desde", "default": "From"},
	"filter.to":                         {"es": "Hasta", "default": "To"},
	"filter.apply":                      {"es": "Aplicar", "default": "Apply"},
	"filter.empty":                      {"es": "No hay ventas para la selección actual.", "default": "No sales match the current selection."},
	"chart." + ChartSalesByCategory:     {"es": "Ventas por Categoría", "default": "Sales by Category"},
	"chart." + ChartSalesBySubcategory:  {"es": "Ventas y Ganancia por Subcategoría", "default": "Sales and Profit by Subcategory"},
	"chart." + ChartSalesBySegment:      {"es": "Ventas por Segmento", "default": "Sales by Segment"},
	"chart." + ChartSalesByShipMode:     {"es": "Ventas por Método de Envío", "default": "Sales by Ship Mode"},
	"chart." + ChartSalesByCountryTop10: {"es": "Top 10 Países por Ventas", "default": "Top 10 Countries by Sales"},
	"chart." + ChartSalesByCountryMap:   {"es": "Ventas por País", "default": "Sales by Country"},
	"chart." + ChartMonthlySalesProfit:  {"es": "Ventas y Ganancia por Mes", "default": "Monthly Sales and Profit"},
}

// Label resolves a presenter string for the locale. Unknown keys come back unchanged.
func Label(key, locale string) string {
	return ResolveLocalizedValue(labels[key], locale, key)
}
