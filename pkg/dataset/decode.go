package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// Format is the encoding of the raw document.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a config value onto a Format. Blank returns "" so the
// caller can fall back to DetectFormat.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return "", nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("dataset: unsupported format %q", value)
	}
}

// DetectFormat guesses the format from a file name or URL. Spreadsheets are
// the default because the published workbook is an xlsx export.
func DetectFormat(name string) Format {
	name = strings.ToLower(name)
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	if path.Ext(name) == ".csv" {
		return FormatCSV
	}
	return FormatXLSX
}

// DefaultDateLayouts are tried in order when a date cell is text.
var DefaultDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"1/2/2006",
	"1/2/06",
	"2006/01/02",
}

func readRows(r io.Reader, format Format, sheet string) ([][]string, error) {
	switch format {
	case FormatCSV:
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("dataset: read csv: %w", err)
		}
		return rows, nil
	case FormatXLSX, "":
		book, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("dataset: open workbook: %w", err)
		}
		defer book.Close()
		if sheet == "" {
			sheets := book.GetSheetList()
			if len(sheets) == 0 {
				return nil, fmt.Errorf("dataset: workbook has no sheets")
			}
			sheet = sheets[0]
		}
		rows, err := book.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("dataset: read sheet %s: %w", sheet, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("dataset: unsupported format %q", format)
	}
}

type rowParser struct {
	index   map[Field]int
	layouts []string
	// serials accepts numeric order dates as Excel serial numbers.
	serials bool
}

func (p rowParser) parse(line int, row []string) (sales.Record, error) {
	cell := func(f Field) string {
		pos := p.index[f]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	date, err := parseDate(cell(FieldOrderDate), p.layouts, p.serials)
	if err != nil {
		return sales.Record{}, fmt.Errorf("%w: row %d: %v", sales.ErrMalformedSchema, line, err)
	}
	amount, err := parseAmount(cell(FieldSales))
	if err != nil {
		return sales.Record{}, fmt.Errorf("%w: row %d: sales: %v", sales.ErrMalformedSchema, line, err)
	}
	profit, err := parseAmount(cell(FieldProfit))
	if err != nil {
		return sales.Record{}, fmt.Errorf("%w: row %d: profit: %v", sales.ErrMalformedSchema, line, err)
	}
	return sales.Record{
		OrderDate:   date,
		Country:     cell(FieldCountry),
		Customer:    cell(FieldCustomer),
		Category:    cell(FieldCategory),
		Subcategory: cell(FieldSubcategory),
		Segment:     cell(FieldSegment),
		ShipMode:    cell(FieldShipMode),
		Sales:       amount,
		Profit:      profit,
	}, nil
}

func parseDate(value string, layouts []string, serials bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty order date")
	}
	if !serials {
		return parseDateLayouts(value, layouts)
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("order date %q: %w", value, err)
		}
		return dateOnly(t), nil
	}
	return parseDateLayouts(value, layouts)
}

func parseDateLayouts(value string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable order date %q", value)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var amountReplacer = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "")

func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := amountReplacer.Replace(value)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", value)
	}
	return d, nil
}
