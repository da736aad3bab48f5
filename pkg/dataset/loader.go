package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

// Options configures a Loader.
type Options struct {
	Source      Source
	Format      Format
	Sheet       string
	Columns     Columns
	DateLayouts []string
}

// Loader materialises the sales table from a Source.
type Loader struct {
	opts Options
}

// NewLoader validates options and fills defaults.
func NewLoader(opts Options) (*Loader, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("dataset: source is required")
	}
	if opts.Format == "" {
		opts.Format = DetectFormat(opts.Source.Name())
	}
	if len(opts.Columns) == 0 {
		opts.Columns = DefaultColumns()
	}
	if len(opts.DateLayouts) == 0 {
		opts.DateLayouts = DefaultDateLayouts
	}
	return &Loader{opts: opts}, nil
}

// Load fetches and parses the document in a single attempt. Any failure is
// reported as sales.ErrDataUnavailable and no partial table is returned.
func (l *Loader) Load(ctx context.Context) (*sales.Table, error) {
	body, err := l.opts.Source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", sales.ErrDataUnavailable, l.opts.Source.Name(), err)
	}
	defer body.Close()

	rows, err := readRows(body, l.opts.Format, l.opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", sales.ErrDataUnavailable, l.opts.Source.Name(), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: document has no header row", sales.ErrMalformedSchema, l.opts.Source.Name())
	}
	index, err := l.opts.Columns.Resolve(rows[0])
	if err != nil {
		return nil, err
	}

	parser := rowParser{index: index, layouts: l.opts.DateLayouts, serials: l.opts.Format == FormatXLSX}
	records := make([]sales.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec, err := parser.parse(i+2, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return sales.NewTable(records), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
