package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/dsbmap/pkg/types"
)

// Layout identifies the column set of a catalog file
type Layout string

const (
	// LayoutDataset is the full conflict dataset with annotation lists
	LayoutDataset Layout = "dataset"
	// LayoutTopology holds only accession, name, topology code and length
	LayoutTopology Layout = "topology"
	// LayoutAuto picks one of the above from the header
	LayoutAuto Layout = "auto"
)

// Dataset columns
const (
	colEntry       = "Entry"
	colEntryName   = "Entry name"
	colProteinName = "Protein names"
	colBonds       = "Disulfide bond"
	colGlyco       = "Glycosylation"
	colOldLength   = "Length"
	colLength      = "New_Length"
	colTopology    = "Orientation"
	colOldTopology = "topology"
	colSequons     = "Sequon list"
	colCysteines   = "Cysteine positions"
)

// Topology-only columns
const (
	colName        = "Name"
	colProteinDesc = "Protein name"
)

var requiredColumns = map[Layout][]string{
	LayoutDataset:  {colEntry, colBonds, colGlyco, colLength, colTopology, colSequons, colCysteines},
	LayoutTopology: {colName, colTopology, colOldLength},
}

// ErrUnknownLayout is returned when the header matches no layout
var ErrUnknownLayout = errors.New("unknown catalog layout")

// Row is one parsed catalog line. Rows that fail to parse carry Err and are
// otherwise empty; the reader keeps going.
type Row struct {
	Line        int
	Raw         types.RawRecord
	OldLength   int
	OldTopology string
	Complete    bool // annotation lists present
	Err         error
}

// Reader reads catalog rows from CSV
type Reader struct {
	csv    *csv.Reader
	layout Layout
	cols   map[string]int
	line   int
}

// NewReader reads the header and resolves the layout
func NewReader(r io.Reader, layout Layout) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		// Strip a UTF-8 BOM left by spreadsheet exports
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		cols[name] = i
	}

	if layout == "" || layout == LayoutAuto {
		layout = detectLayout(cols)
		if layout == "" {
			return nil, fmt.Errorf("%w: header %v", ErrUnknownLayout, header)
		}
	}

	required, ok := requiredColumns[layout]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%s layout is missing column %q", layout, c)
		}
	}

	return &Reader{csv: cr, layout: layout, cols: cols}, nil
}

func detectLayout(cols map[string]int) Layout {
	for _, l := range []Layout{LayoutDataset, LayoutTopology} {
		complete := true
		for _, c := range requiredColumns[l] {
			if _, ok := cols[c]; !ok {
				complete = false
				break
			}
		}
		if complete {
			return l
		}
	}
	return ""
}

// Layout returns the resolved layout
func (r *Reader) Layout() Layout {
	return r.layout
}

// Next returns the next row, or io.EOF after the last one. Malformed CSV
// aborts reading; malformed cell values only mark the row.
func (r *Reader) Next() (*Row, error) {
	for {
		fields, err := r.csv.Read()
		if err != nil {
			return nil, err
		}
		r.line, _ = r.csv.FieldPos(0)

		if isBlank(fields) {
			continue
		}

		row := &Row{Line: r.line}
		if r.layout == LayoutDataset {
			row.Err = r.parseDataset(fields, row)
		} else {
			row.Err = r.parseTopology(fields, row)
		}
		if row.Err != nil {
			row.Err = fmt.Errorf("line %d: %w", r.line, row.Err)
		}
		return row, nil
	}
}

// ReadAll collects every remaining row
func (r *Reader) ReadAll() ([]*Row, error) {
	rows := make([]*Row, 0)
	for {
		row, err := r.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func (r *Reader) parseDataset(fields []string, row *Row) error {
	get := r.getter(fields)

	row.Raw.ID = get(colEntry)
	if row.Raw.ID == "" {
		return types.NewFormatError("id", "empty %s", colEntry)
	}
	row.Raw.EntryName = get(colEntryName)
	row.Raw.Description = get(colProteinName)
	row.Raw.TopologyCode = get(colTopology)
	row.OldTopology = get(colOldTopology)

	var err error
	if row.Raw.Length, err = parseInt("length", get(colLength)); err != nil {
		return err
	}
	if s := get(colOldLength); s != "" {
		if row.OldLength, err = parseInt("oldLength", s); err != nil {
			return err
		}
	}

	lists := []struct {
		field string
		col   string
		dst   *[]string
	}{
		{"disulfideBonds", colBonds, &row.Raw.DisulfideBonds},
		{"glycosylationSites", colGlyco, &row.Raw.GlycosylationSites},
		{"sequonSites", colSequons, &row.Raw.SequonSites},
		{"cysteinePositions", colCysteines, &row.Raw.CysteinePositions},
	}
	for _, l := range lists {
		values, err := ParseListCell(get(l.col))
		if err != nil {
			return types.NewFormatError(l.field, "%v", err)
		}
		*l.dst = values
	}

	row.Complete = true
	return nil
}

func (r *Reader) parseTopology(fields []string, row *Row) error {
	get := r.getter(fields)

	row.Raw.ID = get(colName)
	if row.Raw.ID == "" {
		return types.NewFormatError("id", "empty %s", colName)
	}
	row.Raw.Description = get(colProteinDesc)
	row.Raw.TopologyCode = get(colTopology)

	var err error
	row.Raw.Length, err = parseInt("length", get(colOldLength))
	return err
}

func (r *Reader) getter(fields []string) func(string) string {
	return func(col string) string {
		i, ok := r.cols[col]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}
}

// ParseListCell decodes a list literal as written by pandas, e.g.
// "['10 30', '45 80']" or "[12, 40]". Empty cells, "[]" and "nan" yield an
// empty list.
func ParseListCell(cell string) ([]string, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "[]" || strings.EqualFold(cell, "nan") {
		return []string{}, nil
	}

	var items []any
	if err := json.Unmarshal([]byte(strings.ReplaceAll(cell, "'", `"`)), &items); err != nil {
		return nil, fmt.Errorf("invalid list literal %q: %w", cell, err)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, strings.TrimSpace(v))
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("unsupported list item %v in %q", item, cell)
		}
	}
	return out, nil
}

func parseInt(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	// Spreadsheet exports sometimes write integers as "123.0"
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, types.NewFormatError(field, "not an integer: %q", s)
	}
	return n, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
