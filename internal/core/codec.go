package core

// codec.go converts between delimited text and the raw gradebook grid.
//
// Parsing is two-phase: the first non-blank line is the header, every later
// non-blank line is a data row. Rows are kept as plain strings here; typing
// into StudentRecords happens in records.go so that malformed rows can still
// be displayed.
//
// Serialization sizes every row by the header's content width, so rows
// carrying an extra UI-only column (or missing trailing cells) never produce
// ragged output.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSeparator is the field delimiter used by the gradebook files.
const DefaultSeparator = ';'

// Line endings accepted by SerializeOptions.
const (
	LineEndingCRLF = "\r\n"
	LineEndingLF   = "\n"
)

// utf8BOM is prepended to every exported file.
const utf8BOM = "\uFEFF"

// Grid is the raw tabular form of a gradebook: one header and its data rows.
type Grid struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Empty reports whether the grid has neither header nor rows.
func (g Grid) Empty() bool {
	return len(g.Header) == 0 && len(g.Rows) == 0
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := Grid{Header: cloneRow(g.Header)}
	if g.Rows != nil {
		out.Rows = make([][]string, len(g.Rows))
		for i, row := range g.Rows {
			out.Rows[i] = cloneRow(row)
		}
	}
	return out
}

func cloneRow(row []string) []string {
	if row == nil {
		return nil
	}
	out := make([]string, len(row))
	copy(out, row)
	return out
}

// ValidSeparator reports whether r can delimit fields.
func ValidSeparator(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError && utf8.ValidRune(r)
}

// Parse splits text into a header and data rows using sep as field delimiter.
// Empty text yields an empty grid.
func Parse(text string, sep rune) (Grid, error) {
	return ParseReader(strings.NewReader(text), sep)
}

// ParseReader is Parse over a stream. A leading UTF-8 BOM is skipped and
// invalid UTF-8 bytes are replaced before splitting.
func ParseReader(r io.Reader, sep rune) (Grid, error) {
	if !ValidSeparator(sep) {
		return Grid{}, fmt.Errorf("invalid separator %q", sep)
	}

	cr := csv.NewReader(NewStreamingUTF8Sanitizer(NewBOMSkippingReader(r)))
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var grid Grid
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Grid{}, fmt.Errorf("invalid csv: %w", err)
		}
		if blankRow(row) {
			continue
		}
		if grid.Header == nil {
			grid.Header = row
			continue
		}
		grid.Rows = append(grid.Rows, row)
	}

	return grid, nil
}

// blankRow reports whether every cell is empty after trimming.
func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// SerializeOptions controls how a grid is written back to text.
type SerializeOptions struct {
	Separator  rune
	LineEnding string

	// Quote wraps every field in double quotes. When false, line breaks
	// inside fields are flattened to a single space instead.
	Quote bool

	// UIColumns is the number of trailing header columns that exist only in
	// the display representation and must not be written.
	UIColumns int
}

// DefaultTextOptions mirrors the plain export of the gradebook page.
func DefaultTextOptions() SerializeOptions {
	return SerializeOptions{Separator: DefaultSeparator, LineEnding: LineEndingCRLF}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Serialize renders the grid as delimited text. The header row determines
// the column count for every row; cells past it are dropped (see
// OverflowRows).
//
// Quoted output parses back to the same grid, except that a "\r\n" inside a
// cell comes back as "\n".
func Serialize(grid Grid, opts SerializeOptions) string {
	if opts.Separator == 0 {
		opts.Separator = DefaultSeparator
	}
	if opts.LineEnding == "" {
		opts.LineEnding = LineEndingCRLF
	}

	width := len(grid.Header) - opts.UIColumns
	if width <= 0 {
		return ""
	}

	sep := string(opts.Separator)
	lines := make([]string, 0, len(grid.Rows)+1)

	for _, row := range append([][]string{grid.Header}, grid.Rows...) {
		cells := fitRow(row, width)
		if !opts.Quote && blankRow(cells) {
			continue
		}
		for i, cell := range cells {
			cells[i] = escapeCell(cell, opts.Quote)
		}
		lines = append(lines, strings.Join(cells, sep))
	}

	out := strings.Join(lines, opts.LineEnding)
	if !opts.Quote {
		out = strings.TrimRightFunc(out, unicode.IsSpace)
	}
	return out
}

// OverflowRows counts the rows holding non-blank cells beyond the header's
// content width. Serialize drops those cells.
func OverflowRows(grid Grid, uiColumns int) int {
	width := len(grid.Header) - uiColumns
	if width < 0 {
		width = 0
	}

	n := 0
	for _, row := range grid.Rows {
		if len(row) > width && !blankRow(row[width:]) {
			n++
		}
	}
	return n
}

// fitRow copies row cut or padded to exactly width cells.
func fitRow(row []string, width int) []string {
	cells := make([]string, width)
	copy(cells, row)
	return cells
}

func escapeCell(cell string, quote bool) string {
	cell = strings.ReplaceAll(cell, `"`, `""`)
	if quote {
		return `"` + cell + `"`
	}
	return lineBreaks.Replace(cell)
}

// Encode prefixes text with a UTF-8 byte-order mark.
func Encode(text string) []byte {
	return []byte(utf8BOM + text)
}

// ExportKind selects the file flavor of an export.
type ExportKind string

const (
	ExportText ExportKind = "txt"
	ExportCSV  ExportKind = "csv"
	ExportXLSX ExportKind = "xlsx"
)

// ParseExportKind validates a user-supplied export kind.
func ParseExportKind(s string) (ExportKind, error) {
	switch k := ExportKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ExportText, ExportCSV, ExportXLSX:
		return k, nil
	default:
		return "", fmt.Errorf("unknown export kind %q", s)
	}
}

// FileName returns the download name for the export kind.
func (k ExportKind) FileName() string {
	return "data." + string(k)
}

// ContentType returns the MIME type for the export kind.
func (k ExportKind) ContentType() string {
	switch k {
	case ExportCSV:
		return "text/csv;charset=utf-8"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain;charset=utf-8"
	}
}
