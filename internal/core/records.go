package core

// records.go types raw grid rows into StudentRecords for aggregation.
//
// Problems are recovered locally and reported as RowIssues:
//   - A row shorter than the required width is left out of aggregation but
//     stays in the grid for display (ErrMalformedRow).
//   - A grade cell that is not a tracked grade is treated as absent for that
//     one subject; the rest of the record is kept (ErrInvalidGrade).

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedRow marks a data row with fewer fields than the header.
	ErrMalformedRow = errors.New("malformed row")

	// ErrInvalidGrade marks a grade cell that is not an integer in 2..5.
	ErrInvalidGrade = errors.New("invalid grade")
)

// RowIssue describes a recoverable problem in one data row.
type RowIssue struct {
	Row    int    `json:"row"`              // 1-based data row number
	Column string `json:"column,omitempty"` // Header label of the offending cell
	Value  string `json:"value,omitempty"`
	Err    error  `json:"-"`
}

func (i RowIssue) Error() string {
	if i.Column != "" {
		return fmt.Sprintf("row %d: %s: %v %q", i.Row, i.Column, i.Err, i.Value)
	}
	return fmt.Sprintf("row %d: %v", i.Row, i.Err)
}

func (i RowIssue) Unwrap() error {
	return i.Err
}

// MarshalJSON includes the rendered message next to the issue fields.
func (i RowIssue) MarshalJSON() ([]byte, error) {
	type plain RowIssue
	return json.Marshal(struct {
		plain
		Message string `json:"message"`
	}{plain(i), i.Error()})
}

// RequiredColumns returns the minimum row width for aggregation: the header
// width, but never less than the columns a record occupies.
func RequiredColumns(header []string) int {
	if len(header) > RecordColumns {
		return len(header)
	}
	return RecordColumns
}

// Records converts the grid's data rows into student records.
// Rows that cannot be aggregated are skipped and reported.
func Records(grid Grid) ([]StudentRecord, []RowIssue) {
	required := RequiredColumns(grid.Header)

	records := make([]StudentRecord, 0, len(grid.Rows))
	var issues []RowIssue

	for i, row := range grid.Rows {
		if len(row) < required {
			issues = append(issues, RowIssue{
				Row: i + 1,
				Err: fmt.Errorf("%w: %d of %d fields", ErrMalformedRow, len(row), required),
			})
			continue
		}

		rec, cellIssues := recordFromRow(row, grid.Header)
		for _, ci := range cellIssues {
			ci.Row = i + 1
			issues = append(issues, ci)
		}
		records = append(records, rec)
	}

	return records, issues
}

// recordFromRow types one well-formed row.
func recordFromRow(row, header []string) (StudentRecord, []RowIssue) {
	rec := StudentRecord{
		Name:  row[ColName],
		Class: row[ColClass],
	}

	var issues []RowIssue
	for _, s := range Subjects() {
		col := ColFirstSubject + int(s)
		raw := row[col]

		g, ok := ParseGrade(raw)
		switch {
		case ok && (g.Valid() || g == NoGrade):
			rec.Grades[s] = g
		case ok:
			// Out of range integers never reach an aggregate.
			rec.Grades[s] = NoGrade
			issues = append(issues, RowIssue{Column: columnLabel(header, col, s), Value: raw, Err: ErrInvalidGrade})
		case strings.TrimSpace(raw) != "":
			issues = append(issues, RowIssue{Column: columnLabel(header, col, s), Value: raw, Err: ErrInvalidGrade})
		}
	}

	return rec, issues
}

func columnLabel(header []string, col int, s Subject) string {
	if col < len(header) && strings.TrimSpace(header[col]) != "" {
		return header[col]
	}
	return s.String()
}
