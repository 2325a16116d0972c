package core

// report.go renders statistics as a spreadsheet workbook.
//
// The workbook has one sheet per grouping with the same columns as the
// statistics page: group, subject, average, median, counts for 5..2 and
// percentages for 5..2.

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the statistics workbook.
const (
	SheetByClass   = "By class"
	SheetByStudent = "By student"
)

// ReportColumns returns the header of a statistics sheet. keyLabel names the
// grouping column ("Class" or "Student").
func ReportColumns(keyLabel string) []string {
	cols := []string{keyLabel, "Subject", "Average", "Median"}
	for _, g := range descendingGrades() {
		cols = append(cols, fmt.Sprintf("Count %d", g))
	}
	for _, g := range descendingGrades() {
		cols = append(cols, fmt.Sprintf("Percent %d", g))
	}
	return cols
}

// descendingGrades lists tracked grades from best to worst, the order used
// by every statistics table.
func descendingGrades() []Grade {
	return []Grade{5, 4, 3, 2}
}

// WriteWorkbook writes both statistics views as an XLSX workbook to w.
func WriteWorkbook(w io.Writer, result AggregationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, SheetByClass, "Class", result.ByClass); err != nil {
		return err
	}
	if err := writeSheet(f, SheetByStudent, "Student", result.ByStudent); err != nil {
		return err
	}

	// NewFile always creates "Sheet1"; it is not part of the report.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetByClass); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet, keyLabel string, stats *GroupedStatistics) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}

	header := ReportColumns(keyLabel)
	for i, label := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
	}

	row := 2
	for _, grp := range stats.Groups() {
		for _, s := range Subjects() {
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), reportRow(grp.Key, s, grp.Subjects[s])); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, row, err)
			}
			row++
		}
	}

	return nil
}

// reportRow lays out one (group, subject) cell in ReportColumns order.
func reportRow(key string, s Subject, st SubjectStatistics) *[]any {
	values := []any{key, s.String(), round2(st.Average), round2(st.Median)}
	for _, g := range descendingGrades() {
		values = append(values, st.Counts.Of(g))
	}
	for _, g := range descendingGrades() {
		values = append(values, round2(st.Percentages.Of(g)))
	}
	return &values
}
