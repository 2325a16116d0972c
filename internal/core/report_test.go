package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReportColumns(t *testing.T) {
	assert.Equal(t, []string{
		"Class", "Subject", "Average", "Median",
		"Count 5", "Count 4", "Count 3", "Count 2",
		"Percent 5", "Percent 4", "Percent 3", "Percent 2",
	}, ReportColumns("Class"))
}

func TestWriteWorkbook(t *testing.T) {
	result := Run([]StudentRecord{
		record("A", "10A", 5, 4, 3, 2, 5),
		record("B", "10A", 4, 4, 4, 4, 4),
		record("C", "10A", 4, 4, 4, 4, 4),
	})

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetByClass, SheetByStudent}, f.GetSheetList())

	rows, err := f.GetRows(SheetByClass)
	require.NoError(t, err)
	require.Len(t, rows, 1+NumSubjects)
	assert.Equal(t, ReportColumns("Class"), rows[0])

	// Physics in 10A: 5, 4, 4.
	assert.Equal(t, []string{"10A", "Physics", "4.33", "4", "1", "2", "0", "0", "33.33", "66.67", "0", "0"}, rows[1])

	rows, err = f.GetRows(SheetByStudent)
	require.NoError(t, err)
	require.Len(t, rows, 1+3*NumSubjects)
	assert.Equal(t, "Student", rows[0][0])
	assert.Equal(t, []string{"A", "Literature"}, rows[4][:2])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, Run(nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetByStudent)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
