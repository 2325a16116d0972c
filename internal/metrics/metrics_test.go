package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gradebook/internal/core"
)

func TestRecorder_Imports(t *testing.T) {
	r := New()

	r.ImportCompleted(3, []core.RowIssue{
		{Row: 1, Err: fmt.Errorf("%w: 1 of 7 fields", core.ErrMalformedRow)},
		{Row: 2, Column: "Physics", Value: "7", Err: core.ErrInvalidGrade},
		{Row: 3, Column: "Math", Value: "x", Err: core.ErrInvalidGrade},
	})
	r.ImportFailed(fmt.Errorf("import: %w", core.ErrFileTooLarge))
	r.ImportFailed(core.ErrEmptyFile)
	r.ImportFailed(errors.New("invalid csv: bare quote"))
	r.ImportFailed(fmt.Errorf("import: %w", core.ErrTooManyImports))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.imports.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.imports.WithLabelValues("too_large")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.imports.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.imports.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.imports.WithLabelValues("busy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rowIssues.WithLabelValues("malformed_row")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rowIssues.WithLabelValues("invalid_grade")))
}

func TestRecorder_TableAndExports(t *testing.T) {
	r := New()

	r.TableChanged(12)
	r.TableChanged(11)
	r.Exported(core.ExportCSV)
	r.Exported(core.ExportCSV)
	r.Exported(core.ExportXLSX)
	r.StatisticsComputed(11, 2*time.Millisecond)

	assert.Equal(t, 11.0, testutil.ToFloat64(r.tableRows))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.exports.WithLabelValues("csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.exports.WithLabelValues("xlsx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.aggregations))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.TableChanged(4)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gradebook_table_rows 4")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
