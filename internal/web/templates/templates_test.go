package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gradebook/internal/core"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func loadedService(t *testing.T) *core.Service {
	t.Helper()
	svc := core.NewService(core.DefaultServiceConfig())
	_, err := svc.ImportText(context.Background(),
		"Name;Class;Physics;Biology;Math;Literature;Chemistry\n"+
			"Ann;10A;5;4;3;2;5\n"+
			"2\n"+
			"<i>Bob</i>;10B;4;4;4;4;4\n", "grades.txt")
	require.NoError(t, err)
	return svc
}

func TestValidTab(t *testing.T) {
	for _, tab := range []string{TabUpload, TabTable, TabStatistics, TabCharts} {
		assert.True(t, ValidTab(tab), tab)
	}
	assert.False(t, ValidTab(""))
	assert.False(t, ValidTab("admin"))
}

func TestErrorAlert(t *testing.T) {
	html := renderString(t, ErrorAlert("Bad <file>", "", "FILE002"))
	assert.Contains(t, html, "<strong>Bad &lt;file&gt;</strong>")
	assert.Contains(t, html, "(Code: FILE002)")
	assert.NotContains(t, html, "<span>")

	html = renderString(t, ErrorAlert("Bad file", "Upload a .txt file", "FILE002"))
	assert.Contains(t, html, "<span>Upload a .txt file</span>")
}

func TestErrorPage(t *testing.T) {
	html := renderString(t, ErrorPage(core.UserMessage{Message: "Page not found", Code: "NAV001"}))
	assert.Contains(t, html, "<title>Error</title>")
	assert.Contains(t, html, "Page not found")
	assert.Contains(t, html, `<a href="/">Back to the gradebook</a>`)
}

func TestPage_Tabs(t *testing.T) {
	html := renderString(t, Page(PageData{Tab: TabTable}))
	assert.Contains(t, html, `<a class="tab active" href="/?tab=table">Table</a>`)
	assert.Contains(t, html, `<a class="tab" href="/?tab=upload">Upload</a>`)
	assert.Contains(t, html, `<section id="table">`)
	assert.Contains(t, html, "No table loaded yet")
}

func TestPage_Table(t *testing.T) {
	svc := loadedService(t)
	view, err := svc.Table(context.Background())
	require.NoError(t, err)

	html := renderString(t, Page(PageData{Tab: TabTable, Table: &view}))
	assert.Contains(t, html, `<a href="/export/xlsx">data.xlsx</a>`)
	assert.Contains(t, html, `<tr class="excluded" title="Not used for statistics"><td>2</td><td></td>`)
	assert.Contains(t, html, `action="/students/2/delete"`)
	assert.Contains(t, html, "&lt;i&gt;Bob&lt;/i&gt;")
	assert.NotContains(t, html, "<i>Bob</i>")
	assert.Contains(t, html, `<input name="physics" type="number" min="2" max="5">`)
}

func TestPage_UploadResult(t *testing.T) {
	result := &core.ImportResult{Source: "grades.txt", Rows: 4, Records: 3, Duplicates: 1}
	html := renderString(t, Page(PageData{Tab: TabUpload, Import: result}))
	assert.Contains(t, html, "Imported grades.txt: 4 rows, 3 used for statistics, 1 duplicate names merged.")
}

func TestPage_StatisticsAndCharts(t *testing.T) {
	svc := loadedService(t)
	report, err := svc.Statistics(context.Background())
	require.NoError(t, err)

	html := renderString(t, Page(PageData{Tab: TabStatistics, Statistics: &report}))
	assert.Contains(t, html, "<p>2 students included.</p>")
	assert.Contains(t, html, "<h2>Statistics by student</h2>")
	assert.Contains(t, html, "<tr><td>10A</td><td>Physics</td><td>5.00</td>")

	html = renderString(t, Page(PageData{Tab: TabCharts, Statistics: &report}))
	assert.Contains(t, html, `data-grouping="class"`)
	assert.Contains(t, html, `<meter min="0" max="5" value="5.00"></meter> Physics 5.00`)
}
