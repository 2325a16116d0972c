package templates

import (
	"strings"

	"github.com/JonMunkholm/gradebook/internal/core"
)

// Page tabs.
const (
	TabUpload     = "upload"
	TabTable      = "table"
	TabStatistics = "statistics"
	TabCharts     = "charts"
)

// Tab is one entry of the page navigation.
type Tab struct {
	Key   string
	Label string
}

var tabs = []Tab{
	{TabUpload, "Upload"},
	{TabTable, "Table"},
	{TabStatistics, "Statistics"},
	{TabCharts, "Charts"},
}

// ValidTab reports whether tab names a page tab.
func ValidTab(tab string) bool {
	for _, t := range tabs {
		if t.Key == tab {
			return true
		}
	}
	return false
}

// PageData is everything the page template shows.
type PageData struct {
	Tab string

	// Table is nil until a table has been loaded.
	Table *core.TableView

	// Import is set right after an upload.
	Import *core.ImportResult

	// Statistics is set on the statistics and charts tabs.
	Statistics *core.StatisticsReport

	Error *core.UserMessage
}

// GradeField is the form field name of a subject's grade.
func GradeField(s core.Subject) string {
	return strings.ToLower(s.String())
}

var exportKinds = []core.ExportKind{core.ExportText, core.ExportCSV, core.ExportXLSX}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
