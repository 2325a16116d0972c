package core

import (
	"math"
	"strconv"
)

// round2 rounds to two decimals for reports.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatDecimal renders v with two decimals, as the statistics table shows it.
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatPercent renders a percentage with two decimals and a trailing '%'.
func FormatPercent(v float64) string {
	return FormatDecimal(v) + "%"
}

// StatisticsRow is one display line of a statistics table.
type StatisticsRow struct {
	Key         string
	Subject     Subject
	Average     string
	Median      string
	Counts      []int    // grades 5, 4, 3, 2
	Percentages []string // grades 5, 4, 3, 2
}

// StatisticsRows flattens grouped statistics into display lines, one per
// group and subject, groups in first-seen order.
func StatisticsRows(stats *GroupedStatistics) []StatisticsRow {
	groups := stats.Groups()
	rows := make([]StatisticsRow, 0, len(groups)*NumSubjects)

	for _, grp := range groups {
		for _, s := range Subjects() {
			st := grp.Subjects[s]
			row := StatisticsRow{
				Key:     grp.Key,
				Subject: s,
				Average: FormatDecimal(st.Average),
				Median:  FormatDecimal(st.Median),
			}
			for _, g := range descendingGrades() {
				row.Counts = append(row.Counts, st.Counts.Of(g))
				row.Percentages = append(row.Percentages, FormatPercent(st.Percentages.Of(g)))
			}
			rows = append(rows, row)
		}
	}

	return rows
}
