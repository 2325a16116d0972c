package core

// Chart is the data a chart renderer needs for one grouping: the group keys
// as labels and one dataset of per-group averages for every subject.
// The renderer owns the drawable; a Chart is plain data rebuilt on demand.
type Chart struct {
	Grouping Grouping       `json:"grouping"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ChartDataset is the series for one subject.
type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// subjectColors gives every subject a stable color.
var subjectColors = [NumSubjects]string{"#4E79A7", "#F28E2B", "#59A14F", "#E15759", "#B07AA1"}

// SubjectColor returns the chart color of a subject.
func SubjectColor(s Subject) string {
	return subjectColors[s]
}

// BuildChart turns grouped statistics into chart series.
func BuildChart(grouping Grouping, stats *GroupedStatistics) Chart {
	chart := Chart{
		Grouping: grouping,
		Labels:   stats.Keys(),
		Datasets: make([]ChartDataset, 0, NumSubjects),
	}
	if chart.Labels == nil {
		chart.Labels = []string{}
	}

	groups := stats.Groups()
	for _, s := range Subjects() {
		ds := ChartDataset{
			Label:           s.String(),
			Data:            make([]float64, len(groups)),
			BackgroundColor: SubjectColor(s),
			BorderWidth:     1,
		}
		for i, grp := range groups {
			ds.Data[i] = grp.Subjects[s].Average
		}
		chart.Datasets = append(chart.Datasets, ds)
	}

	return chart
}
