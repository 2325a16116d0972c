package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChart(t *testing.T) {
	stats := Aggregate([]StudentRecord{
		record("A", "10A", 5, 4),
		record("B", "10B", 2, 0),
		record("C", "10A", 3, 2),
	}, ByClassKey)

	chart := BuildChart(GroupByClass, stats)

	assert.Equal(t, GroupByClass, chart.Grouping)
	assert.Equal(t, []string{"10A", "10B"}, chart.Labels)
	require.Len(t, chart.Datasets, NumSubjects)

	for i, ds := range chart.Datasets {
		s := Subject(i)
		assert.Equal(t, s.String(), ds.Label)
		assert.Equal(t, SubjectColor(s), ds.BackgroundColor)
		assert.Len(t, ds.Data, len(chart.Labels))
	}
	assert.Equal(t, []float64{4, 2}, chart.Datasets[Physics].Data)
	assert.Equal(t, []float64{3, 0}, chart.Datasets[Biology].Data, "a group without grades plots zero")
}

func TestBuildChart_Empty(t *testing.T) {
	chart := BuildChart(GroupByStudent, Aggregate(nil, ByNameKey))

	data, err := json.Marshal(chart)
	require.NoError(t, err)

	var decoded struct {
		Labels   []string `json:"labels"`
		Datasets []struct {
			Data []float64 `json:"data"`
		} `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotNil(t, decoded.Labels)
	assert.Empty(t, decoded.Labels)
	require.Len(t, decoded.Datasets, NumSubjects)
	assert.Empty(t, decoded.Datasets[0].Data)
}

func TestSubjectColors_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range Subjects() {
		c := SubjectColor(s)
		assert.False(t, seen[c], "color %s reused", c)
		seen[c] = true
	}
}
