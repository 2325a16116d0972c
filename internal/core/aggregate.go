package core

// aggregate.go groups student records by a key and computes per-subject
// statistics for every group.
//
// Aggregation is a two-step process:
//  1. Scan: records are visited in order; each new key gets one empty
//     accumulator per subject, and valid grades are appended to them.
//  2. Finalize: every accumulator is turned into average, median, counts
//     and percentages.
//
// Group order is the first-seen order of the key during the scan.

import (
	"encoding/json"
	"sort"
)

// KeyFunc extracts the group key from a record.
type KeyFunc func(StudentRecord) string

// ByClassKey groups records by class name.
func ByClassKey(r StudentRecord) string { return r.Class }

// ByNameKey groups records by student name.
func ByNameKey(r StudentRecord) string { return r.Name }

// GroupedStatistics is an insertion-ordered map of group key to statistics.
type GroupedStatistics struct {
	groups []GroupStatistics
	index  map[string]int
}

func newGroupedStatistics() *GroupedStatistics {
	return &GroupedStatistics{index: make(map[string]int)}
}

// Len returns the number of groups.
func (g *GroupedStatistics) Len() int {
	if g == nil {
		return 0
	}
	return len(g.groups)
}

// Keys returns group keys in first-seen order.
func (g *GroupedStatistics) Keys() []string {
	if g == nil {
		return nil
	}
	keys := make([]string, len(g.groups))
	for i, grp := range g.groups {
		keys[i] = grp.Key
	}
	return keys
}

// Get returns the statistics for a key.
func (g *GroupedStatistics) Get(key string) (GroupStatistics, bool) {
	if g == nil {
		return GroupStatistics{}, false
	}
	i, ok := g.index[key]
	if !ok {
		return GroupStatistics{}, false
	}
	return g.groups[i], true
}

// Groups returns all groups in first-seen order.
func (g *GroupedStatistics) Groups() []GroupStatistics {
	if g == nil {
		return nil
	}
	out := make([]GroupStatistics, len(g.groups))
	copy(out, g.groups)
	return out
}

// MarshalJSON renders the groups as an ordered array.
func (g *GroupedStatistics) MarshalJSON() ([]byte, error) {
	if g == nil {
		return []byte("[]"), nil
	}
	groups := g.groups
	if groups == nil {
		groups = []GroupStatistics{}
	}
	return json.Marshal(groups)
}

// slot returns the accumulator set for key, creating it on first encounter.
func (g *GroupedStatistics) slot(key string) *GroupStatistics {
	if i, ok := g.index[key]; ok {
		return &g.groups[i]
	}
	g.groups = append(g.groups, GroupStatistics{Key: key})
	g.index[key] = len(g.groups) - 1
	return &g.groups[len(g.groups)-1]
}

// Aggregate groups records by keyOf and computes statistics for every
// (group, subject) cell. Grades outside the tracked set are skipped.
// The result depends only on record order and grade values.
func Aggregate(records []StudentRecord, keyOf KeyFunc) *GroupedStatistics {
	out := newGroupedStatistics()

	for _, rec := range records {
		grp := out.slot(keyOf(rec))
		for i, grade := range rec.Grades {
			if grade.Valid() {
				grp.Subjects[i].Values = append(grp.Subjects[i].Values, grade)
			}
		}
	}

	for gi := range out.groups {
		for si := range out.groups[gi].Subjects {
			finalize(&out.groups[gi].Subjects[si])
		}
	}

	return out
}

// finalize fills the derived fields of a cell from its values.
func finalize(st *SubjectStatistics) {
	st.Average = Average(st.Values)
	st.Median = Median(st.Values)
	st.Counts = CountGrades(st.Values)
	st.Percentages = Percentages(st.Counts, len(st.Values))
}

// Average returns the arithmetic mean of grades, or 0 for an empty list.
func Average(grades []Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	sum := 0
	for _, g := range grades {
		sum += int(g)
	}
	return float64(sum) / float64(len(grades))
}

// Median returns the median of grades, or 0 for an empty list.
// For an even count it is the mean of the two middle values.
func Median(grades []Grade) float64 {
	n := len(grades)
	if n == 0 {
		return 0
	}
	sorted := make([]Grade, n)
	copy(sorted, grades)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := n / 2
	if n%2 != 0 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// CountGrades builds the distribution of tracked grades.
func CountGrades(grades []Grade) Distribution {
	var d Distribution
	for _, g := range grades {
		if g.Valid() {
			d[g.Index()]++
		}
	}
	return d
}

// Percentages converts counts into shares of total. All shares are 0 when
// total is 0.
func Percentages(counts Distribution, total int) Shares {
	var p Shares
	if total == 0 {
		return p
	}
	for i, n := range counts {
		p[i] = float64(n) / float64(total) * 100
	}
	return p
}
