// Package core provides the business logic for the gradebook.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Subject identifies one of the fixed gradebook subjects.
// The numeric value is the subject index used by records and statistics.
type Subject int

const (
	Physics Subject = iota
	Biology
	Math
	Literature
	Chemistry
)

// NumSubjects is the number of subjects every record carries a grade for.
const NumSubjects = 5

// subjectNames holds display names in canonical subject order.
var subjectNames = [NumSubjects]string{"Physics", "Biology", "Math", "Literature", "Chemistry"}

// Subjects returns all subjects in canonical order.
func Subjects() []Subject {
	return []Subject{Physics, Biology, Math, Literature, Chemistry}
}

// String returns the display name of the subject.
func (s Subject) String() string {
	if s < 0 || int(s) >= NumSubjects {
		return "Subject(" + strconv.Itoa(int(s)) + ")"
	}
	return subjectNames[s]
}

// Grade is a single numeric grade. The zero value means "no grade".
type Grade int

const (
	// NoGrade marks an absent or unparseable cell.
	NoGrade Grade = 0

	MinGrade Grade = 2
	MaxGrade Grade = 5
)

// NumGradeValues is the size of the grade distribution (2, 3, 4, 5).
const NumGradeValues = int(MaxGrade-MinGrade) + 1

// GradeValues returns the grades tracked in distributions, lowest first.
func GradeValues() []Grade {
	return []Grade{2, 3, 4, 5}
}

// ParseGrade parses a cell into a Grade.
// Returns ok=false when the cell is not an integer.
func ParseGrade(s string) (Grade, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoGrade, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return NoGrade, false
	}
	return Grade(n), true
}

// Valid reports whether the grade takes part in aggregation.
func (g Grade) Valid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Index returns the distribution slot for a valid grade.
func (g Grade) Index() int {
	return int(g - MinGrade)
}

// String renders the grade as a table cell; absent grades render empty.
func (g Grade) String() string {
	if g == NoGrade {
		return ""
	}
	return strconv.Itoa(int(g))
}

// StudentRecord is one gradebook row: identity fields plus one grade per subject.
type StudentRecord struct {
	Name   string
	Class  string
	Grades [NumSubjects]Grade
}

// Grade returns the record's grade for a subject.
func (r StudentRecord) Grade(s Subject) Grade {
	return r.Grades[s]
}

// Cells renders the record as a content row in header column order.
func (r StudentRecord) Cells() []string {
	cells := make([]string, 0, RecordColumns)
	cells = append(cells, r.Name, r.Class)
	for _, g := range r.Grades {
		cells = append(cells, g.String())
	}
	return cells
}

// Column positions of the gradebook header.
const (
	ColName         = 0
	ColClass        = 1
	ColFirstSubject = 2

	// RecordColumns is the number of content columns a record occupies.
	RecordColumns = ColFirstSubject + NumSubjects
)

// DefaultHeader returns the header used when a table is started from scratch.
func DefaultHeader() []string {
	h := []string{"Name", "Class"}
	for _, s := range Subjects() {
		h = append(h, s.String())
	}
	return h
}

// Distribution counts occurrences per grade value, indexed by Grade.Index.
type Distribution [NumGradeValues]int

// Of returns the count for g, or 0 for grades outside the tracked set.
func (d Distribution) Of(g Grade) int {
	if !g.Valid() {
		return 0
	}
	return d[g.Index()]
}

// Total returns the sum of all counts.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// MarshalJSON renders the distribution keyed by grade value.
func (d Distribution) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, NumGradeValues)
	for _, g := range GradeValues() {
		m[g.String()] = d[g.Index()]
	}
	return json.Marshal(m)
}

// Shares holds per-grade percentages, indexed by Grade.Index.
type Shares [NumGradeValues]float64

// Of returns the percentage for g, or 0 for grades outside the tracked set.
func (p Shares) Of(g Grade) float64 {
	if !g.Valid() {
		return 0
	}
	return p[g.Index()]
}

// MarshalJSON renders the percentages keyed by grade value.
func (p Shares) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumGradeValues)
	for _, g := range GradeValues() {
		m[g.String()] = p[g.Index()]
	}
	return json.Marshal(m)
}

// SubjectStatistics is the aggregate for one (group, subject) cell.
type SubjectStatistics struct {
	Values      []Grade      `json:"values"`
	Average     float64      `json:"average"`
	Median      float64      `json:"median"`
	Counts      Distribution `json:"counts"`
	Percentages Shares       `json:"percentages"`
}

// GroupStatistics holds per-subject statistics for one group key.
// Subjects[i] always belongs to Subject(i).
type GroupStatistics struct {
	Key      string                         `json:"key"`
	Subjects [NumSubjects]SubjectStatistics `json:"subjects"`
}

// AggregationResult carries both statistics views.
type AggregationResult struct {
	ByClass   *GroupedStatistics `json:"byClass"`
	ByStudent *GroupedStatistics `json:"byStudent"`
}

// Grouping selects which statistics view a caller wants.
type Grouping string

const (
	GroupByClass   Grouping = "class"
	GroupByStudent Grouping = "student"
)

// View returns the statistics for the requested grouping.
func (r AggregationResult) View(g Grouping) (*GroupedStatistics, bool) {
	switch g {
	case GroupByClass:
		return r.ByClass, true
	case GroupByStudent:
		return r.ByStudent, true
	default:
		return nil, false
	}
}
