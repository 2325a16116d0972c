package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrid() Grid {
	return Grid{
		Header: DefaultHeader(),
		Rows: [][]string{
			{"Ann", "10A", "5", "4", "3", "2", "5"},
			{"Bob", "10A", "4", "4", "4", "4", "4"},
			{"Cid", "10B", "3", "3", "3", "3", "3"},
		},
	}
}

func TestGradebook_NoTable(t *testing.T) {
	b := NewGradebook()
	assert.False(t, b.Loaded())

	_, err := b.Snapshot()
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = b.DeleteRow(0)
	assert.ErrorIs(t, err, ErrNoTable)
	assert.ErrorIs(t, b.DeleteStudent("Ann"), ErrNoTable)
}

func TestGradebook_ReplaceDedupesByName(t *testing.T) {
	grid := Grid{
		Header: DefaultHeader(),
		Rows: [][]string{
			{"Ann", "10A", "5", "5", "5", "5", "5"},
			{"Bob", "10A", "4", "4", "4", "4", "4"},
			{"", "10C"},
			{"Ann", "11A", "2", "2", "2", "2", "2"},
			{""},
		},
	}

	b := NewGradebook()
	installed, summary := b.Replace(grid, "grades.csv")
	assert.Equal(t, ReplaceSummary{Rows: 4, Duplicates: 1}, summary)
	assert.Len(t, installed.Grid.Rows, 4)

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, installed, snap)
	assert.Equal(t, "grades.csv", snap.Source)
	assert.Equal(t, []string{"Ann", "11A", "2", "2", "2", "2", "2"}, snap.Grid.Rows[0])
	assert.Equal(t, "Bob", snap.Grid.Rows[1][ColName])

	// The caller's grid is not aliased.
	grid.Rows[1][ColName] = "Mallory"
	snap, _ = b.Snapshot()
	assert.Equal(t, "Bob", snap.Grid.Rows[1][ColName])
}

func TestGradebook_SnapshotIsCopy(t *testing.T) {
	b := NewGradebook()
	b.Replace(sampleGrid(), "")

	snap, err := b.Snapshot()
	require.NoError(t, err)
	snap.Grid.Rows[0][ColName] = "changed"
	snap.Grid.Header[0] = "changed"

	again, _ := b.Snapshot()
	assert.Equal(t, "Ann", again.Grid.Rows[0][ColName])
	assert.Equal(t, "Name", again.Grid.Header[0])
}

func TestGradebook_Upsert(t *testing.T) {
	tests := []struct {
		name        string
		form        StudentForm
		wantCreated bool
		wantRow     int
		wantCells   []string
	}{
		{
			name:      "existing student updated in place",
			form:      StudentForm{Name: "Bob", Class: "10C", Grades: [NumSubjects]string{"5", "", "3", "2", "x"}},
			wantRow:   1,
			wantCells: []string{"Bob", "10C", "5", "", "3", "2", "x"},
		},
		{
			name:        "new student appended",
			form:        StudentForm{Name: " Dan ", Class: "10B", Grades: [NumSubjects]string{"2", "3", "4", "5", "2"}},
			wantCreated: true,
			wantRow:     3,
			wantCells:   []string{"Dan", "10B", "2", "3", "4", "5", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewGradebook()
			b.Replace(sampleGrid(), "")

			res, err := b.Upsert(tt.form)
			require.NoError(t, err)
			assert.Equal(t, UpsertResult{Row: tt.wantRow, Created: tt.wantCreated}, res)

			snap, _ := b.Snapshot()
			assert.Equal(t, tt.wantCells, snap.Grid.Rows[tt.wantRow])
			if tt.wantCreated {
				assert.Len(t, snap.Grid.Rows, 4)
			} else {
				assert.Len(t, snap.Grid.Rows, 3)
			}
		})
	}
}

func TestGradebook_UpsertKeepsExtraColumns(t *testing.T) {
	grid := Grid{
		Header: append(DefaultHeader(), "Notes"),
		Rows:   [][]string{{"Ann", "10A", "5", "5", "5", "5", "5", "late"}},
	}
	b := NewGradebook()
	b.Replace(grid, "")

	_, err := b.Upsert(StudentForm{Name: "Ann", Class: "10B", Grades: [NumSubjects]string{"2", "2", "2", "2", "2"}})
	require.NoError(t, err)
	_, err = b.Upsert(StudentForm{Name: "Bob", Class: "10B"})
	require.NoError(t, err)

	snap, _ := b.Snapshot()
	assert.Equal(t, []string{"Ann", "10B", "2", "2", "2", "2", "2", "late"}, snap.Grid.Rows[0])
	assert.Len(t, snap.Grid.Rows[1], 8, "new rows are padded to the header width")
}

func TestGradebook_UpsertStartsTable(t *testing.T) {
	b := NewGradebook()

	res, err := b.Upsert(StudentForm{Name: "Ann", Class: "10A", Grades: [NumSubjects]string{"5", "4", "3", "2", "5"}})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.True(t, b.Loaded())

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, DefaultHeader(), snap.Grid.Header)
	require.Len(t, snap.Grid.Rows, 1)

	records, issues := Records(snap.Grid)
	assert.Empty(t, issues)
	assert.Equal(t, record("Ann", "10A", 5, 4, 3, 2, 5), records[0])
}

func TestGradebook_UpsertRejectsIncompleteForm(t *testing.T) {
	tests := []struct {
		name string
		form StudentForm
	}{
		{"missing name", StudentForm{Class: "10A"}},
		{"missing class", StudentForm{Name: "Ann", Class: "   "}},
		{"both missing", StudentForm{Grades: [NumSubjects]string{"5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewGradebook()
			b.Replace(sampleGrid(), "")
			before, _ := b.Snapshot()

			_, err := b.Upsert(tt.form)
			assert.ErrorIs(t, err, ErrMissingRequiredField)

			after, _ := b.Snapshot()
			assert.Equal(t, before, after)
		})
	}

	b := NewGradebook()
	_, err := b.Upsert(StudentForm{Name: "Ann"})
	assert.Error(t, err)
	assert.False(t, b.Loaded(), "a rejected entry does not start a table")
}

func TestGradebook_DeleteRow(t *testing.T) {
	b := NewGradebook()
	b.Replace(sampleGrid(), "")

	removed, err := b.DeleteRow(1)
	require.NoError(t, err)
	assert.Equal(t, "Bob", removed[ColName])

	snap, _ := b.Snapshot()
	require.Len(t, snap.Grid.Rows, 2)
	assert.Equal(t, "Ann", snap.Grid.Rows[0][ColName])
	assert.Equal(t, "Cid", snap.Grid.Rows[1][ColName])

	for _, idx := range []int{-1, 2, 10} {
		_, err := b.DeleteRow(idx)
		assert.True(t, errors.Is(err, ErrRowNotFound), "index %d", idx)
	}
}

func TestGradebook_DeleteStudent(t *testing.T) {
	b := NewGradebook()
	b.Replace(sampleGrid(), "")

	require.NoError(t, b.DeleteStudent("Cid"))
	assert.ErrorIs(t, b.DeleteStudent("Cid"), ErrStudentNotFound)
	assert.ErrorIs(t, b.DeleteStudent("ann"), ErrStudentNotFound, "names match exactly")

	snap, _ := b.Snapshot()
	records, _ := Records(snap.Grid)
	result := Run(records)
	_, ok := result.ByClass.Get("10B")
	assert.False(t, ok)
	_, ok = result.ByStudent.Get("Cid")
	assert.False(t, ok)
}

func TestGradebook_Revision(t *testing.T) {
	b := NewGradebook()
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.Replace(sampleGrid(), "")
	first, _ := b.Snapshot()
	assert.NotEmpty(t, first.Revision)
	assert.Equal(t, now, first.UpdatedAt)

	_, err := b.Upsert(StudentForm{Name: "Dan", Class: "10A"})
	require.NoError(t, err)
	second, _ := b.Snapshot()
	assert.NotEqual(t, first.Revision, second.Revision)

	// Reads do not bump the revision.
	third, _ := b.Snapshot()
	assert.Equal(t, second.Revision, third.Revision)
}

func TestGradebook_Clear(t *testing.T) {
	b := NewGradebook()
	b.Replace(sampleGrid(), "grades.txt")
	b.Clear()

	assert.False(t, b.Loaded())
	_, err := b.Snapshot()
	assert.ErrorIs(t, err, ErrNoTable)
}
