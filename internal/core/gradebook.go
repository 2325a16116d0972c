package core

// gradebook.go holds the single in-memory grade table.
//
// The table is shared by every request, so all reads and mutations go
// through one RWMutex. Readers always get a deep copy; statistics are then
// computed on that copy without holding the lock.

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoTable is returned by reads and exports before any table exists.
	ErrNoTable = errors.New("no table loaded")

	// ErrRowNotFound is returned when a row index is out of range.
	ErrRowNotFound = errors.New("row not found")

	// ErrStudentNotFound is returned when no row carries the given name.
	ErrStudentNotFound = errors.New("student not found")
)

// Snapshot is a consistent copy of the gradebook at one revision.
type Snapshot struct {
	Revision  string    `json:"revision"`
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	Grid      Grid      `json:"grid"`
}

// Gradebook is the in-memory student table.
type Gradebook struct {
	mu        sync.RWMutex
	loaded    bool
	revision  uuid.UUID
	source    string
	updatedAt time.Time
	grid      Grid

	now func() time.Time
}

// NewGradebook returns an empty gradebook.
func NewGradebook() *Gradebook {
	return &Gradebook{now: time.Now}
}

// ReplaceSummary reports what a table replacement did.
type ReplaceSummary struct {
	Rows       int `json:"rows"`
	Duplicates int `json:"duplicates"` // Rows merged into an earlier row with the same name
}

// Replace discards the current table and installs grid. A later row with
// the same student name overwrites the earlier one in its original position.
// The returned snapshot is taken under the same lock, so it is exactly the
// table that was installed.
func (b *Gradebook) Replace(grid Grid, source string) (Snapshot, ReplaceSummary) {
	grid = grid.Clone()
	rows, dups := dedupeByName(grid.Rows)
	grid.Rows = rows

	b.mu.Lock()
	defer b.mu.Unlock()

	b.loaded = true
	b.source = source
	b.grid = grid
	b.touch()

	return b.snapshotLocked(), ReplaceSummary{Rows: len(rows), Duplicates: dups}
}

// dedupeByName keeps one row per non-empty name in first-seen position,
// holding the content of the last occurrence.
func dedupeByName(rows [][]string) ([][]string, int) {
	out := make([][]string, 0, len(rows))
	seen := make(map[string]int)
	dups := 0

	for _, row := range rows {
		if len(row) == 0 || row[ColName] == "" {
			out = append(out, row)
			continue
		}
		if i, ok := seen[row[ColName]]; ok {
			out[i] = row
			dups++
			continue
		}
		seen[row[ColName]] = len(out)
		out = append(out, row)
	}

	return out, dups
}

// UpsertResult reports whether an upsert created or updated a row.
type UpsertResult struct {
	Row     int  `json:"row"` // 0-based index of the affected row
	Created bool `json:"created"`
}

// Upsert validates form and writes it to the row with the same name, or
// appends a new row. Without a loaded table a new one is started with the
// default header. An invalid form leaves the table untouched.
func (b *Gradebook) Upsert(form StudentForm) (UpsertResult, error) {
	form, err := ValidateForm(form)
	if err != nil {
		return UpsertResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		b.loaded = true
		b.grid = Grid{Header: DefaultHeader()}
	}

	width := RequiredColumns(b.grid.Header)
	content := form.Row()

	for i, row := range b.grid.Rows {
		if len(row) == 0 || row[ColName] != form.Name {
			continue
		}
		if len(row) < width {
			row = fitRow(row, width)
		}
		copy(row[ColClass:RecordColumns], content[ColClass:])
		b.grid.Rows[i] = row
		b.touch()
		return UpsertResult{Row: i}, nil
	}

	b.grid.Rows = append(b.grid.Rows, fitRow(content, width))
	b.touch()
	return UpsertResult{Row: len(b.grid.Rows) - 1, Created: true}, nil
}

// DeleteRow removes the data row at index and returns its cells.
func (b *Gradebook) DeleteRow(index int) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		return nil, ErrNoTable
	}
	if index < 0 || index >= len(b.grid.Rows) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrRowNotFound, index, len(b.grid.Rows))
	}

	removed := b.grid.Rows[index]
	b.grid.Rows = append(b.grid.Rows[:index:index], b.grid.Rows[index+1:]...)
	b.touch()
	return removed, nil
}

// DeleteStudent removes the row whose name matches exactly.
func (b *Gradebook) DeleteStudent(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		return ErrNoTable
	}
	for i, row := range b.grid.Rows {
		if len(row) > 0 && row[ColName] == name {
			b.grid.Rows = append(b.grid.Rows[:i:i], b.grid.Rows[i+1:]...)
			b.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrStudentNotFound, name)
}

// Snapshot returns a copy of the current table.
func (b *Gradebook) Snapshot() (Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.loaded {
		return Snapshot{}, ErrNoTable
	}
	return b.snapshotLocked(), nil
}

// snapshotLocked copies the table. Caller must hold the lock.
func (b *Gradebook) snapshotLocked() Snapshot {
	return Snapshot{
		Revision:  b.revision.String(),
		Source:    b.source,
		UpdatedAt: b.updatedAt,
		Grid:      b.grid.Clone(),
	}
}

// Loaded reports whether a table exists.
func (b *Gradebook) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// Clear drops the table entirely.
func (b *Gradebook) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.loaded = false
	b.source = ""
	b.grid = Grid{}
	b.touch()
}

// touch starts a new revision. Caller must hold the write lock.
func (b *Gradebook) touch() {
	b.revision = uuid.New()
	if b.now != nil {
		b.updatedAt = b.now()
	} else {
		b.updatedAt = time.Now()
	}
}
