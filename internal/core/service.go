package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/gradebook/internal/logging"
)

// ErrEmptyFile is returned when an upload holds no header row.
var ErrEmptyFile = errors.New("empty file")

// DefaultMaxFileSize is the upload limit used when none is configured (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// ServiceConfig holds the codec settings of a Service.
type ServiceConfig struct {
	// Separator delimits fields of imported files.
	Separator rune

	// Export controls txt/csv export formatting.
	Export SerializeOptions

	// MaxFileSize limits uploads in bytes.
	MaxFileSize int64

	// MaxConcurrentImports bounds imports parsed at the same time.
	MaxConcurrentImports int

	// ImportWait is how long an import waits for a free slot.
	ImportWait time.Duration
}

// DefaultServiceConfig mirrors the gradebook's stock behavior: ';' on
// import, ';' and CRLF without quoting on export.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Separator:            DefaultSeparator,
		Export:               DefaultTextOptions(),
		MaxFileSize:          DefaultMaxFileSize,
		MaxConcurrentImports: DefaultMaxConcurrentImports,
		ImportWait:           DefaultImportWait,
	}
}

// Observer receives notifications about gradebook activity.
// Implementations must be safe for concurrent use.
type Observer interface {
	ImportCompleted(rows int, issues []RowIssue)
	ImportFailed(err error)
	StatisticsComputed(records int, elapsed time.Duration)
	Exported(kind ExportKind)
	TableChanged(rows int)
}

type nopObserver struct{}

func (nopObserver) ImportCompleted(int, []RowIssue) {}
func (nopObserver) ImportFailed(error) {}
func (nopObserver) StatisticsComputed(int, time.Duration) {}
func (nopObserver) Exported(ExportKind) {}
func (nopObserver) TableChanged(int) {}

// Service provides the gradebook operations used by the web layer.
type Service struct {
	cfg      ServiceConfig
	book     *Gradebook
	imports  *ImportLimiter
	observer Observer
}

// Option customizes a Service.
type Option func(*Service)

// WithObserver registers an activity observer.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithGradebook makes the service operate on an existing gradebook.
func WithGradebook(b *Gradebook) Option {
	return func(s *Service) {
		if b != nil {
			s.book = b
		}
	}
}

// NewService creates a new Service instance.
func NewService(cfg ServiceConfig, opts ...Option) *Service {
	if cfg.Separator == 0 {
		cfg.Separator = DefaultSeparator
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.MaxConcurrentImports <= 0 {
		cfg.MaxConcurrentImports = DefaultMaxConcurrentImports
	}
	if cfg.ImportWait <= 0 {
		cfg.ImportWait = DefaultImportWait
	}

	s := &Service{
		cfg:      cfg,
		book:     NewGradebook(),
		imports:  NewImportLimiter(cfg.MaxConcurrentImports, cfg.ImportWait),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Drain waits for running imports to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.imports.WaitForDrain(ctx)
}

// Config returns the service configuration.
func (s *Service) Config() ServiceConfig {
	return s.cfg
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	Revision       string            `json:"revision"`
	Source         string            `json:"source"`
	Rows           int               `json:"rows"`
	Records        int               `json:"records"`
	Duplicates     int               `json:"duplicates"`
	Bytes          int64             `json:"bytes"`
	Issues         []RowIssue        `json:"issues,omitempty"`
	HeaderWarnings []ValidationError `json:"headerWarnings,omitempty"`
}

// Import replaces the table with the delimited file read from r.
// Row and grade problems are reported in the result, not as errors.
func (s *Service) Import(ctx context.Context, r io.Reader, source string) (ImportResult, error) {
	logger := logging.WithFields(ctx, "source", source)

	if err := s.imports.Acquire(ctx); err != nil {
		logger.Warn("import rejected", "error", err, "imports", s.imports.Status())
		s.observer.ImportFailed(err)
		return ImportResult{}, fmt.Errorf("import %s: %w", source, err)
	}
	defer s.imports.Release()

	counter := WrapUpload(r, s.cfg.MaxFileSize)
	grid, err := ParseReader(counter, s.cfg.Separator)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			err = fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.cfg.MaxFileSize)
		}
		logger.Warn("import failed", "error", err, "bytes", counter.BytesRead)
		s.observer.ImportFailed(err)
		return ImportResult{}, fmt.Errorf("import %s: %w", source, err)
	}
	if len(grid.Header) == 0 {
		logger.Warn("import rejected: no header row")
		s.observer.ImportFailed(ErrEmptyFile)
		return ImportResult{}, fmt.Errorf("import %s: %w", source, ErrEmptyFile)
	}

	snap, summary := s.book.Replace(grid, source)
	records, issues := Records(snap.Grid)

	result := ImportResult{
		Revision:       snap.Revision,
		Source:         source,
		Rows:           summary.Rows,
		Records:        len(records),
		Duplicates:     summary.Duplicates,
		Bytes:          counter.BytesRead,
		Issues:         issues,
		HeaderWarnings: ValidateHeader(snap.Grid.Header),
	}

	logger.Info("table imported",
		"revision", result.Revision,
		"rows", result.Rows,
		"records", result.Records,
		"duplicates", result.Duplicates,
		"issues", len(issues),
		"bytes", result.Bytes,
	)
	for _, issue := range issues {
		logger.Debug("row issue", "issue", issue.Error())
	}

	s.observer.ImportCompleted(result.Rows, issues)
	s.observer.TableChanged(result.Rows)
	return result, nil
}

// ImportText imports pasted text.
func (s *Service) ImportText(ctx context.Context, text, source string) (ImportResult, error) {
	return s.Import(ctx, strings.NewReader(text), source)
}

// TableView is the table as shown to users, with aggregation diagnostics.
type TableView struct {
	Snapshot
	Issues []RowIssue `json:"issues,omitempty"`

	// Excluded holds the 0-based indexes of rows left out of statistics.
	Excluded map[int]bool `json:"-"`
}

// Table returns the current table. Returns ErrNoTable before any import or
// manual entry.
func (s *Service) Table(ctx context.Context) (TableView, error) {
	snap, err := s.book.Snapshot()
	if err != nil {
		return TableView{}, err
	}

	_, issues := Records(snap.Grid)
	view := TableView{Snapshot: snap, Issues: issues, Excluded: make(map[int]bool)}
	for _, issue := range issues {
		if errors.Is(issue, ErrMalformedRow) {
			view.Excluded[issue.Row-1] = true
		}
	}
	return view, nil
}

// StatisticsReport is the output of one aggregation run.
type StatisticsReport struct {
	Revision string            `json:"revision"`
	Records  int               `json:"records"`
	Result   AggregationResult `json:"statistics"`
	Issues   []RowIssue        `json:"issues,omitempty"`
}

// Statistics recomputes both statistics views from the current table.
// Without a table it returns ErrNoTable and logs a diagnostic.
func (s *Service) Statistics(ctx context.Context) (StatisticsReport, error) {
	snap, err := s.book.Snapshot()
	if err != nil {
		logging.FromContext(ctx).Info("statistics requested without a table")
		return StatisticsReport{}, err
	}

	start := time.Now()
	records, issues := Records(snap.Grid)
	result := Run(records)
	elapsed := time.Since(start)

	s.observer.StatisticsComputed(len(records), elapsed)
	logging.FromContext(ctx).Debug("statistics computed",
		"revision", snap.Revision,
		"records", len(records),
		"classes", result.ByClass.Len(),
		"students", result.ByStudent.Len(),
		"duration_ms", elapsed.Milliseconds(),
	)

	return StatisticsReport{
		Revision: snap.Revision,
		Records:  len(records),
		Result:   result,
		Issues:   issues,
	}, nil
}

// Chart returns chart series for one grouping.
func (s *Service) Chart(ctx context.Context, grouping Grouping) (Chart, error) {
	report, err := s.Statistics(ctx)
	if err != nil {
		return Chart{}, err
	}
	view, ok := report.Result.View(grouping)
	if !ok {
		return Chart{}, fmt.Errorf("unknown grouping %q", grouping)
	}
	return BuildChart(grouping, view), nil
}

// Export is a rendered download.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Export renders the table (txt, csv) or its statistics (xlsx).
// Without a table it returns ErrNoTable.
func (s *Service) Export(ctx context.Context, kind ExportKind) (Export, error) {
	logger := logging.WithFields(ctx, "kind", string(kind))

	snap, err := s.book.Snapshot()
	if err != nil {
		logger.Info("export requested without a table")
		return Export{}, err
	}

	out := Export{FileName: kind.FileName(), ContentType: kind.ContentType()}

	switch kind {
	case ExportText, ExportCSV:
		if n := OverflowRows(snap.Grid, s.cfg.Export.UIColumns); n > 0 {
			logger.Warn("export drops cells beyond the header",
				"revision", snap.Revision,
				"rows", n,
				"columns", len(snap.Grid.Header)-s.cfg.Export.UIColumns,
			)
		}
		out.Data = Encode(Serialize(snap.Grid, s.cfg.Export))
	case ExportXLSX:
		records, _ := Records(snap.Grid)
		var buf bytes.Buffer
		if err := WriteWorkbook(&buf, Run(records)); err != nil {
			logger.Error("export failed", "error", err)
			return Export{}, fmt.Errorf("export %s: %w", kind, err)
		}
		out.Data = buf.Bytes()
	default:
		return Export{}, fmt.Errorf("unknown export kind %q", kind)
	}

	logger.Info("table exported", "revision", snap.Revision, "bytes", len(out.Data))
	s.observer.Exported(kind)
	return out, nil
}

// Upsert adds a student or updates the row with the same name.
func (s *Service) Upsert(ctx context.Context, form StudentForm) (UpsertResult, error) {
	logger := logging.FromContext(ctx)

	res, err := s.book.Upsert(form)
	if err != nil {
		logger.Info("student entry rejected", "error", err)
		return UpsertResult{}, err
	}

	action := "updated"
	if res.Created {
		action = "added"
	}
	logger.Info("student "+action, "name", strings.TrimSpace(form.Name), "row", res.Row)
	s.tableChanged()
	return res, nil
}

// DeleteRow removes a data row by 0-based index.
func (s *Service) DeleteRow(ctx context.Context, index int) error {
	removed, err := s.book.DeleteRow(index)
	if err != nil {
		return err
	}
	name := ""
	if len(removed) > 0 {
		name = removed[ColName]
	}
	logging.FromContext(ctx).Info("row deleted", "row", index, "name", name)
	s.tableChanged()
	return nil
}

// DeleteStudent removes the row of the named student.
func (s *Service) DeleteStudent(ctx context.Context, name string) error {
	if err := s.book.DeleteStudent(name); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("student deleted", "name", name)
	s.tableChanged()
	return nil
}

func (s *Service) tableChanged() {
	if snap, err := s.book.Snapshot(); err == nil {
		s.observer.TableChanged(len(snap.Grid.Rows))
	}
}
