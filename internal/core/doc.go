// Package core provides the business logic for the gradebook.
//
// This package is the heart of the gradebook, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Codec: Delimited text is parsed into a [Grid] and serialized back.
//   - Records: Grid rows are typed into [StudentRecord] values; rows that
//     cannot be used are reported as [RowIssue] and kept for display.
//   - Aggregation: [Run] groups records by class and by student and computes
//     per-subject average, median, grade counts and percentages.
//   - Gradebook: The single in-memory table, shared by all requests.
//   - Service: The main entry point for all operations (import, query,
//     export, manual edits).
//
// # Import
//
// Uploads are read in a streaming fashion. The flow is:
//
//  1. Client calls [Service.Import] with an io.Reader
//  2. The reader is wrapped with a size limit (see [WrapUpload])
//  3. [ParseReader] drops a leading BOM, replaces invalid UTF-8 and splits
//     the text into a header and data rows
//  4. The table replaces the previous one; duplicate names are merged
//  5. Row problems are returned in the [ImportResult], never as an error
//
// # Statistics
//
// Statistics are recomputed from the current table on every request and are
// never cached. Both views (class and student) use independent accumulators,
// and groups keep the order in which their key was first seen.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - ROW001-ROW002: Row errors (malformed, not found)
//   - GRD001: Grade errors
//   - VAL001-VAL003: Validation errors (request body, required fields)
//   - FILE001-FILE006: File errors (size, format, empty, export kind)
//   - TBL001-TBL003: Table errors (no table, student, grouping)
package core
