package tsdb

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/SSYernar/Low-Latency-Time-Series-Database-TSDB-for-Market-Data/internal/column"
)

// ErrClosed is returned by any operation attempted on a Db after Close has
// been called.
var ErrClosed = errors.New("tsdb: database is closed")

// IOError indicates a failure reading or writing the underlying column
// files (disk full, permission denied, file removed out from under the
// process, a failed mmap or msync syscall, and similar).
//
// The original underlying error can be accessed via errors.Unwrap.
type IOError struct {
	Op    string
	Path  string
	cause error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("tsdb: io error during %s on %s: %v", e.Op, e.Path, e.cause)
	}
	return fmt.Sprintf("tsdb: io error during %s: %v", e.Op, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// InvalidFormatError indicates the on-disk layout of a column file does not
// match what this package expects: a truncated header, or a committed_count
// that exceeds the file's allocated capacity. A file whose size past the
// header is not a whole number of slots is not rejected; the trailing
// partial slot is ignored.
type InvalidFormatError struct {
	Path  string
	cause error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("tsdb: invalid column format in %s: %v", e.Path, e.cause)
}

func (e *InvalidFormatError) Unwrap() error { return e.cause }

// OutOfRangeError indicates a query or row lookup referenced a row index
// at or beyond a column's committed row count. A timestamp range that
// matches no rows is not an error; it yields an empty result.
type OutOfRangeError struct {
	Requested string
	cause     error
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("tsdb: out of range: %s", e.Requested)
}

func (e *OutOfRangeError) Unwrap() error { return e.cause }

// ParseError indicates input that cannot be interpreted. No function in
// this package returns it: out-of-range option values are clamped instead
// (a negative queue capacity becomes 0).
type ParseError struct {
	Field string
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tsdb: parse error: %s: %v", e.Field, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

// translateError normalizes errors surfaced from internal/column and
// internal/mmap into the IOError/InvalidFormatError taxonomy callers of
// this package are expected to match against with errors.As.
func translateError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, column.ErrInvalidFormat) {
		return &InvalidFormatError{Path: path, cause: err}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &IOError{Op: op, Path: path, cause: err}
	}

	return &IOError{Op: op, Path: path, cause: err}
}
