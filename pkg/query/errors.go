package query

import "errors"

var (
	// ErrDoesNotExist is returned by Get, First, Last, Latest and Earliest
	// when no row matches.
	ErrDoesNotExist = errors.New("matching row does not exist")

	// ErrMultipleRows is returned by Get when more than one row matches.
	ErrMultipleRows = errors.New("get returned more than one row")

	// ErrReadOnlySource is returned by write operations on derived sources.
	ErrReadOnlySource = errors.New("source is derived and cannot be written")

	// ErrUnknownField is returned when a name matches no column or annotation.
	ErrUnknownField = errors.New("unknown field")

	// ErrNoExecutor is returned by terminal operations on a query set built
	// without an executor.
	ErrNoExecutor = errors.New("query set has no executor")
)
