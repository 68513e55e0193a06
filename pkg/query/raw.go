package query

import (
	"context"
	"log/slog"
)

// RawQuery is hand-written SQL bound to an executor. Values are returned as
// the driver scans them.
type RawQuery struct {
	exec   Executor
	sql    string
	args   []any
	logger *slog.Logger
	empty  bool
}

// SQL returns the statement and its arguments.
func (q *RawQuery) SQL() (string, []any) { return q.sql, q.args }

// Fetch runs the statement and returns every row. A raw query taken from an
// empty query set returns no rows without executing.
func (q *RawQuery) Fetch(ctx context.Context) ([]Row, error) {
	if q.empty {
		return nil, nil
	}
	if q.exec == nil {
		return nil, ErrNoExecutor
	}
	q.logger.Debug("executing raw query", "sql", q.sql, "args", len(q.args))
	rows, err := q.exec.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows, nil)
}
