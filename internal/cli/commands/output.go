package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/genseries/pkg/query"
)

// resultSet is a rectangular result ready for rendering.
type resultSet struct {
	Columns []string
	Rows    [][]any
}

// fromRows converts fetched rows, keeping the column order of the first row.
func fromRows(cols []string, rows []query.Row) resultSet {
	rs := resultSet{Columns: cols}
	for _, r := range rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = r.Get(c)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	return rs
}

func renderResults(w io.Writer, rs resultSet, format string) error {
	switch format {
	case "json":
		return renderJSON(w, rs)
	case "csv":
		return renderCSV(w, rs)
	default:
		return renderTable(w, rs)
	}
}

func newTableWriter(rs resultSet) table.Writer {
	t := table.NewWriter()
	header := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, vals := range rs.Rows {
		row := make(table.Row, len(vals))
		for i, v := range vals {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}
	return t
}

func renderTable(w io.Writer, rs resultSet) error {
	if len(rs.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	t := newTableWriter(rs)
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rs.Rows))
	return nil
}

func renderCSV(w io.Writer, rs resultSet) error {
	_, err := fmt.Fprintln(w, newTableWriter(rs).RenderCSV())
	return err
}

func renderJSON(w io.Writer, rs resultSet) error {
	out := make([]map[string]any, 0, len(rs.Rows))
	for _, vals := range rs.Rows {
		m := make(map[string]any, len(vals))
		for i, v := range vals {
			m[rs.Columns[i]] = jsonValue(v)
		}
		out = append(out, m)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// jsonValue keeps numbers and booleans native and writes decimals, ranges,
// kinds and times as text.
func jsonValue(v any) any {
	switch x := v.(type) {
	case *apd.Decimal, time.Time, fmt.Stringer:
		return formatValue(x)
	}
	return v
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		if x.Location() == time.UTC && x.Equal(x.Truncate(24*time.Hour)) {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339Nano)
	case *apd.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}
