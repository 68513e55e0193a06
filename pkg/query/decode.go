package query

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"github.com/leapstack-labs/genseries/pkg/core"
)

// scanRows reads every row, decoding values by the declared column types.
// cols may be shorter than the result; extra columns are returned as scanned.
func scanRows(rows *core.Rows, cols []Column) ([]Row, error) {
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		row, err := scanRow(rows, names, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func scanRow(rows *core.Rows, names []string, cols []Column) (Row, error) {
	values := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Row{}, fmt.Errorf("failed to scan row: %w", err)
	}
	for i := range values {
		typ := ""
		if i < len(cols) {
			typ = cols[i].Type
		}
		v, err := decodeValue(values[i], typ)
		if err != nil {
			return Row{}, fmt.Errorf("column %q: %w", names[i], err)
		}
		values[i] = v
	}
	return Row{Columns: names, Values: values}, nil
}

// decodeValue converts a scanned driver value into its domain form:
// *apd.Decimal for numeric, core.Range for ranges, int64 for integers.
func decodeValue(v any, typ string) (any, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil, nil
	}
	switch typ {
	case core.TypeNumeric:
		return decodeDecimal(v)
	case core.TypeInt8Range, core.TypeNumRange, core.TypeDateRange, core.TypeTstzRange:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected range text, got %T", v)
		}
		return core.ParseRange(s)
	case core.TypeBigint:
		switch x := v.(type) {
		case int32:
			return int64(x), nil
		case int:
			return int64(x), nil
		case string:
			return strconv.ParseInt(x, 10, 64)
		}
	}
	return v, nil
}

func decodeDecimal(v any) (*apd.Decimal, error) {
	switch x := v.(type) {
	case string:
		d, _, err := apd.NewFromString(x)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", x, err)
		}
		return d, nil
	case int64:
		return apd.New(x, 0), nil
	case float64:
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(x); err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("expected decimal, got %T", v)
}
