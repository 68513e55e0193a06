package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/genseries/pkg/adapter"
	"github.com/leapstack-labs/genseries/pkg/query"
	"github.com/leapstack-labs/genseries/pkg/series"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Kind  string
	In    string
	NotIn string
	Limit int
	Desc  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}
	cmd := &cobra.Command{
		Use:   "query --kind KIND START STOP [STEP]",
		Short: "Generate a series on the target and print its rows",
		Long: `Generate a series on the configured target and print the rows.

--in and --not-in take a table.column reference and keep only the series
values that do (or do not) appear in that column. This finds the gaps in
a table's ids or dates.`,
		Example: `  # Days of January
  genseries query --kind date 2024-01-01 2024-01-31

  # Ids missing from the orders table
  genseries query --kind integer 1 1000 --not-in orders.id

  # As JSON, newest first
  genseries query --kind datetime 2024-01-01 2024-01-02 "6 hours" --desc -o json`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Series kind")
	cmd.Flags().StringVar(&opts.In, "in", "", "Keep values present in table.column")
	cmd.Flags().StringVar(&opts.NotIn, "not-in", "", "Keep values absent from table.column")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Maximum rows to print (0 for all)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "Order descending")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)
	kind, err := kindFlag(opts.Kind)
	if err != nil {
		return err
	}

	adp, err := cc.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = adp.Close() }()

	m, err := cc.Manager(kind, adp)
	if err != nil {
		return err
	}
	qs, err := m.GenerateSeries(args)
	if err != nil {
		return err
	}

	if opts.In != "" {
		ref, err := columnValues(ctx, adp, opts.In)
		if err != nil {
			return err
		}
		qs = qs.Filter(query.In(series.ColumnName, ref))
	}
	if opts.NotIn != "" {
		ref, err := columnValues(ctx, adp, opts.NotIn)
		if err != nil {
			return err
		}
		qs = qs.Exclude(query.In(series.ColumnName, ref))
	}

	order := series.ColumnName
	if opts.Desc {
		order = "-" + order
	}
	qs = qs.OrderBy(order)
	if opts.Limit > 0 {
		qs = qs.Limit(opts.Limit)
	}

	cc.Logger.Debug("running series query", "kind", kind.String(), "sql", qs.String())
	rows, err := qs.Fetch(ctx)
	if err != nil {
		return err
	}
	return renderResults(cc.Out, fromRows([]string{series.ColumnName}, rows), cc.Cfg.Output)
}

// columnValues resolves a table.column reference into a single-column
// query set over the table's non-NULL values. A NULL would make NOT IN
// match nothing.
func columnValues(ctx context.Context, adp adapter.Adapter, ref string) (*query.QuerySet, error) {
	table, column, err := splitColumnRef(ref)
	if err != nil {
		return nil, err
	}
	md, err := adp.GetTableMetadata(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	d := adp.Dialect()
	return query.New(adp, d, query.TableFromMetadata(md, d.DefaultSchema)).
		Filter(query.IsNull(column, false)).
		Values(column), nil
}

// splitColumnRef splits "schema.table.column" at its last dot.
func splitColumnRef(ref string) (table, column string, err error) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", "", fmt.Errorf("invalid column reference %q (expected table.column)", ref)
	}
	return ref[:i], ref[i+1:], nil
}
