package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	Kind string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}
	cmd := &cobra.Command{
		Use:   "compile --kind KIND START STOP [STEP]",
		Short: "Print the SQL of a series without running it",
		Long: `Compile a series for the configured target and print the statement
with its bind arguments. No database connection is opened.`,
		Example: `  # Integers 1..10
  genseries compile --kind integer 1 10

  # Weekly date ranges for Postgres
  genseries compile --type postgres --kind date_range 2024-01-01 2024-03-01 "1 week"`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Series kind")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)

	return cmd
}

func runCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	cc := NewCommandContext(cmd)
	kind, err := kindFlag(opts.Kind)
	if err != nil {
		return err
	}
	m, err := cc.Manager(kind, nil)
	if err != nil {
		return err
	}
	qs, err := m.GenerateSeries(args)
	if err != nil {
		return err
	}
	sql, binds, err := qs.SQL()
	if err != nil {
		return err
	}

	if cc.Cfg.Output == "json" {
		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			SQL  string `json:"sql"`
			Args []any  `json:"args"`
		}{sql, binds})
	}

	_, _ = fmt.Fprintln(cc.Out, sql)
	for i, a := range binds {
		_, _ = fmt.Fprintf(cc.Out, "-- arg %d: %v\n", i+1, a)
	}
	return nil
}
