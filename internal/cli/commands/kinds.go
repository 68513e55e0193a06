package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/genseries/pkg/series"
)

// NewKindsCommand creates the kinds command.
func NewKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the series kinds",
		Long: `List every series kind with its scalar domain, default step and the
column type it maps to on the configured target. Kinds the target cannot
generate are shown as unsupported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			d, err := cc.Dialect()
			if err != nil {
				return err
			}
			return renderResults(cc.Out, kindsResult(d.Name, d.TypeName), cc.Cfg.Output)
		},
	}
}

func kindsResult(dialectName string, typeName func(string) (string, error)) resultSet {
	rs := resultSet{Columns: []string{"kind", "scalar", "step", "default_step", "range_func", dialectName}}
	for _, d := range series.Descriptors() {
		sqlType, err := typeName(d.StorageType)
		if err != nil {
			sqlType = "unsupported"
		}
		rangeFunc := d.RangeFunc
		if rangeFunc == "" {
			rangeFunc = "-"
		}
		rs.Rows = append(rs.Rows, []any{d.Kind, d.Scalar, d.StepType, d.DefaultStep, rangeFunc, sqlType})
	}
	return rs
}
