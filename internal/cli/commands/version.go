package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/genseries/pkg/adapter"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Print the genseries version and the database targets compiled into this binary.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "genseries v%s\n", version)
			if targets := adapter.ListAdapters(); len(targets) > 0 {
				_, _ = fmt.Fprintf(out, "targets: %s\n", strings.Join(targets, ", "))
			}
		},
	}
}
