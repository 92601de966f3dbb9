package cli

import (
	"fmt"

	"github.com/soyeahso/meshbuilder/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of meshbuilder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), version.Info())
				return nil
			}
			return printJSON(cmd.OutOrStdout(), version.Current())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print build details as JSON")
	return cmd
}
