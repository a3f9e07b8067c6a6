package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// endpoints: list configured endpoint codes in insertion order.
func endpointsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List configured endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tURL")
			for _, e := range a.rt.Store.Entries() {
				fmt.Fprintf(tw, "%s\t%s\n", e.Code, e.Endpoint.String())
			}
			return tw.Flush()
		},
	}
}
