package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vyvo/netblank/pkg/netconfig"
)

// request <code> <url>: build a request for a literal URL with the code's
// headers.
func requestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "request <code> <url>",
		Short: "Build a request for a URL using an endpoint's headers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.rt.Router.BuildRequestFor(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printRequest(cmd, req)
			return nil
		},
	}
}

func printRequest(cmd *cobra.Command, req *netconfig.Request) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, req.URL.String())
	names := make([]string, 0, len(req.Header))
	for name := range req.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range req.Header[name] {
			fmt.Fprintf(out, "%s: %s\n", name, v)
		}
	}
}
