package commands

import (
	"github.com/spf13/cobra"

	"github.com/vyvo/netblank/pkg/netconfig"
)

// url [code]: print the request composed from an endpoint's own URL.
func urlCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "url [code]",
		Short: "Compose a request from an endpoint descriptor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				req *netconfig.Request
				err error
			)
			if len(args) == 0 {
				req, err = a.rt.Router.URLRequest(cmd.Context())
			} else {
				req, err = a.rt.Router.URLRequestFor(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			printRequest(cmd, req)
			return nil
		},
	}
}
