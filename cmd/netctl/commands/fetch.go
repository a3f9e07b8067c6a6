package commands

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

// fetch <code>: send a request to an endpoint and print the response body.
func fetchCmd(a *app) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "fetch <code>",
		Short: "Send a request to an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.rt.Router.DataRequest(cmd.Context(), args[0], strings.ToUpper(method), nil)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			fmt.Fprintln(cmd.ErrOrStderr(), resp.Status)
			_, err = io.Copy(cmd.OutOrStdout(), resp.Body)
			return err
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	return cmd
}
