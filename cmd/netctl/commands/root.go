// Package commands implements the netctl command tree.
package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vyvo/netblank/pkg/bootstrap"
	"github.com/vyvo/netblank/pkg/config"
)

type app struct {
	configPath string
	verbose    bool
	rt         *bootstrap.Runtime
}

func Execute() error {
	a := &app{}
	return a.execute(newRoot(a))
}

// execute runs root and releases the runtime whether or not the command
// failed. cobra skips post-run hooks after a RunE error.
func (a *app) execute(root *cobra.Command) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) close() error {
	if a.rt == nil {
		return nil
	}
	err := a.rt.Close()
	a.rt = nil
	return err
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "netctl",
		Short:        "Inspect endpoints and compose requests",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg config.NetworkConfig
				v   *viper.Viper
				err error
			)
			if a.configPath != "" {
				cfg, v, err = config.LoadNetworkFile(a.configPath)
			} else {
				cfg, v, err = config.LoadNetwork()
			}
			if err != nil {
				return err
			}

			w := io.Discard
			if a.verbose {
				w = cmd.ErrOrStderr()
			}
			logger := slog.New(slog.NewTextHandler(w, nil))

			a.rt, err = bootstrap.Build(cmd.Context(), cfg, v, nil, logger)
			return err
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./configs/config.*)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(endpointsCmd(a), urlCmd(a), requestCmd(a), fetchCmd(a))
	return root
}
