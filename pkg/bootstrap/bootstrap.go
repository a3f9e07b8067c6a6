// Package bootstrap assembles a store and router from NetworkConfig for the
// binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/vyvo/netblank/pkg/auth"
	"github.com/vyvo/netblank/pkg/config"
	"github.com/vyvo/netblank/pkg/locale"
	"github.com/vyvo/netblank/pkg/netconfig"
	"github.com/vyvo/netblank/pkg/neterr"
	"github.com/vyvo/netblank/pkg/netrouter"
	"github.com/vyvo/netblank/pkg/source"
)

// Runtime is the assembled network layer plus the resources it holds open.
type Runtime struct {
	Store    *netconfig.Store
	Router   *netrouter.BlankRouter
	Errors   *neterr.MemReporter
	Redis    *neterr.RedisReporter
	Snapshot source.Snapshot

	closers []func() error
}

// Build loads endpoints from every configured source, in order: viper
// endpoints map, endpoints file, snapshot file, Postgres, SFTP.
func Build(ctx context.Context, cfg config.NetworkConfig, v *viper.Viper, reg prometheus.Registerer, logger neterr.Logger) (*Runtime, error) {
	rt := &Runtime{
		Errors:   neterr.NewMemReporter(100),
		Snapshot: source.Snapshot{Path: cfg.SnapshotFile},
	}
	reporters := neterr.MultiReporter{rt.Errors, neterr.LogReporter{Logger: logger}}

	if cfg.RedisURL != "" {
		r, err := neterr.NewRedisReporter(ctx, cfg.RedisURL, cfg.ErrorTTL, logger)
		if err != nil {
			return nil, err
		}
		rt.Redis = r
		rt.closers = append(rt.closers, r.Close)
		reporters = append(reporters, r)
	}

	chain := source.Chain{source.Viper{V: v}}
	if cfg.EndpointsFile != "" {
		chain = append(chain, source.YAMLFile{Path: cfg.EndpointsFile})
	}
	if cfg.SnapshotFile != "" {
		chain = append(chain, rt.Snapshot)
	}
	if cfg.PostgresDSN != "" {
		pg, err := source.NewPostgres(cfg.PostgresDSN)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, pg.Close)
		chain = append(chain, pg)
	}
	if cfg.SFTP.Addr != "" {
		client, closeFn, err := source.DialSFTP(source.SFTPSettings{
			Addr:       cfg.SFTP.Addr,
			User:       cfg.SFTP.User,
			Password:   cfg.SFTP.Password,
			PrivateKey: cfg.SFTP.PrivateKey,
		})
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, closeFn)
		chain = append(chain, source.SFTP{Client: client, Path: cfg.SFTP.Path})
	}

	opts := []netconfig.Option{
		netconfig.WithConfigurer(chain),
		netconfig.WithReporter(reporters),
	}
	if cfg.APIKey != "" {
		opts = append(opts, netconfig.WithHeaderSource(auth.NewKeyHeaders(cfg.APIKey)))
	}
	if cfg.Language != "" {
		opts = append(opts, netconfig.WithLanguage(locale.Static(cfg.Language)))
	}

	store, err := netconfig.New(ctx, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("build store: %w", err)
	}
	rt.Store = store

	routerOpts := []netrouter.Option{netrouter.WithReporter(reporters)}
	if reg != nil {
		routerOpts = append(routerOpts, netrouter.WithMetrics(netrouter.NewMetrics(reg)))
	}
	rt.Router = netrouter.NewWithConfig(store, routerOpts...)

	if logger != nil {
		logger.Info("network layer ready", "endpoints", len(store.Codes()), "language", store.LanguageCode())
	}
	return rt, nil
}

// Close releases every resource opened by Build.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
