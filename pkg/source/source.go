// Package source provides Configurers that populate a netconfig.Config from
// in-code tables, YAML documents, viper settings, JSON snapshots, Postgres
// and remote hosts over SFTP.
package source

import (
	"context"
	"fmt"

	"github.com/vyvo/netblank/pkg/netconfig"
)

// Static applies a fixed list of entries in order.
type Static []netconfig.Entry

func (s Static) Configure(_ context.Context, cfg netconfig.Config) error {
	return apply(cfg, s)
}

// Chain applies each Configurer in order; later sources overwrite codes set
// by earlier ones. Nil entries are skipped.
type Chain []netconfig.Configurer

func (c Chain) Configure(ctx context.Context, cfg netconfig.Config) error {
	for i, src := range c {
		if src == nil {
			continue
		}
		if err := src.Configure(ctx, cfg); err != nil {
			return fmt.Errorf("source %d (%T): %w", i, src, err)
		}
	}
	return nil
}

func apply(cfg netconfig.Config, entries []netconfig.Entry) error {
	for _, e := range entries {
		if err := cfg.SetEndpoint(e.Endpoint, e.Code); err != nil {
			return fmt.Errorf("set endpoint %q: %w", e.Code, err)
		}
	}
	return nil
}
