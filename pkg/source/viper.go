package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/vyvo/netblank/pkg/netconfig"
)

// Viper applies the "endpoints" map of a viper instance. Values are either a
// URL string or a component map (scheme, host, port, path, query). Viper
// folds keys to lower case, so codes loaded this way are lower case and are
// applied in sorted order.
type Viper struct {
	V   *viper.Viper
	Key string
}

func (s Viper) Configure(_ context.Context, cfg netconfig.Config) error {
	if s.V == nil {
		return nil
	}
	key := s.Key
	if key == "" {
		key = "endpoints"
	}

	raw := s.V.GetStringMap(key)
	codes := make([]string, 0, len(raw))
	for code := range raw {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	entries := make([]netconfig.Entry, 0, len(codes))
	for _, code := range codes {
		var ep netconfig.Endpoint
		switch v := raw[code].(type) {
		case string:
			parsed, err := netconfig.ParseEndpoint(v)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", key, code, err)
			}
			ep = parsed
		case map[string]any:
			if err := s.V.UnmarshalKey(key+"."+code, &ep); err != nil {
				return fmt.Errorf("%s.%s: %w", key, code, err)
			}
			ep.Scheme = strings.ToLower(ep.Scheme)
		default:
			return fmt.Errorf("%s.%s: invalid format", key, code)
		}
		if _, err := ep.URL(); err != nil {
			return fmt.Errorf("%s.%s: %w", key, code, err)
		}
		entries = append(entries, netconfig.Entry{Code: code, Endpoint: ep})
	}
	return apply(cfg, entries)
}
