package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vyvo/netblank/pkg/netconfig"
)

type rawDocument struct {
	Endpoints []struct {
		Code   string `yaml:"code"`
		URL    string `yaml:"url"`
		Scheme string `yaml:"scheme"`
		Host   string `yaml:"host"`
		Port   int    `yaml:"port"`
		Path   string `yaml:"path"`
		Query  string `yaml:"query"`
	} `yaml:"endpoints"`
}

// ParseYAML decodes an endpoints document. Each entry names a code and
// either a url or individual components; components override the parsed url.
func ParseYAML(data []byte) ([]netconfig.Entry, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Endpoints))
	entries := make([]netconfig.Entry, 0, len(doc.Endpoints))
	for i, raw := range doc.Endpoints {
		code := strings.TrimSpace(raw.Code)
		if code == "" {
			return nil, fmt.Errorf("endpoints[%d]: code is required", i)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("endpoints[%d]: duplicate code %q", i, code)
		}
		seen[code] = struct{}{}

		var ep netconfig.Endpoint
		if u := strings.TrimSpace(raw.URL); u != "" {
			parsed, err := netconfig.ParseEndpoint(u)
			if err != nil {
				return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
			}
			ep = parsed
		}
		if raw.Scheme != "" {
			ep.Scheme = strings.ToLower(strings.TrimSpace(raw.Scheme))
		}
		if raw.Host != "" {
			ep.Host = strings.TrimSpace(raw.Host)
		}
		if raw.Port != 0 {
			ep.Port = raw.Port
		}
		if raw.Path != "" {
			ep.Path = raw.Path
		}
		if raw.Query != "" {
			ep.RawQuery = raw.Query
		}
		if _, err := ep.URL(); err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		entries = append(entries, netconfig.Entry{Code: code, Endpoint: ep})
	}
	return entries, nil
}

// YAML applies an endpoints document held in memory.
type YAML []byte

func (y YAML) Configure(_ context.Context, cfg netconfig.Config) error {
	entries, err := ParseYAML(y)
	if err != nil {
		return err
	}
	return apply(cfg, entries)
}

// YAMLFile applies the endpoints document at Path.
type YAMLFile struct {
	Path string
}

func (f YAMLFile) Configure(ctx context.Context, cfg netconfig.Config) error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return errors.Wrap(err, "read endpoints file")
	}
	if err := YAML(data).Configure(ctx, cfg); err != nil {
		return errors.Wrapf(err, "endpoints file %s", f.Path)
	}
	return nil
}
