package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/vyvo/netblank/pkg/netconfig"
	"github.com/vyvo/netblank/pkg/neterr"
)

const endpointsDoc = `
endpoints:
  - code: api
    url: https://api.example.com/v1
  - code: web
    scheme: HTTPS
    host: web.example.com
    port: 8443
    path: /
    query: a=1
  - code: override
    url: http://old.example.com/x
    host: new.example.com
`

func TestParseYAML(t *testing.T) {
	entries, err := ParseYAML([]byte(endpointsDoc))
	require.NoError(t, err)
	require.Equal(t, []netconfig.Entry{
		{Code: "api", Endpoint: netconfig.Endpoint{Scheme: "https", Host: "api.example.com", Path: "/v1"}},
		{Code: "web", Endpoint: netconfig.Endpoint{Scheme: "https", Host: "web.example.com", Port: 8443, Path: "/", RawQuery: "a=1"}},
		{Code: "override", Endpoint: netconfig.Endpoint{Scheme: "http", Host: "new.example.com", Path: "/x"}},
	}, entries)
}

func TestParseYAMLErrors(t *testing.T) {
	cases := map[string]string{
		"missing code":  "endpoints:\n  - url: https://example.com\n",
		"duplicate":     "endpoints:\n  - code: a\n    url: https://a.example.com\n  - code: a\n    url: https://b.example.com\n",
		"bad url":       "endpoints:\n  - code: a\n    url: 'http://[::1'\n",
		"no components": "endpoints:\n  - code: a\n    scheme: https\n",
		"not yaml":      "endpoints: [",
	}
	for name, doc := range cases {
		_, err := ParseYAML([]byte(doc))
		require.Error(t, err, name)
	}
}

func TestYAMLFileConfigure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(endpointsDoc), 0o600))

	store, err := netconfig.New(context.Background(), netconfig.WithConfigurer(YAMLFile{Path: path}))
	require.NoError(t, err)
	require.Equal(t, []string{"api", "web", "override"}, store.Codes())

	ep, err := store.LookupDefault()
	require.NoError(t, err)
	require.Equal(t, "api.example.com", ep.Host)

	_, err = netconfig.New(context.Background(), netconfig.WithConfigurer(YAMLFile{Path: path + ".missing"}))
	require.ErrorContains(t, err, "read endpoints file")
}

func TestViperConfigure(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
endpoints:
  web:
    scheme: HTTPS
    host: web.example.com
    port: 8443
    query: x=1
  api: https://api.example.com/v1
`)))

	store := netconfig.Blank()
	require.NoError(t, Viper{V: v}.Configure(context.Background(), store))
	require.Equal(t, []string{"api", "web"}, store.Codes())

	web, err := store.Lookup("web")
	require.NoError(t, err)
	require.Equal(t, netconfig.Endpoint{Scheme: "https", Host: "web.example.com", Port: 8443, RawQuery: "x=1"}, web)

	require.NoError(t, Viper{}.Configure(context.Background(), store))
}

func TestViperConfigureRejectsBadEntry(t *testing.T) {
	v := viper.New()
	v.Set("endpoints", map[string]any{"bad": 42})
	err := Viper{V: v}.Configure(context.Background(), netconfig.Blank())
	require.ErrorContains(t, err, "invalid format")
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "endpoints.json")
	snap := Snapshot{Path: path}

	// missing file configures nothing
	empty := netconfig.Blank()
	require.NoError(t, snap.Configure(context.Background(), empty))
	require.Empty(t, empty.Codes())

	src := netconfig.Blank()
	require.NoError(t, Static{
		{Code: "b", Endpoint: netconfig.Endpoint{Scheme: "https", Host: "b.example.com"}},
		{Code: "a", Endpoint: netconfig.Endpoint{Scheme: "https", Host: "a.example.com", Port: 444}},
	}.Configure(context.Background(), src))
	require.NoError(t, snap.Save(src))

	leftovers, err := filepath.Glob(path + ".*.tmp")
	require.NoError(t, err)
	require.Empty(t, leftovers)

	dst := netconfig.Blank()
	require.NoError(t, snap.Configure(context.Background(), dst))
	require.Equal(t, src.Entries(), dst.Entries())
}

func TestSnapshotConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "endpoints.json")
	store := netconfig.Blank()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := fmt.Sprintf("code%02d", i)
			require.NoError(t, store.SetEndpoint(netconfig.Endpoint{Scheme: "https", Host: code + ".example.com"}, code))
			require.NoError(t, Snapshot{Path: path}.Save(store))
		}(i)
	}
	wg.Wait()

	restored := netconfig.Blank()
	require.NoError(t, Snapshot{Path: path}.Configure(context.Background(), restored))
	require.Len(t, restored.Codes(), 16)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSnapshotCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	err := Snapshot{Path: path}.Configure(context.Background(), netconfig.Blank())
	require.ErrorContains(t, err, "parse snapshot")
}

func TestChain(t *testing.T) {
	store := netconfig.Blank()
	err := Chain{
		Static{{Code: "api", Endpoint: netconfig.Endpoint{Host: "first.example.com"}}},
		nil,
		YAML("endpoints:\n  - code: api\n    url: https://second.example.com\n"),
	}.Configure(context.Background(), store)
	require.NoError(t, err)

	ep, err := store.Lookup("api")
	require.NoError(t, err)
	require.Equal(t, "second.example.com", ep.Host)
	require.Len(t, store.Codes(), 1)
}

func TestStaticRejectsEmptyCode(t *testing.T) {
	err := Chain{Static{{Code: "", Endpoint: netconfig.Endpoint{Host: "x"}}}}.Configure(context.Background(), netconfig.Blank())
	require.ErrorIs(t, err, neterr.ErrInvalidParameter)
	require.ErrorContains(t, err, "source 0")
}
