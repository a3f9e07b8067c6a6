package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vyvo/netblank/pkg/config"
	"github.com/vyvo/netblank/pkg/neterr"
)

func TestBuildFromFiles(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	endpointsPath := filepath.Join(dir, "endpoints.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
language: fr_FR.UTF-8
api_key: shared-token
endpoints_file: `+endpointsPath+`
snapshot_file: `+filepath.Join(dir, "snapshot.json")+`
endpoints:
  default: https://example.com
`), 0o600))
	require.NoError(t, os.WriteFile(endpointsPath, []byte(`
endpoints:
  - code: api
    url: https://api.example.com/v1
`), 0o600))

	cfg, v, err := config.LoadNetworkFile(cfgPath)
	require.NoError(t, err)

	rt, err := Build(context.Background(), cfg, v, prometheus.NewRegistry(), nil)
	require.NoError(t, err)
	defer rt.Close()

	require.Equal(t, []string{"default", "api"}, rt.Store.Codes())
	require.Equal(t, "fr", rt.Router.LanguageCode())

	req, err := rt.Router.BuildRequestFor(context.Background(), "api", "https://api.example.com/v1/users")
	require.NoError(t, err)
	require.Equal(t, "Key shared-token", req.Header.Get("Authorization"))

	_, err = rt.Router.BuildRequestFor(context.Background(), "missingCode", "https://example.com")
	require.ErrorIs(t, err, neterr.ErrNotFound)
	require.Equal(t, 1, rt.Errors.Len())

	require.NoError(t, rt.Snapshot.Save(rt.Store))
	_, err = os.Stat(cfg.SnapshotFile)
	require.NoError(t, err)
}

func TestBuildFailsOnBadEndpointsFile(t *testing.T) {
	cfg := config.NetworkConfig{EndpointsFile: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := Build(context.Background(), cfg, nil, nil, nil)
	require.ErrorContains(t, err, "build store")
}
