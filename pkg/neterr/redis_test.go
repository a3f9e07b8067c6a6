package neterr

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newMiniRedisReporter(t *testing.T, ttl time.Duration) (*RedisReporter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedisReporter(context.Background(), "redis://"+mr.Addr(), ttl, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedisReporterReportAndFlush(t *testing.T) {
	ctx := context.Background()
	r, mr := newMiniRedisReporter(t, time.Minute)

	first := NotFound("missingCode")
	Report(ctx, r, first)
	Report(ctx, r, first)
	Report(ctx, r, InvalidParameter("code"))

	keys := mr.Keys()
	require.Len(t, keys, 2)
	for _, k := range keys {
		require.Contains(t, k, "error:")
		require.Equal(t, time.Minute, mr.TTL(k))
	}

	recs, err := r.Flush(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	kinds := []Kind{recs[0].Kind, recs[1].Kind}
	require.ElementsMatch(t, []Kind{KindNotFound, KindInvalidParameter}, kinds)
	for _, rec := range recs {
		require.NotEmpty(t, rec.ID)
		require.NotNil(t, rec.Location)
	}
	require.Empty(t, mr.Keys())

	recs, err = r.Flush(ctx)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestRedisReporterExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newMiniRedisReporter(t, time.Second)

	Report(ctx, r, NotFound("api"))
	require.Len(t, mr.Keys(), 1)

	mr.FastForward(2 * time.Second)
	recs, err := r.Flush(ctx)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestRedisReporterSkipsUndecodable(t *testing.T) {
	ctx := context.Background()
	r, mr := newMiniRedisReporter(t, time.Minute)

	require.NoError(t, mr.Set("error:garbage", "{"))
	Report(ctx, r, NotFound("api"))

	recs, err := r.Flush(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "api", recs[0].Parameter)
	require.Empty(t, mr.Keys())
}

func TestRedisReporterStoreFailureIsSwallowed(t *testing.T) {
	r, mr := newMiniRedisReporter(t, time.Minute)
	mr.Close()

	mem := NewMemReporter(0)
	require.NotPanics(t, func() {
		Report(context.Background(), MultiReporter{r, mem}, NotFound("api"))
	})
	require.Equal(t, 1, mem.Len())
}

func TestRedisReporterRoundTrip(t *testing.T) {
	redisURL := os.Getenv("NETBLANK_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("NETBLANK_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	r, err := NewRedisReporter(ctx, redisURL, time.Minute, nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Flush(ctx)
	require.NoError(t, err)

	Report(ctx, r, NotFound("missingCode"))
	Report(ctx, r, InvalidParameter("code"))

	recs, err := r.Flush(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.NotEmpty(t, recs[0].ID)

	recs, err = r.Flush(ctx)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestNewRedisReporterRejectsBadURL(t *testing.T) {
	_, err := NewRedisReporter(context.Background(), "not-a-redis-url", time.Minute, nil)
	require.Error(t, err)
}
