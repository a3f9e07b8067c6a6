package neterr

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "error:"

// RedisReporter stores reports in Redis so they can be collected by
// support tooling. Reports expire after ttl.
type RedisReporter struct {
	redis  redis.UniversalClient
	ttl    time.Duration
	logger Logger
}

// NewRedisReporter connects to redisURL and verifies the connection.
func NewRedisReporter(ctx context.Context, redisURL string, ttl time.Duration, logger Logger) (*RedisReporter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisReporterWithClient(client, ttl, logger), nil
}

// NewRedisReporterWithClient wraps an existing client.
func NewRedisReporterWithClient(client redis.UniversalClient, ttl time.Duration, logger Logger) *RedisReporter {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisReporter{redis: client, ttl: ttl, logger: logger}
}

// Report stores err under a fresh id. Storage failures are logged, never
// returned, since reporting must not alter the reported call's outcome.
func (r *RedisReporter) Report(ctx context.Context, err error) {
	rec := newRecord(uuid.NewString(), err)
	payload, mErr := json.Marshal(rec)
	if mErr != nil {
		r.logError("marshal error report", mErr)
		return
	}
	if sErr := r.redis.Set(ctx, redisKeyPrefix+rec.ID, payload, r.ttl).Err(); sErr != nil {
		r.logError("store error report", sErr)
	}
}

// Flush returns every stored report, oldest first, and deletes them.
func (r *RedisReporter) Flush(ctx context.Context) ([]Record, error) {
	var keys []string
	iter := r.redis.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan error reports: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read error reports: %w", err)
	}
	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		return nil, fmt.Errorf("delete error reports: %w", err)
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			r.logError("decode error report", err)
			continue
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Close releases the underlying client.
func (r *RedisReporter) Close() error {
	return r.redis.Close()
}

func (r *RedisReporter) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, "error", err)
	}
}
