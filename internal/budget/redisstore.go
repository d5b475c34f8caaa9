package budget

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the shared-state Store for multi-replica deployments. Usage
// counters use INCRBYFLOAT for atomicity across replicas; limits are stored
// as JSON under a per-tenant key. Entries roll off naturally: usage keys
// carry a TTL a little past their bucket's natural expiry so a crashed
// replica never leaves an unbounded key around.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore builds a RedisStore. keyPrefix namespaces all keys this
// store writes (e.g. "aigateway:budget:").
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "aigateway:budget:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) limitsKey(tenantID string) string {
	return fmt.Sprintf("%slimits:%s", s.keyPrefix, tenantID)
}

func (s *RedisStore) dailyKey(tenantID, day string) string {
	return fmt.Sprintf("%sdaily:%s:%s", s.keyPrefix, tenantID, day)
}

func (s *RedisStore) dailyCountKey(tenantID, day string) string {
	return fmt.Sprintf("%sdaily_count:%s:%s", s.keyPrefix, tenantID, day)
}

func (s *RedisStore) monthlyKey(tenantID, month string) string {
	return fmt.Sprintf("%smonthly:%s:%s", s.keyPrefix, tenantID, month)
}

func (s *RedisStore) tenantsSetKey() string {
	return s.keyPrefix + "tenants"
}

func (s *RedisStore) GetLimits(ctx context.Context, tenantID string, defaults Limits) (Limits, error) {
	raw, err := s.client.Get(ctx, s.limitsKey(tenantID)).Result()
	if err == redis.Nil {
		return defaults, nil
	}
	if err != nil {
		return Limits{}, fmt.Errorf("get limits: %w", err)
	}

	var limits Limits
	if err := json.Unmarshal([]byte(raw), &limits); err != nil {
		return Limits{}, fmt.Errorf("decode limits: %w", err)
	}
	return limits, nil
}

func (s *RedisStore) SetLimits(ctx context.Context, tenantID string, limits Limits) error {
	data, err := json.Marshal(limits)
	if err != nil {
		return fmt.Errorf("encode limits: %w", err)
	}
	if err := s.client.Set(ctx, s.limitsKey(tenantID), data, 0).Err(); err != nil {
		return fmt.Errorf("set limits: %w", err)
	}
	return s.client.SAdd(ctx, s.tenantsSetKey(), tenantID).Err()
}

func (s *RedisStore) GetUsage(ctx context.Context, tenantID string, now time.Time) (float64, float64, int, error) {
	day, month := dayKey(now), monthKey(now)

	pipe := s.client.Pipeline()
	dailyCmd := pipe.Get(ctx, s.dailyKey(tenantID, day))
	countCmd := pipe.Get(ctx, s.dailyCountKey(tenantID, day))
	monthlyCmd := pipe.Get(ctx, s.monthlyKey(tenantID, month))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, 0, 0, fmt.Errorf("get usage: %w", err)
	}

	daily := parseFloatOrZero(dailyCmd)
	monthly := parseFloatOrZero(monthlyCmd)
	count := parseIntOrZero(countCmd)

	return daily, monthly, count, nil
}

func (s *RedisStore) RecordUsage(ctx context.Context, tenantID string, cost float64, now time.Time) error {
	day, month := dayKey(now), monthKey(now)

	pipe := s.client.TxPipeline()
	pipe.IncrByFloat(ctx, s.dailyKey(tenantID, day), cost)
	pipe.Expire(ctx, s.dailyKey(tenantID, day), 48*time.Hour)
	pipe.Incr(ctx, s.dailyCountKey(tenantID, day))
	pipe.Expire(ctx, s.dailyCountKey(tenantID, day), 48*time.Hour)
	pipe.IncrByFloat(ctx, s.monthlyKey(tenantID, month), cost)
	pipe.Expire(ctx, s.monthlyKey(tenantID, month), 32*24*time.Hour)
	pipe.SAdd(ctx, s.tenantsSetKey(), tenantID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

func (s *RedisStore) TenantIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.tenantsSetKey()).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return ids, nil
}

func parseFloatOrZero(cmd *redis.StringCmd) float64 {
	v, err := cmd.Float64()
	if err != nil {
		return 0
	}
	return v
}

func parseIntOrZero(cmd *redis.StringCmd) int {
	v, err := cmd.Int()
	if err != nil {
		return 0
	}
	return v
}
