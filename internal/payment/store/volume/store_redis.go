package volume

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"paygate/pkg/domain"
)

const volumeKeyPrefix = "vol:addr:"

// RedisVolumeStore keeps each address's window in a sorted set scored by
// entry time. Expired members are removed before every read, so the sum is
// always over the live window. This is the implementation for distributed
// deployments where instances share limit state.
type RedisVolumeStore struct {
	client *redis.Client
	clock  Clock
}

// RedisOption configures a RedisVolumeStore.
type RedisOption func(*RedisVolumeStore)

// WithRedisClock sets the clock function for testability.
func WithRedisClock(clock Clock) RedisOption {
	return func(s *RedisVolumeStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisVolumeStore {
	s := &RedisVolumeStore{client: client, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisVolumeStore) key(addr domain.Address) string {
	return volumeKeyPrefix + string(addr.Normalized())
}

func (s *RedisVolumeStore) Volume(ctx context.Context, addr domain.Address) (decimal.Decimal, error) {
	key := s.key(addr)
	cutoff := s.clock().UnixMilli() - Window.Milliseconds()

	if err := s.client.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", cutoff)).Err(); err != nil {
		return decimal.Zero, fmt.Errorf("prune volume window: %w", err)
	}
	members, err := s.client.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return decimal.Zero, fmt.Errorf("read volume window: %w", err)
	}

	total := decimal.Zero
	for _, m := range members {
		amount, err := parseMember(m)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, nil
}

func (s *RedisVolumeStore) Add(ctx context.Context, addr domain.Address, amount decimal.Decimal) (decimal.Decimal, error) {
	key := s.key(addr)
	at := s.clock().UnixMilli()

	// Member carries its own amount; a UUID keeps equal amounts distinct.
	member := fmt.Sprintf("%s:%s", uuid.NewString(), amount.String())

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at), Member: member})
	pipe.Expire(ctx, key, Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("record volume: %w", err)
	}

	return s.Volume(ctx, addr)
}

func parseMember(m string) (decimal.Decimal, error) {
	idx := strings.LastIndex(m, ":")
	if idx < 0 {
		return decimal.Zero, fmt.Errorf("malformed volume member %q", m)
	}
	amount, err := decimal.NewFromString(m[idx+1:])
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed volume member %q: %w", m, err)
	}
	return amount, nil
}
