package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const ownershipKeyPrefix = "hall:owned:"

// RedisStore persists per-session ownership lists as JSON id arrays. Keys
// expire with the session TTL so abandoned sessions clean themselves up.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]string, error) {
	raw, err := s.rdb.Get(ctx, ownershipKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *RedisStore) Store(ctx context.Context, sessionID string, ids []string) error {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, ownershipKeyPrefix+sessionID, encoded, s.ttl).Err()
}
