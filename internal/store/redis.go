// In file: internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dileep-u-k/genai-chatbot/internal/keyspace"
)

// Redis backs both store interfaces with a single go-redis client. Scalar
// entries use plain GET/SET with per-key TTL; history collections are sorted
// sets scored by the record timestamp, so retrieval order falls out of
// ZREVRANGE and retention out of a sliding EXPIRE on the whole set.
type Redis struct {
	rdb *redis.Client
}

var (
	_ CacheStore   = (*Redis)(nil)
	_ HistoryStore = (*Redis)(nil)
)

// NewRedis wraps an already-connected client. The caller owns the client's
// lifecycle: it is created and pinged once in main and closed at shutdown.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: GET %s: %v", ErrUnavailable, key, err)
	}
	return val, true, nil
}

func (s *Redis) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: SET %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (s *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: EXISTS %s: %v", ErrUnavailable, key, err)
	}
	return n > 0, nil
}

func (s *Redis) Append(ctx context.Context, user string, rec Record) error {
	key := keyspace.ForHistory(user)
	member, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(rec.Timestamp.UnixNano()),
		Member: member,
	})
	pipe.Expire(ctx, key, HistoryTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: ZADD %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

func (s *Redis) Recent(ctx context.Context, user string, limit int) ([]Record, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	key := keyspace.ForHistory(user)
	members, err := s.rdb.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: ZREVRANGE %s: %v", ErrUnavailable, key, err)
	}

	records := make([]Record, 0, len(members))
	for _, member := range members {
		var rec Record
		if err := json.Unmarshal([]byte(member), &rec); err != nil {
			// A malformed member means the schema changed without a version
			// bump. Skip it rather than failing the whole retrieval.
			log.Printf("WARNING: Skipping malformed history record in %s: %v", key, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Redis) Clear(ctx context.Context, user string) error {
	key := keyspace.ForHistory(user)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: DEL %s: %v", ErrUnavailable, key, err)
	}
	return nil
}
