package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "profilekit:session:"

// RedisRepository keeps each session as one JSON string keyed by refresh
// token. The key expires together with the session.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository uses prefix for every key, or profilekit:session: when empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session for %s already expired", s.UserID)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+s.RefreshToken, b, ttl).Err()
}

// TakeByRefresh reads and removes the session in one GETDEL.
func (r *RedisRepository) TakeByRefresh(ctx context.Context, refresh string) (*Session, error) {
	return decodeSession(r.client.GetDel(ctx, r.prefix+refresh))
}

func (r *RedisRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	return r.client.Del(ctx, r.prefix+refresh).Err()
}

func decodeSession(cmd *redis.StringCmd) (*Session, error) {
	b, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
