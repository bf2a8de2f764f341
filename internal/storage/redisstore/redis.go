package redisstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/yofoo_cart/internal/storage"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "yofoo:"

type Store struct {
	client  *redis.Client
	baseTTL time.Duration
}

// New returns a redis-backed store. A zero ttl keeps keys forever; otherwise
// up to five minutes of jitter is added so keys written together do not
// expire together.
func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client:  client,
		baseTTL: ttl,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	var ttl time.Duration
	if s.baseTTL > 0 {
		ttl = s.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	}
	if err := s.client.Set(ctx, redisKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func redisKey(key string) string {
	return keyPrefix + key
}
