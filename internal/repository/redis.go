package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rana718/seedforge/internal/types"
	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps every schema as a JSON value in one hash, keyed by
// schema id.
type RedisRepository struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewRedisRepository(client *redis.Client, key string) *RedisRepository {
	return &RedisRepository{client: client, key: key, now: time.Now}
}

// ConnectRedis parses url and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (r *RedisRepository) List(ctx context.Context) ([]types.SavedSchema, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	list := make([]types.SavedSchema, 0, len(all))
	for id, raw := range all {
		var s types.SavedSchema
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("failed to decode schema %s: %w", id, err)
		}
		list = append(list, loaded(s))
	}
	sortSchemas(list)
	return list, nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*types.SavedSchema, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	raw, err := r.client.HGet(ctx, r.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schema %s: %w", id, err)
	}
	var s types.SavedSchema
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", id, err)
	}
	out := loaded(s)
	return &out, nil
}

func (r *RedisRepository) Save(ctx context.Context, s *types.SavedSchema) error {
	if err := prepare(s, r.now()); err != nil {
		return err
	}
	if existing, err := r.client.HGet(ctx, r.key, s.ID).Result(); err == nil {
		var prev types.SavedSchema
		if json.Unmarshal([]byte(existing), &prev) == nil && !prev.CreatedAt.IsZero() {
			s.CreatedAt = prev.CreatedAt
		}
	} else if !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to save schema %s: %w", s.Name, err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode schema %s: %w", s.Name, err)
	}
	if err := r.client.HSet(ctx, r.key, s.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to save schema %s: %w", s.Name, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	n, err := r.client.HDel(ctx, r.key, id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete schema %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
