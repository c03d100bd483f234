package store

import (
	"context"
	"strconv"
	"time"

	"github.com/gatelink/gatelink/internal/redirect"
	"github.com/redis/go-redis/v9"
)

// RedisCacheRepository wraps a redirect.Repository with Redis caching for
// reads. Writes go through to the underlying store first; the cache follows.
type RedisCacheRepository struct {
	store    redirect.Repository
	client   *redis.Client
	prefix   string
	slugsKey string
	ttl      time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store redirect.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:    store,
		client:   client,
		prefix:   "redirect:",
		slugsKey: "redirect_slugs",
		ttl:      ttl,
	}
}

// Add stores a record in the underlying store and updates the cache.
func (r *RedisCacheRepository) Add(ctx context.Context, record *redirect.Record) error {
	if err := r.store.Add(ctx, record); err != nil {
		return err
	}

	// Write-through with the store-stamped record: the underlying store owns
	// CreatedAt/UpdatedAt. Cache population is best-effort; a failed re-read
	// just leaves the entry to the next cache miss.
	if stored, err := r.store.GetByKey(ctx, record.Key); err == nil {
		r.cacheRecord(ctx, stored)
	}

	return nil
}

// GetByKey retrieves a record by its key, checking cache first.
func (r *RedisCacheRepository) GetByKey(ctx context.Context, key string) (*redirect.Record, error) {
	if record, err := r.getFromCache(ctx, key); err == nil {
		return record, nil
	}

	record, err := r.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	r.cacheRecord(ctx, record)

	return record, nil
}

// GetBySlug retrieves a record by its slug, checking the slug index first.
func (r *RedisCacheRepository) GetBySlug(ctx context.Context, slug string) (*redirect.Record, error) {
	key, err := r.client.HGet(ctx, r.slugsKey, slug).Result()
	if err == nil {
		if record, err := r.getFromCache(ctx, key); err == nil {
			return record, nil
		}
	}

	record, err := r.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	r.cacheRecord(ctx, record)

	return record, nil
}

// GetAll always hits the underlying store; the admin listing is not cached.
func (r *RedisCacheRepository) GetAll(ctx context.Context) ([]*redirect.Record, error) {
	return r.store.GetAll(ctx)
}

// UpdateDestination delegates to the underlying store and drops the cached
// entry so the next read repopulates it.
func (r *RedisCacheRepository) UpdateDestination(ctx context.Context, key, destination string) error {
	if err := r.store.UpdateDestination(ctx, key, destination); err != nil {
		return err
	}

	_ = r.client.Del(ctx, r.prefix+key).Err()

	return nil
}

// Delete removes the record from the underlying store and purges the cache.
func (r *RedisCacheRepository) Delete(ctx context.Context, key string) error {
	record, err := r.store.GetByKey(ctx, key)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, key); err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.prefix+key)

	if record.Slug != "" {
		pipe.HDel(ctx, r.slugsKey, record.Slug)
	}

	_, _ = pipe.Exec(ctx)

	return nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, key string) (*redirect.Record, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+key).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, redirect.ErrNotFound
	}

	record := &redirect.Record{
		Key:         result["key"],
		Slug:        result["slug"],
		Destination: result["destination"],
		Token:       result["token"],
	}

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			record.CreatedAt = time.Unix(0, nanos)
		}
	}

	if ts, ok := result["updated_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			record.UpdatedAt = time.Unix(0, nanos)
		}
	}

	return record, nil
}

func (r *RedisCacheRepository) cacheRecord(ctx context.Context, record *redirect.Record) {
	pipe := r.client.Pipeline()
	key := r.prefix + record.Key

	pipe.HSet(ctx, key, map[string]interface{}{
		"key":         record.Key,
		"slug":        record.Slug,
		"destination": record.Destination,
		"token":       record.Token,
		"created_at":  record.CreatedAt.UnixNano(),
		"updated_at":  record.UpdatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	// Index by slug if present
	if record.Slug != "" {
		pipe.HSet(ctx, r.slugsKey, record.Slug, record.Key)
	}

	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ redirect.Repository = (*RedisCacheRepository)(nil)
