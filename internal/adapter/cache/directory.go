package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 10 * time.Minute

// NameSource is the uncached directory, normally the gorm DirectoryRepository.
type NameSource interface {
	StoreName(ctx context.Context, storeID string) (string, error)
	ActorName(ctx context.Context, actorID string) (string, error)
}

// CachedDirectory keeps resolved display names in redis. Empty results are not cached so a
// store or user created later shows up without waiting for the TTL. Redis failures fall
// through to the source.
type CachedDirectory struct {
	rdb *redis.Client
	src NameSource
	ttl time.Duration
}

func NewCachedDirectory(rdb *redis.Client, src NameSource, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachedDirectory{rdb: rdb, src: src, ttl: ttl}
}

func (d *CachedDirectory) StoreName(ctx context.Context, storeID string) (string, error) {
	return d.get(ctx, "dir:store:"+storeID, storeID, d.src.StoreName)
}

func (d *CachedDirectory) ActorName(ctx context.Context, actorID string) (string, error) {
	return d.get(ctx, "dir:actor:"+actorID, actorID, d.src.ActorName)
}

func (d *CachedDirectory) get(ctx context.Context, key, id string, load func(context.Context, string) (string, error)) (string, error) {
	if id == "" {
		return "", nil
	}
	v, err := d.rdb.Get(ctx, key).Result()
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, redis.Nil) {
		// cache unavailable; serve from the source
		return load(ctx, id)
	}

	name, err := load(ctx, id)
	if err != nil || name == "" {
		return name, err
	}
	_ = d.rdb.Set(ctx, key, name, d.ttl).Err()
	return name, nil
}
