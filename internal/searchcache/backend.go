package searchcache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	pkgredis "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/redis"
)

// RedisBackend shares cached results through Redis.
type RedisBackend struct {
	client *pkgredis.Client
}

func NewRedisBackend(client *pkgredis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.client.Get(ctx, key)
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl)
}

func (b *RedisBackend) FlushPrefix(ctx context.Context, prefix string) (int64, error) {
	return b.client.FlushPrefix(ctx, prefix)
}

// LRUBackend keeps results in process. TTLs are ignored; generation-keyed
// entries age out through eviction.
type LRUBackend struct {
	cache *lru.Cache[string, []byte]
}

func NewLRUBackend(size int) (*LRUBackend, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRUBackend{cache: c}, nil
}

func (b *LRUBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := b.cache.Get(key)
	return v, ok, nil
}

func (b *LRUBackend) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	b.cache.Add(key, value)
	return nil
}

func (b *LRUBackend) FlushPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, k := range b.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			b.cache.Remove(k)
			n++
		}
	}
	return n, nil
}
