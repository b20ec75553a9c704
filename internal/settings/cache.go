package settings

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cacheKey = "pedidos:settings"

// Cache guarda o mapa inteiro de configurações.
type Cache interface {
	Get(ctx context.Context) (map[string]string, bool)
	Set(ctx context.Context, values map[string]string)
	Invalidate(ctx context.Context)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context) (map[string]string, bool) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("settings cache: leitura falhou")
		}
		return nil, false
	}
	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	return values, true
}

func (c *redisCache) Set(ctx context.Context, values map[string]string) {
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("settings cache: escrita falhou")
	}
}

func (c *redisCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("settings cache: invalidação falhou")
	}
}

// memoryCache é usado quando não há Redis configurado.
type memoryCache struct {
	mu        sync.RWMutex
	values    map[string]string
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{ttl: ttl, now: time.Now}
}

func (c *memoryCache) Get(ctx context.Context) (map[string]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.values == nil || c.now().After(c.expiresAt) {
		return nil, false
	}
	return copyMap(c.values), true
}

func (c *memoryCache) Set(ctx context.Context, values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = copyMap(values)
	c.expiresAt = c.now().Add(c.ttl)
}

func (c *memoryCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = nil
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
