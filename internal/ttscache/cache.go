// Package ttscache caches synthesized audio in Redis so repeated phrases
// (vocabulary words, stock corrections) do not hit the upstream provider
// or the usage ledger twice.
package ttscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(model, voice, text string) string {
	h := sha256.Sum256([]byte(model + "|" + voice + "|" + text))
	return "tts:" + hex.EncodeToString(h[:])
}

// Get returns cached audio and whether it was found. Redis errors are
// logged and reported as a miss; the cache is best-effort.
func (c *Cache) Get(ctx context.Context, model, voice, text string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, cacheKey(model, voice, text)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("ttscache: redis error: %v", err)
		return nil, false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, model, voice, text string, audio []byte) {
	if err := c.rdb.Set(ctx, cacheKey(model, voice, text), audio, c.ttl).Err(); err != nil {
		log.Printf("ttscache: failed to cache %d bytes: %v", len(audio), err)
	}
}
