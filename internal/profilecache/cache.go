// Package profilecache keeps recently loaded user profiles in Redis.
package profilecache

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Proton-105/lanxat-bot/internal/domain"
)

// DefaultTTL matches the expire-after-write window profiles are served from cache.
const DefaultTTL = 5 * time.Minute

const (
	keyPattern        = "lanxat:profile:%d"
	generationPattern = "lanxat:profile:gen:%d"
)

// setIfGenerationScript writes the entry only when no invalidation happened
// since the caller read the generation.
var setIfGenerationScript = redis.NewScript(`
local gen = redis.call("GET", KEYS[2])
if not gen then
	gen = "0"
end
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Cache provides Redis-backed caching for user profiles.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCache constructs a profile cache. A non-positive ttl means DefaultTTL.
func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached profile, or nil without error on a miss.
func (c *Cache) Get(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if stdErrors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached profile: %w", err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode cached profile: %w", err)
	}

	return &profile, nil
}

// Generation returns the user's invalidation counter. Read it before loading
// the profile from the database and pass it to SetIfGeneration.
func (c *Cache) Generation(ctx context.Context, userID int64) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}

	gen, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if err != nil {
		if stdErrors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get profile cache generation: %w", err)
	}

	return gen, nil
}

// SetIfGeneration stores the profile unless the entry was invalidated after
// gen was read. It reports whether the entry was written.
func (c *Cache) SetIfGeneration(ctx context.Context, profile *domain.UserProfile, gen int64) (bool, error) {
	if c == nil || c.client == nil || profile == nil {
		return false, nil
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return false, fmt.Errorf("encode profile for cache: %w", err)
	}

	keys := []string{cacheKey(profile.UserID), generationKey(profile.UserID)}
	written, err := setIfGenerationScript.Run(ctx, c.client, keys,
		strconv.FormatInt(gen, 10), payload, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("set cached profile: %w", err)
	}

	return written == 1, nil
}

// Invalidate removes the cached profile entry and bumps its generation, so
// reads that started before the call cannot put the old profile back.
func (c *Cache) Invalidate(ctx context.Context, userID int64) error {
	if c == nil || c.client == nil {
		return nil
	}

	genKey := generationKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey(userID))
		pipe.Incr(ctx, genKey)
		// outlives any read in flight
		pipe.Expire(ctx, genKey, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete cached profile: %w", err)
	}

	return nil
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func cacheKey(userID int64) string {
	return fmt.Sprintf(keyPattern, userID)
}

func generationKey(userID int64) string {
	return fmt.Sprintf(generationPattern, userID)
}
