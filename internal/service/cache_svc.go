package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/pkg/hash"
)

// Cache TTLs. Classification verdicts are stable (thumbnail content doesn't
// change under a reference), so they live much longer than channel profiles.
const (
	ClassificationTTL = 7 * 24 * time.Hour
	ChannelCacheTTL   = 15 * time.Minute

	// Quota counters outlive their day by one so late reads still resolve.
	quotaKeyTTL = 48 * time.Hour
)

// CacheService is the Redis layer shared by the classification resolver,
// the channel lookup, and the quota tracker. Entries are keyed per item so
// no cross-key coordination is needed.
type CacheService struct {
	rdb *redis.Client
	now func() time.Time
	ttl time.Duration
}

// NewCacheService creates a CacheService. If redisURL is empty or the
// connection fails, the returned service has a nil client and every cache
// operation becomes a no-op (classification always recomputes).
func NewCacheService(redisURL string) *CacheService {
	svc := &CacheService{now: time.Now, ttl: ClassificationTTL}

	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return svc
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return svc
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return svc
	}

	log.Println("redis: connected, caching enabled")
	svc.rdb = rdb
	return svc
}

// WithClock overrides the cache's clock and TTL, for tests.
func (c *CacheService) WithClock(now func() time.Time, ttl time.Duration) *CacheService {
	c.now = now
	c.ttl = ttl
	return c
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetClassification retrieves a cached classification entry by thumbnail
// reference. Returns nil on miss, on expiry, or when caching is disabled.
func (c *CacheService) GetClassification(ctx context.Context, thumbnailRef string) (*model.CacheEntry, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, classificationKey(thumbnailRef)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry model.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	if !entry.ExpiresAt.After(c.now()) {
		return nil, nil
	}
	return &entry, nil
}

// SetClassification stores a classification result keyed by thumbnail
// reference with a forward expiry.
func (c *CacheService) SetClassification(ctx context.Context, thumbnailRef string, result model.ClassificationResult) error {
	if c.rdb == nil {
		return nil
	}
	entry := model.CacheEntry{
		Result:    result,
		ExpiresAt: c.now().Add(c.ttl),
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, classificationKey(thumbnailRef), b, c.ttl).Err()
}

// GetChannel retrieves a cached channel response. Returns nil if not cached.
func (c *CacheService) GetChannel(ctx context.Context, channelID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, channelKey(channelID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetChannel stores a channel response in cache.
func (c *CacheService) SetChannel(ctx context.Context, channelID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, channelKey(channelID), b, ChannelCacheTTL).Err()
}

// InvalidateChannel removes a channel from cache (after a fresh snapshot).
func (c *CacheService) InvalidateChannel(ctx context.Context, channelID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, channelKey(channelID)).Err()
}

// IncrQuota atomically adds n to a quota counter and returns the new value.
func (c *CacheService) IncrQuota(ctx context.Context, key string, n int64) (int64, error) {
	if c.rdb == nil {
		return 0, fmt.Errorf("quota store disabled")
	}
	val, err := c.rdb.IncrBy(ctx, quotaKey(key), n).Result()
	if err != nil {
		return 0, err
	}
	// Best-effort expiry; an unexpired leftover counter is harmless.
	c.rdb.Expire(ctx, quotaKey(key), quotaKeyTTL)
	return val, nil
}

// GetQuota reads a quota counter; a missing key reads as zero.
func (c *CacheService) GetQuota(ctx context.Context, key string) (int64, error) {
	if c.rdb == nil {
		return 0, fmt.Errorf("quota store disabled")
	}
	val, err := c.rdb.Get(ctx, quotaKey(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func classificationKey(thumbnailRef string) string {
	return fmt.Sprintf("classification:%s", hash.ThumbnailKey(thumbnailRef))
}

func channelKey(channelID string) string {
	return fmt.Sprintf("channel:%s", channelID)
}

func quotaKey(key string) string {
	return fmt.Sprintf("quota:%s", key)
}
