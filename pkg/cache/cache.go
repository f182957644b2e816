package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"feriaocr/pkg/fields"
	"feriaocr/pkg/log"
)

const keyPrefix = "feriaocr:result:"

// Entry is what gets cached for one image under one set of processing
// options.
type Entry struct {
	Triple  fields.Triple `json:"triple"`
	Lines   []string      `json:"lines"`
	Regions int           `json:"regions"`
}

// Cache stores extraction results in Redis. Callers build keys that cover
// both the image content and whatever settings shaped the result. A nil
// *Cache is valid and never hits.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis at url (redis://host:port/db) and pings it.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	log.Info(log.Fields{"addr": opts.Addr}, "connected to redis")
	return &Cache{client: client, ttl: ttl}, nil
}

// Key returns the hex SHA-256 of data.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the entry stored under key.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool, error) {
	if c == nil {
		return Entry{}, false, nil
	}
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	if err := jsoniter.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// Set stores e under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, e Entry) error {
	if c == nil {
		return nil
	}
	raw, err := jsoniter.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
