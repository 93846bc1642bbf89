package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/jvonk/covidmap/schema"
)

const (
	cacheLogPrefix = "cache"

	seriesCacheTTL = 24 * time.Hour

	cacheTimeout = 2 * time.Second
)

// SeriesCache - optional external cache for SeriesFor results. In-process
// memoization stays authoritative; a cache failure only costs a recompute.
type SeriesCache interface {
	Get(key string) (map[string][]schema.SeriesPoint, bool)
	Set(key string, series map[string][]schema.SeriesPoint) error
}

type redisSeriesCache struct {
	client *redis.Client
}

// NewRedisSeriesCache - series cache backed by a Redis instance
func NewRedisSeriesCache(addr string) SeriesCache {
	return &redisSeriesCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (c *redisSeriesCache) Get(key string) (map[string][]schema.SeriesPoint, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.WithFields(log.Fields{"prefix": cacheLogPrefix, "key": key, "error": err}).Warn("redis get failed")
		}
		return nil, false
	}

	var series map[string][]schema.SeriesPoint
	if err := json.Unmarshal(payload, &series); err != nil {
		log.WithFields(log.Fields{"prefix": cacheLogPrefix, "key": key, "error": err}).Warn("redis payload corrupt, ignored")
		return nil, false
	}
	return series, true
}

func (c *redisSeriesCache) Set(key string, series map[string][]schema.SeriesPoint) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	return c.client.Set(ctx, key, payload, seriesCacheTTL).Err()
}
