// Package cache keeps user display names close to the projections that
// render them.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

// NameCache maps user ids to display names. Missing ids are simply absent
// from the returned map.
type NameCache interface {
	GetNames(ctx context.Context, ids []uint64) (map[uint64]string, error)
	SetNames(ctx context.Context, names map[uint64]string) error
}

type RedisNameCache struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisNameCache(client rueidis.Client, prefix string, ttl time.Duration) *RedisNameCache {
	return &RedisNameCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *RedisNameCache) key(id uint64) string {
	return c.prefix + strconv.FormatUint(id, 10)
}

func (c *RedisNameCache) GetNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	names := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}

	values, err := c.client.Do(ctx, c.client.B().Mget().Key(keys...).Build()).ToArray()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		name, err := v.ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, err
		}
		names[ids[i]] = name
	}
	return names, nil
}

func (c *RedisNameCache) SetNames(ctx context.Context, names map[uint64]string) error {
	if len(names) == 0 {
		return nil
	}

	seconds := int64(c.ttl / time.Second)
	if seconds <= 0 {
		seconds = 1
	}

	cmds := make([]rueidis.Completed, 0, len(names))
	for id, name := range names {
		cmds = append(cmds, c.client.B().Set().Key(c.key(id)).Value(name).ExSeconds(seconds).Build())
	}

	for _, res := range c.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return err
		}
	}
	return nil
}
