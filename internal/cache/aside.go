package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Pratik1374/API-GraphQL/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix = "user:%s"
	PostKeyPrefix = "post:%s"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 30 * time.Minute
)

func UserKey(subject string) string {
	return fmt.Sprintf(UserKeyPrefix, subject)
}

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// GenerationTTL bounds how long an invalidation is remembered. It only has
// to outlive a load that was in flight when the key was invalidated.
const GenerationTTL = time.Hour

func generationKey(key string) string {
	return "gen:" + key
}

var errStaleWrite = errors.New("cache generation changed during load")

// Cache is a JSON cache-aside helper. A nil Cache or one without a client
// is a pass-through: every lookup misses and every write is dropped.
//
// Every key has a generation counter. A loaded value is only written back
// if the generation it was read under is still current, so a load racing
// an Invalidate cannot resurrect the old value.
type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Client returns the underlying client, or nil when Redis is unavailable.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Aside loads key into dst. On a miss it calls load, which must fill dst,
// and stores the result for ttl. Redis failures never fail the caller.
func (c *Cache) Aside(ctx context.Context, family, key string, dst interface{}, ttl time.Duration, load func() error) error {
	if c.Client() == nil {
		return load()
	}

	gen, err := generation(ctx, c.client, key)
	if err != nil {
		observability.Logger.WarnContext(ctx, "cache generation read failed", slog.String("key", key), slog.String("error", err.Error()))
		observability.CacheLookups.WithLabelValues(family, "miss").Inc()
		return load()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dst); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(family, "hit").Inc()
			return nil
		}
		c.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		observability.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	observability.CacheLookups.WithLabelValues(family, "miss").Inc()

	if err := load(); err != nil {
		return err
	}

	payload, err := json.Marshal(dst)
	if err != nil {
		return nil
	}
	switch err := c.setIfCurrent(ctx, key, gen, payload, ttl); {
	case err == nil:
	case errors.Is(err, errStaleWrite), errors.Is(err, redis.TxFailedErr):
		observability.CacheLookups.WithLabelValues(family, "stale").Inc()
	default:
		observability.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, cmd getter, key string) (int64, error) {
	n, err := cmd.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// setIfCurrent writes payload only while the generation of key is still gen.
func (c *Cache) setIfCurrent(ctx context.Context, key string, gen int64, payload []byte, ttl time.Duration) error {
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleWrite
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, generationKey(key))
}

// Invalidate deletes keys and bumps their generation, ignoring errors.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c.Client() == nil || len(keys) == 0 {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, generationKey(key))
			pipe.Expire(ctx, generationKey(key), GenerationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		observability.Logger.WarnContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
	}
}
