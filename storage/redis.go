package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MegaGrindStone/skyqa"
	"github.com/redis/go-redis/v9"
)

const (
	redisObjectPrefix = "skyqa:object:"
	redisNamesKey     = "skyqa:names"
)

// Redis provides a Redis implementation of the catalog.
// Each object is a JSON string under its lower-cased name; the names live in a sorted set with a
// constant score, which Redis orders lexicographically.
type Redis struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client connection with the provided configuration.
// It returns an initialized Redis struct and any error encountered during connection setup.
func NewRedis(ctx context.Context, addr, password string, db int) (Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return Redis{}, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return Redis{Client: client}, nil
}

// Lookup retrieves the object stored under name, ignoring case.
func (r Redis) Lookup(ctx context.Context, name string) (skyqa.SkyObject, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	content, err := r.Client.Get(ctx, redisObjectKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return skyqa.SkyObject{}, skyqa.ErrObjectNotFound
	}
	if err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{Op: "redis lookup", Err: err}
	}

	var obj skyqa.SkyObject
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return skyqa.SkyObject{}, &skyqa.StorageError{
			Op:  "redis lookup",
			Err: fmt.Errorf("failed to decode %q: %w", name, err),
		}
	}
	return obj, nil
}

// ListNames returns the stored names in ascending order.
func (r Redis) ListNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	names, err := r.Client.ZRange(ctx, redisNamesKey, 0, -1).Result()
	if err != nil {
		return nil, &skyqa.StorageError{Op: "redis list names", Err: err}
	}
	return names, nil
}

// Upsert stores obj and registers its name, in one transaction. The object key ignores case, so a
// previous spelling of the name is dropped from the name index.
func (r Redis) Upsert(ctx context.Context, obj skyqa.SkyObject) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", obj.Name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	key := redisObjectKey(obj.Name)
	err = r.Client.Watch(ctx, func(tx *redis.Tx) error {
		stale, err := storedName(ctx, tx, key)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if stale != "" && stale != obj.Name {
				pipe.ZRem(ctx, redisNamesKey, stale)
			}
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, redisNamesKey, redis.Z{Score: 0, Member: obj.Name})
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to execute pipeline: %w", err)
		}
		return nil
	}, key)
	if err != nil {
		return &skyqa.StorageError{Op: "redis upsert", Err: err}
	}
	return nil
}

// storedName returns the name of the object stored under key, or "" when there is none.
func storedName(ctx context.Context, tx *redis.Tx, key string) (string, error) {
	content, err := tx.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	var previous skyqa.SkyObject
	if err := json.Unmarshal([]byte(content), &previous); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return previous.Name, nil
}

// Close closes the client.
func (r Redis) Close() error {
	return r.Client.Close()
}

func redisObjectKey(name string) string {
	return redisObjectPrefix + strings.ToLower(name)
}
