// Package redisstore keeps records as JSON documents in Redis. Unique fields
// are claimed through index keys inside WATCH/MULTI transactions.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"movexa_cms/internal/repository"

	"github.com/go-redis/redis/v8"
)

const (
	keyUserSeq     = "seq:users"
	keyServiceSeq  = "seq:services"
	keyServiceList = "services"
	keySectionSet  = "sections"
)

func userKey(id int64) string { return "user:" + strconv.FormatInt(id, 10) }
func usernameKey(username string) string { return "user:username:" + username }
func emailKey(email string) string { return "user:email:" + email }
func serviceKey(id int64) string { return "service:" + strconv.FormatInt(id, 10) }
func contentKey(section string) string { return "section:" + section }

// Open connects to the Redis server at url
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// NewStore wires the redis repositories on rdb
func NewStore(rdb *redis.Client) *repository.Store {
	return &repository.Store{
		Backend:  "redis",
		Users:    NewUserRepository(rdb),
		Services: NewServiceRepository(rdb),
		Content:  NewContentRepository(rdb),
		Pinger: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
		Closer: rdb.Close,
	}
}

// getJSON loads key into v, mapping a missing key to ErrNotFound
func getJSON(ctx context.Context, c redis.Cmdable, key string, v any) error {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// claimable reports whether the index key is free or already owned by id
func claimable(ctx context.Context, c redis.Cmdable, key string, id int64) (bool, error) {
	owner, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read index %s: %w", key, err)
	}
	return owner == strconv.FormatInt(id, 10), nil
}

func wrapTxErr(err error, op string) error {
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("failed to %s: concurrent modification: %w", op, err)
	}
	return err
}
