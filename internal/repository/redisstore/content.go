package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"

	"github.com/go-redis/redis/v8"
)

type contentRepository struct {
	rdb *redis.Client
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(rdb *redis.Client) repository.ContentRepository {
	return &contentRepository{rdb: rdb}
}

func (r *contentRepository) List(ctx context.Context) ([]model.Content, error) {
	sections, err := r.rdb.SMembers(ctx, keySectionSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list content sections: %w", err)
	}
	if len(sections) == 0 {
		return nil, nil
	}
	sort.Strings(sections)

	keys := make([]string, len(sections))
	for i, section := range sections {
		keys[i] = contentKey(section)
	}
	docs, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load content sections: %w", err)
	}

	out := make([]model.Content, 0, len(docs))
	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue
		}
		var c model.Content
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("failed to decode content section: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *contentRepository) FindBySection(ctx context.Context, section string) (*model.Content, error) {
	var c model.Content
	if err := getJSON(ctx, r.rdb, contentKey(section), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contentRepository) Upsert(ctx context.Context, section string, upd model.UpdateContentRequest, updatedBy int64) (*model.Content, error) {
	key := contentKey(section)
	var c model.Content
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		now := time.Now().UTC()
		c = model.Content{}
		err := getJSON(ctx, tx, key, &c)
		if errors.Is(err, repository.ErrNotFound) {
			c = model.Content{Section: section, CreatedAt: now}
		} else if err != nil {
			return err
		}

		repository.ApplyContentUpdate(&c, upd)
		c.LastUpdatedBy = updatedBy
		c.UpdatedAt = now
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode content section: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, keySectionSet, section)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, wrapTxErr(err, "upsert content section")
	}
	return &c, nil
}
