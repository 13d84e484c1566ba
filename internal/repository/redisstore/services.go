package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"

	"github.com/go-redis/redis/v8"
)

type serviceRepository struct {
	rdb *redis.Client
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(rdb *redis.Client) repository.ServiceRepository {
	return &serviceRepository{rdb: rdb}
}

// ListActive returns active services ordered by id
func (r *serviceRepository) ListActive(ctx context.Context) ([]model.Service, error) {
	return r.list(ctx, true)
}

// ListAll returns every service ordered by id
func (r *serviceRepository) ListAll(ctx context.Context) ([]model.Service, error) {
	return r.list(ctx, false)
}

func (r *serviceRepository) list(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	ids, err := r.rdb.ZRange(ctx, keyServiceList, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	services := []model.Service{}
	if len(ids) == 0 {
		return services, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "service:" + id
	}
	docs, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue // removed between ZRANGE and MGET
		}
		var s model.Service
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
		if s.Active || !activeOnly {
			services = append(services, s)
		}
	}
	return services, nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id int64) (*model.Service, error) {
	var s model.Service
	if err := getJSON(ctx, r.rdb, serviceKey(id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) Create(ctx context.Context, s *model.Service) error {
	id, err := r.rdb.Incr(ctx, keyServiceSeq).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate service id: %w", err)
	}
	s.ID = id
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode service: %w", err)
	}
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, serviceKey(id), data, 0)
		pipe.ZAdd(ctx, keyServiceList, &redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Update(ctx context.Context, id int64, upd model.UpdateServiceRequest) (*model.Service, error) {
	var updated model.Service
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		if err := getJSON(ctx, tx, serviceKey(id), &updated); err != nil {
			return err
		}
		repository.ApplyServiceUpdate(&updated, upd)
		updated.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to encode service: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, serviceKey(id), data, 0)
			return nil
		})
		return err
	}, serviceKey(id))
	if err != nil {
		return nil, wrapTxErr(err, "update service")
	}
	return &updated, nil
}

func (r *serviceRepository) Delete(ctx context.Context, id int64) error {
	var removed *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, serviceKey(id))
		pipe.ZRem(ctx, keyServiceList, strconv.FormatInt(id, 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if removed.Val() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
