package memory

import (
	"context"
	"sort"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
)

// Services implements repository.ServiceRepository
type Services struct {
	db *DB
}

func (r *Services) ListActive(_ context.Context) ([]model.Service, error) {
	return r.list(true), nil
}

func (r *Services) ListAll(_ context.Context) ([]model.Service, error) {
	return r.list(false), nil
}

func (r *Services) list(activeOnly bool) []model.Service {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	services := []model.Service{}
	for _, s := range r.db.services {
		if s.Active || !activeOnly {
			services = append(services, s)
		}
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services
}

func (r *Services) FindByID(_ context.Context, id int64) (*model.Service, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	s, ok := r.db.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *Services) Create(_ context.Context, s *model.Service) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s.ID = r.db.nextServiceID
	r.db.nextServiceID++
	r.db.services[s.ID] = *s
	return nil
}

func (r *Services) Update(_ context.Context, id int64, upd model.UpdateServiceRequest) (*model.Service, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	repository.ApplyServiceUpdate(&s, upd)
	s.UpdatedAt = time.Now().UTC()
	r.db.services[id] = s
	return &s, nil
}

func (r *Services) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.services, id)
	return nil
}
