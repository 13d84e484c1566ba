package memory

import (
	"context"
	"sort"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
)

// Contents implements repository.ContentRepository
type Contents struct {
	db *DB
}

func (r *Contents) List(_ context.Context) ([]model.Content, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	sections := make([]model.Content, 0, len(r.db.content))
	for _, c := range r.db.content {
		sections = append(sections, cloneContent(c))
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Section < sections[j].Section })
	return sections, nil
}

func (r *Contents) FindBySection(_ context.Context, section string) (*model.Content, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.content[section]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = cloneContent(c)
	return &c, nil
}

func (r *Contents) Upsert(_ context.Context, section string, upd model.UpdateContentRequest, updatedBy int64) (*model.Content, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := time.Now().UTC()
	c, ok := r.db.content[section]
	if !ok {
		c = model.Content{Section: section, CreatedAt: now}
	}
	repository.ApplyContentUpdate(&c, upd)
	c.LastUpdatedBy = updatedBy
	c.UpdatedAt = now
	c = cloneContent(c)
	r.db.content[section] = c

	out := cloneContent(c)
	return &out, nil
}
