package memory

import (
	"context"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
)

// Users implements repository.UserRepository
type Users struct {
	db *DB
}

func (r *Users) Create(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	candidate := *user
	candidate.ID = 0
	if err := r.db.checkUnique(candidate); err != nil {
		return err
	}
	candidate.ID = r.db.nextUserID
	r.db.nextUserID++
	r.db.users[candidate.ID] = candidate
	user.ID = candidate.ID
	return nil
}

func (r *Users) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) Update(_ context.Context, id int64, upd repository.UserUpdate) (*model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	repository.ApplyUserUpdate(&u, upd)
	if err := r.db.checkUnique(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()
	r.db.users[id] = u
	return &u, nil
}

func (r *Users) SetPasswordHash(_ context.Context, id int64, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	r.db.users[id] = u
	return nil
}
