package filestore

import (
	"context"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/repository/memory"
)

// Users implements repository.UserRepository on users.json
type Users struct {
	s   *Store
	mem *memory.Users
}

func (r *Users) Create(ctx context.Context, user *model.User) error {
	return r.s.mutate(UsersFile, func() error {
		return r.mem.Create(ctx, user)
	})
}

func (r *Users) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.mem.FindByUsername(ctx, username)
}

func (r *Users) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.mem.FindByID(ctx, id)
}

func (r *Users) Update(ctx context.Context, id int64, upd repository.UserUpdate) (*model.User, error) {
	var user *model.User
	err := r.s.mutate(UsersFile, func() error {
		var err error
		user, err = r.mem.Update(ctx, id, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Users) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	return r.s.mutate(UsersFile, func() error {
		return r.mem.SetPasswordHash(ctx, id, hash)
	})
}

// Services implements repository.ServiceRepository on services.json
type Services struct {
	s   *Store
	mem *memory.Services
}

func (r *Services) ListActive(ctx context.Context) ([]model.Service, error) {
	return r.mem.ListActive(ctx)
}

func (r *Services) ListAll(ctx context.Context) ([]model.Service, error) {
	return r.mem.ListAll(ctx)
}

func (r *Services) FindByID(ctx context.Context, id int64) (*model.Service, error) {
	return r.mem.FindByID(ctx, id)
}

func (r *Services) Create(ctx context.Context, service *model.Service) error {
	return r.s.mutate(ServicesFile, func() error {
		return r.mem.Create(ctx, service)
	})
}

func (r *Services) Update(ctx context.Context, id int64, upd model.UpdateServiceRequest) (*model.Service, error) {
	var service *model.Service
	err := r.s.mutate(ServicesFile, func() error {
		var err error
		service, err = r.mem.Update(ctx, id, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	return service, nil
}

func (r *Services) Delete(ctx context.Context, id int64) error {
	return r.s.mutate(ServicesFile, func() error {
		return r.mem.Delete(ctx, id)
	})
}

// Contents implements repository.ContentRepository on content.json
type Contents struct {
	s   *Store
	mem *memory.Contents
}

func (r *Contents) List(ctx context.Context) ([]model.Content, error) {
	return r.mem.List(ctx)
}

func (r *Contents) FindBySection(ctx context.Context, section string) (*model.Content, error) {
	return r.mem.FindBySection(ctx, section)
}

func (r *Contents) Upsert(ctx context.Context, section string, upd model.UpdateContentRequest, updatedBy int64) (*model.Content, error) {
	var content *model.Content
	err := r.s.mutate(ContentFile, func() error {
		var err error
		content, err = r.mem.Upsert(ctx, section, upd, updatedBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}
