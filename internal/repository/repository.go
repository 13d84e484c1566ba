// Package repository defines the persistence contracts shared by every
// storage backend.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"movexa_cms/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// DuplicateKeyError names the unique field that rejected a write
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s already exists", e.Field)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// UserUpdate lists the user fields an update may change. Nil fields are kept.
// Passwords are changed through SetPasswordHash only.
type UserUpdate struct {
	Username  *string
	Email     *string
	LastLogin *time.Time
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (*model.User, error)
	SetPasswordHash(ctx context.Context, id int64, hash string) error
}

// ServiceRepository defines operations for the service catalog
type ServiceRepository interface {
	ListActive(ctx context.Context) ([]model.Service, error)
	ListAll(ctx context.Context) ([]model.Service, error)
	FindByID(ctx context.Context, id int64) (*model.Service, error)
	Create(ctx context.Context, service *model.Service) error
	Update(ctx context.Context, id int64, upd model.UpdateServiceRequest) (*model.Service, error)
	Delete(ctx context.Context, id int64) error
}

// ContentRepository defines operations for page sections
type ContentRepository interface {
	List(ctx context.Context) ([]model.Content, error)
	FindBySection(ctx context.Context, section string) (*model.Content, error)
	Upsert(ctx context.Context, section string, upd model.UpdateContentRequest, updatedBy int64) (*model.Content, error)
}

// Store bundles the repositories of one backend
type Store struct {
	Backend  string
	Users    UserRepository
	Services ServiceRepository
	Content  ContentRepository

	Pinger func(ctx context.Context) error
	Closer func() error
}

// Ping checks that the backend is reachable
func (s *Store) Ping(ctx context.Context) error {
	if s.Pinger == nil {
		return nil
	}
	return s.Pinger(ctx)
}

// Close releases backend resources
func (s *Store) Close() error {
	if s.Closer == nil {
		return nil
	}
	return s.Closer()
}

// ApplyUserUpdate copies the set fields of upd onto u
func ApplyUserUpdate(u *model.User, upd UserUpdate) {
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.LastLogin != nil {
		u.LastLogin = *upd.LastLogin
	}
}

// ApplyServiceUpdate copies the set fields of upd onto s
func ApplyServiceUpdate(s *model.Service, upd model.UpdateServiceRequest) {
	if upd.Title != nil {
		s.Title = *upd.Title
	}
	if upd.Description != nil {
		s.Description = *upd.Description
	}
	if upd.Icon != nil {
		s.Icon = *upd.Icon
	}
	if upd.Category != nil {
		s.Category = *upd.Category
	}
	if upd.Active != nil {
		s.Active = *upd.Active
	}
}

// ApplyContentUpdate copies the set fields of upd onto c
func ApplyContentUpdate(c *model.Content, upd model.UpdateContentRequest) {
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Subtitle != nil {
		c.Subtitle = *upd.Subtitle
	}
	if upd.Text != nil {
		c.Text = *upd.Text
	}
	if upd.ButtonText != nil {
		c.ButtonText = *upd.ButtonText
	}
	if upd.Image != nil {
		c.Image = *upd.Image
	}
	if upd.Data != nil {
		c.Data = upd.Data
	}
}
