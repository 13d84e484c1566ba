// Package filestore persists records as JSON arrays on disk. Each mutation
// rewrites the affected file wholesale. Writes are serialized and the file is
// replaced atomically, so concurrent registrations cannot both pass the
// uniqueness check.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/repository/memory"
)

const (
	UsersFile    = "users.json"
	ServicesFile = "services.json"
	ContentFile  = "content.json"
)

// fileUser is the on-disk user layout; unlike model.User it keeps the hash
type fileUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	LastLogin time.Time `json:"lastLogin"`
}

// Store keeps the dataset in memory and mirrors it to dir
type Store struct {
	mu  sync.Mutex
	dir string
	mem *memory.DB
}

// Open loads the dataset from dir, creating the directory if needed
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	var snap memory.Snapshot
	var users []fileUser
	if err := readJSON(filepath.Join(dir, UsersFile), &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		if !model.IsValidRole(u.Role) {
			return nil, fmt.Errorf("user %q in %s has unknown role %q", u.Username, UsersFile, u.Role)
		}
		snap.Users = append(snap.Users, model.User{
			ID: u.ID, Username: u.Username, Email: u.Email, PasswordHash: u.Password, Role: u.Role,
			CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt, LastLogin: u.LastLogin,
		})
	}
	if err := readJSON(filepath.Join(dir, ServicesFile), &snap.Services); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ContentFile), &snap.Content); err != nil {
		return nil, err
	}

	mem := memory.NewDB()
	mem.Restore(snap)
	return &Store{dir: dir, mem: mem}, nil
}

// NewStore opens dir and wires the file repositories
func NewStore(dir string) (*repository.Store, error) {
	s, err := Open(dir)
	if err != nil {
		return nil, err
	}
	return &repository.Store{
		Backend:  "file",
		Users:    &Users{s: s, mem: s.mem.Users()},
		Services: &Services{s: s, mem: s.mem.Services()},
		Content:  &Contents{s: s, mem: s.mem.Content()},
		Pinger:   s.Ping,
	}, nil
}

// Snapshot copies the loaded dataset
func (s *Store) Snapshot() memory.Snapshot {
	return s.mem.Snapshot()
}

// Ping checks that the data directory is still accessible
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}

// mutate runs fn under the write lock and persists file afterwards.
// The in-memory state is rolled back when the file cannot be written.
func (s *Store) mutate(file string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.mem.Snapshot()
	if err := fn(); err != nil {
		return err
	}
	if err := s.persist(file, s.mem.Snapshot()); err != nil {
		s.mem.Restore(before)
		return err
	}
	return nil
}

func (s *Store) persist(file string, snap memory.Snapshot) error {
	var v any
	switch file {
	case UsersFile:
		users := make([]fileUser, 0, len(snap.Users))
		for _, u := range snap.Users {
			users = append(users, fileUser{
				ID: u.ID, Username: u.Username, Email: u.Email, Password: u.PasswordHash, Role: u.Role,
				CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt, LastLogin: u.LastLogin,
			})
		}
		v = users
	case ServicesFile:
		v = snap.Services
	case ContentFile:
		v = snap.Content
	default:
		return fmt.Errorf("unknown data file %q", file)
	}
	return writeJSON(filepath.Join(s.dir, file), v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// writeJSON replaces path atomically through a temp file in the same directory
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
