// Package memory keeps every record in process memory. All access goes
// through one mutex, so uniqueness checks and writes are never interleaved.
package memory

import (
	"maps"
	"sort"
	"sync"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
)

// Snapshot is a deep copy of the whole dataset
type Snapshot struct {
	Users    []model.User
	Services []model.Service
	Content  []model.Content
}

// DB holds the shared state of the memory repositories
type DB struct {
	mu            sync.RWMutex
	users         map[int64]model.User
	services      map[int64]model.Service
	content       map[string]model.Content
	nextUserID    int64
	nextServiceID int64
}

// NewDB creates an empty DB
func NewDB() *DB {
	db := &DB{}
	db.reset(Snapshot{})
	return db
}

// NewStore wires the memory repositories on a fresh DB
func NewStore() *repository.Store {
	db := NewDB()
	return &repository.Store{
		Backend:  "memory",
		Users:    db.Users(),
		Services: db.Services(),
		Content:  db.Content(),
	}
}

func (db *DB) Users() *Users       { return &Users{db: db} }
func (db *DB) Services() *Services { return &Services{db: db} }
func (db *DB) Content() *Contents  { return &Contents{db: db} }

// Snapshot copies the current state out of the DB
func (db *DB) Snapshot() Snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()

	snap := Snapshot{
		Users:    make([]model.User, 0, len(db.users)),
		Services: make([]model.Service, 0, len(db.services)),
		Content:  make([]model.Content, 0, len(db.content)),
	}
	for _, u := range db.users {
		snap.Users = append(snap.Users, u)
	}
	for _, s := range db.services {
		snap.Services = append(snap.Services, s)
	}
	for _, c := range db.content {
		snap.Content = append(snap.Content, cloneContent(c))
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })
	sort.Slice(snap.Services, func(i, j int) bool { return snap.Services[i].ID < snap.Services[j].ID })
	sort.Slice(snap.Content, func(i, j int) bool { return snap.Content[i].Section < snap.Content[j].Section })
	return snap
}

// Restore replaces the whole state with snap
func (db *DB) Restore(snap Snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.reset(snap)
}

func (db *DB) reset(snap Snapshot) {
	db.users = make(map[int64]model.User, len(snap.Users))
	db.services = make(map[int64]model.Service, len(snap.Services))
	db.content = make(map[string]model.Content, len(snap.Content))
	db.nextUserID, db.nextServiceID = 1, 1

	for _, u := range snap.Users {
		db.users[u.ID] = u
		if u.ID >= db.nextUserID {
			db.nextUserID = u.ID + 1
		}
	}
	for _, s := range snap.Services {
		db.services[s.ID] = s
		if s.ID >= db.nextServiceID {
			db.nextServiceID = s.ID + 1
		}
	}
	for _, c := range snap.Content {
		db.content[c.Section] = cloneContent(c)
	}
}

func cloneContent(c model.Content) model.Content {
	if c.Data != nil {
		c.Data = maps.Clone(c.Data)
	}
	return c
}

// checkUnique must be called with the write lock held
func (db *DB) checkUnique(u model.User) error {
	for _, other := range db.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return &repository.DuplicateKeyError{Field: "username"}
		}
		if other.Email == u.Email {
			return &repository.DuplicateKeyError{Field: "email"}
		}
	}
	return nil
}

