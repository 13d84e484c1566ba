package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	repotest.RunAll(t, func(t *testing.T) *repository.Store {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)
		return store
	})
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)

	now := time.Now().UTC()
	ana := &model.User{Username: "ana", Email: "ana@x.com", PasswordHash: "$2a$10$abc", Role: model.RoleAdmin,
		CreatedAt: now, UpdatedAt: now, LastLogin: now}
	require.NoError(t, store.Users.Create(ctx, ana))
	svc := &model.Service{Title: "Moving", Description: "We move", Icon: model.DefaultServiceIcon, Active: true, CreatedBy: ana.ID}
	require.NoError(t, store.Services.Create(ctx, svc))
	title := "Welcome"
	_, err = store.Content.Upsert(ctx, "hero", model.UpdateContentRequest{Title: &title}, ana.ID)
	require.NoError(t, err)

	reopened, err := NewStore(dir)
	require.NoError(t, err)

	found, err := reopened.Users.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, found.ID)
	assert.Equal(t, "$2a$10$abc", found.PasswordHash)
	assert.Equal(t, model.RoleAdmin, found.Role)

	services, err := reopened.Services.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "Moving", services[0].Title)

	hero, err := reopened.Content.FindBySection(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", hero.Title)

	// new ids continue after the persisted ones
	bob := &model.User{Username: "bob", Email: "bob@x.com", PasswordHash: "h", Role: model.RoleEditor}
	require.NoError(t, reopened.Users.Create(ctx, bob))
	assert.Equal(t, ana.ID+1, bob.ID)
}

func TestFileStore_UsersFileIsJSONArrayWithHash(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Users.Create(ctx, &model.User{Username: "ana", Email: "ana@x.com", PasswordHash: "$2a$10$abc", Role: model.RoleEditor}))

	data, err := os.ReadFile(filepath.Join(dir, UsersFile))
	require.NoError(t, err)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0]["username"])
	assert.Equal(t, "$2a$10$abc", users[0]["password"])

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStore_RollsBackWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	// a directory in place of the target file makes the rename fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, ServicesFile), 0o755))

	err = store.Services.Create(ctx, &model.Service{Title: "Moving", Description: "We move", Active: true})
	require.Error(t, err)

	services, err := store.Services.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestOpen_RejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, UsersFile), []byte("{not json"), 0o644))

	_, err := Open(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestOpen_RejectsUnknownRole(t *testing.T) {
	dir := t.TempDir()
	users := `[{"id":1,"username":"ana","email":"ana@x.com","password":"$2a$10$abc","role":"owner"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, UsersFile), []byte(users), 0o644))

	_, err := Open(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown role "owner"`)
}

func TestStore_Snapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Users.Create(ctx, &model.User{Username: "ana", Email: "ana@x.com", PasswordHash: "$2a$10$abc", Role: model.RoleEditor}))

	reopened, err := Open(dir)
	require.NoError(t, err)
	snap := reopened.Snapshot()
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "$2a$10$abc", snap.Users[0].PasswordHash)
	assert.Empty(t, snap.Services)
}

func TestPing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, store.Ping(context.Background()))
}
