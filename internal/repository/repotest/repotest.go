// Package repotest holds the behaviour every repository backend must share.
// Backend packages run these suites from their own tests.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStoreFunc returns an empty store for one subtest
type NewStoreFunc func(t *testing.T) *repository.Store

func newUser(username, email string) *model.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$hash-for-" + username,
		Role:         model.RoleEditor,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLogin:    now,
	}
}

// RunUserRepository exercises the credential store contract
func RunUserRepository(t *testing.T, newStore NewStoreFunc) {
	ctx := context.Background()

	t.Run("CreateAndFind", func(t *testing.T) {
		users := newStore(t).Users
		ana := newUser("ana", "ana@x.com")
		require.NoError(t, users.Create(ctx, ana))
		assert.NotZero(t, ana.ID)

		byName, err := users.FindByUsername(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, ana.ID, byName.ID)
		assert.Equal(t, "ana@x.com", byName.Email)
		assert.Equal(t, ana.PasswordHash, byName.PasswordHash)
		assert.Equal(t, model.RoleEditor, byName.Role)

		byID, err := users.FindByID(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana", byID.Username)
	})

	t.Run("NotFound", func(t *testing.T) {
		users := newStore(t).Users
		_, err := users.FindByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = users.FindByID(ctx, 4242)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = users.Update(ctx, 4242, repository.UserUpdate{})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, users.SetPasswordHash(ctx, 4242, "x"), repository.ErrNotFound)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		users := newStore(t).Users
		require.NoError(t, users.Create(ctx, newUser("ana", "ana@x.com")))

		err := users.Create(ctx, newUser("ana", "other@x.com"))
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
		var dup *repository.DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "username", dup.Field)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		users := newStore(t).Users
		require.NoError(t, users.Create(ctx, newUser("ana", "ana@x.com")))

		err := users.Create(ctx, newUser("bob", "ana@x.com"))
		var dup *repository.DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "email", dup.Field)

		_, err = users.FindByUsername(ctx, "bob")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		users := newStore(t).Users
		ana := newUser("ana", "ana@x.com")
		require.NoError(t, users.Create(ctx, ana))

		name, login := "ana2", time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
		updated, err := users.Update(ctx, ana.ID, repository.UserUpdate{Username: &name, LastLogin: &login})
		require.NoError(t, err)
		assert.Equal(t, "ana2", updated.Username)
		assert.Equal(t, "ana@x.com", updated.Email)
		assert.WithinDuration(t, login, updated.LastLogin, time.Millisecond)
		assert.Equal(t, time.UTC, updated.UpdatedAt.Location())

		_, err = users.FindByUsername(ctx, "ana")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		found, err := users.FindByUsername(ctx, "ana2")
		require.NoError(t, err)
		assert.Equal(t, ana.ID, found.ID)
	})

	t.Run("UpdateKeepsUniqueness", func(t *testing.T) {
		users := newStore(t).Users
		ana := newUser("ana", "ana@x.com")
		bob := newUser("bob", "bob@x.com")
		require.NoError(t, users.Create(ctx, ana))
		require.NoError(t, users.Create(ctx, bob))

		taken := "ana@x.com"
		_, err := users.Update(ctx, bob.ID, repository.UserUpdate{Email: &taken})
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)

		same := "bob"
		_, err = users.Update(ctx, bob.ID, repository.UserUpdate{Username: &same})
		assert.NoError(t, err)

		stored, err := users.FindByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob@x.com", stored.Email)
	})

	t.Run("SetPasswordHash", func(t *testing.T) {
		users := newStore(t).Users
		ana := newUser("ana", "ana@x.com")
		require.NoError(t, users.Create(ctx, ana))

		require.NoError(t, users.SetPasswordHash(ctx, ana.ID, "$2a$10$new"))
		stored, err := users.FindByID(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$new", stored.PasswordHash)
		assert.Equal(t, "ana", stored.Username)
		assert.Equal(t, time.UTC, stored.UpdatedAt.Location())
	})

	t.Run("ConcurrentCreateSameUsername", func(t *testing.T) {
		users := newStore(t).Users
		const writers = 8

		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = users.Create(ctx, newUser("race", fmt.Sprintf("race%d@x.com", i)))
			}(i)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
			}
		}
		assert.Equal(t, 1, created)
	})
}

// RunServiceRepository exercises the service catalog contract
func RunServiceRepository(t *testing.T, newStore NewStoreFunc) {
	ctx := context.Background()

	newService := func(title string, active bool) *model.Service {
		now := time.Now().UTC().Truncate(time.Millisecond)
		return &model.Service{
			Title: title, Description: title + " description", Icon: model.DefaultServiceIcon,
			Active: active, CreatedBy: 1, CreatedAt: now, UpdatedAt: now,
		}
	}

	t.Run("CreateListFind", func(t *testing.T) {
		services := newStore(t).Services
		empty, err := services.ListActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		first, hidden, second := newService("Moving", true), newService("Hidden", false), newService("Storage", true)
		require.NoError(t, services.Create(ctx, first))
		require.NoError(t, services.Create(ctx, hidden))
		require.NoError(t, services.Create(ctx, second))

		active, err := services.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "Moving", active[0].Title)
		assert.Equal(t, "Storage", active[1].Title)

		all, err := services.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int64{first.ID, hidden.ID, second.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

		found, err := services.FindByID(ctx, hidden.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hidden", found.Title)
		assert.False(t, found.Active)
	})

	t.Run("Update", func(t *testing.T) {
		services := newStore(t).Services
		s := newService("Moving", true)
		require.NoError(t, services.Create(ctx, s))

		title, active := "Relocation", false
		updated, err := services.Update(ctx, s.ID, model.UpdateServiceRequest{Title: &title, Active: &active})
		require.NoError(t, err)
		assert.Equal(t, "Relocation", updated.Title)
		assert.Equal(t, "Moving description", updated.Description)
		assert.False(t, updated.Active)
		assert.Equal(t, time.UTC, updated.UpdatedAt.Location())

		_, err = services.Update(ctx, 999, model.UpdateServiceRequest{Title: &title})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		services := newStore(t).Services
		s := newService("Moving", true)
		require.NoError(t, services.Create(ctx, s))

		require.NoError(t, services.Delete(ctx, s.ID))
		_, err := services.FindByID(ctx, s.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, services.Delete(ctx, s.ID), repository.ErrNotFound)

		active, err := services.ListActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}

// RunContentRepository exercises the page section contract
func RunContentRepository(t *testing.T, newStore NewStoreFunc) {
	ctx := context.Background()

	t.Run("UpsertCreatesThenMerges", func(t *testing.T) {
		content := newStore(t).Content
		_, err := content.FindBySection(ctx, "hero")
		assert.ErrorIs(t, err, repository.ErrNotFound)

		title, subtitle := "Welcome", "We move you"
		created, err := content.Upsert(ctx, "hero", model.UpdateContentRequest{
			Title: &title, Subtitle: &subtitle, Data: map[string]any{"cta": "Call us"},
		}, 1)
		require.NoError(t, err)
		assert.Equal(t, "hero", created.Section)
		assert.Equal(t, int64(1), created.LastUpdatedBy)
		assert.Equal(t, time.UTC, created.UpdatedAt.Location())

		newTitle := "Hello"
		merged, err := content.Upsert(ctx, "hero", model.UpdateContentRequest{Title: &newTitle}, 2)
		require.NoError(t, err)
		assert.Equal(t, "Hello", merged.Title)
		assert.Equal(t, "We move you", merged.Subtitle)
		assert.Equal(t, "Call us", merged.Data["cta"])
		assert.Equal(t, int64(2), merged.LastUpdatedBy)

		found, err := content.FindBySection(ctx, "hero")
		require.NoError(t, err)
		assert.Equal(t, "Hello", found.Title)
	})

	t.Run("List", func(t *testing.T) {
		content := newStore(t).Content
		for _, section := range []string{"contact", "about"} {
			title := section + " title"
			_, err := content.Upsert(ctx, section, model.UpdateContentRequest{Title: &title}, 1)
			require.NoError(t, err)
		}

		sections, err := content.List(ctx)
		require.NoError(t, err)
		require.Len(t, sections, 2)
		assert.Equal(t, "about", sections[0].Section)
		assert.Equal(t, "contact", sections[1].Section)
	})
}

// RunAll runs every repository suite
func RunAll(t *testing.T, newStore NewStoreFunc) {
	t.Run("Users", func(t *testing.T) { RunUserRepository(t, newStore) })
	t.Run("Services", func(t *testing.T) { RunServiceRepository(t, newStore) })
	t.Run("Content", func(t *testing.T) { RunContentRepository(t, newStore) })
}
