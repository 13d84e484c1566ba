package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"movexa_cms/internal/model"
	"movexa_cms/internal/repository"
	"movexa_cms/internal/repository/memory"
	"movexa_cms/internal/utils"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store   *repository.Store
	hasher  utils.PasswordHasher
	jwtUtil *utils.JWTUtil
	auth    AuthService
	profile ProfileService
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hasher, err := utils.NewPasswordHasher(utils.HasherBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		store:   memory.NewStore(),
		hasher:  hasher,
		jwtUtil: utils.NewJWTUtil("secret", time.Hour),
		now:     time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	logger, _ := logtest.NewNullLogger()
	f.auth = NewAuthService(f.store.Users, hasher, f.jwtUtil, logger, WithNow(func() time.Time { return f.now }))
	f.profile = NewProfileService(f.store.Users, hasher)
	return f
}

func (f *fixture) register(t *testing.T, username, email, password string) *model.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), model.RegisterRequest{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	return user
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Error()
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, "  ana ", " Ana@Example.com ", "secret1")

	assert.NotZero(t, user.ID)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, model.RoleEditor, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, f.hasher.Verify("secret1", user.PasswordHash))
	assert.Equal(t, user.CreatedAt, user.LastLogin)

	stored, err := f.store.Users.FindByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestRegister_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.RegisterRequest
		want string
	}{
		{"all invalid", model.RegisterRequest{Username: "ab", Password: "123", Email: "bad"}, "Username must be at least 3 characters"},
		{"password and email invalid", model.RegisterRequest{Username: "ana", Password: "123", Email: "bad"}, "Password must be at least 6 characters"},
		{"email invalid", model.RegisterRequest{Username: "ana", Password: "secret1", Email: "ana@example"}, "Invalid email format"},
		{"email missing", model.RegisterRequest{Username: "ana", Password: "secret1"}, "Invalid email format"},
		{"password too long", model.RegisterRequest{Username: "ana", Password: strings.Repeat("a", 73), Email: "a@b.co"}, "Password cannot exceed 72 bytes"},
		{"multibyte password too long", model.RegisterRequest{Username: "ana", Password: strings.Repeat("é", 37), Email: "a@b.co"}, "Password cannot exceed 72 bytes"},
		{"username whitespace", model.RegisterRequest{Username: "  a  ", Password: "secret1", Email: "a@b.co"}, "Username must be at least 3 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.req)
			assert.Equal(t, tt.want, validationMessage(t, err))
		})
	}
}

func TestRegister_PasswordAtByteLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	password := strings.Repeat("a", utils.MaxPasswordBytes)

	_, err := f.auth.Register(ctx, model.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: password})
	require.NoError(t, err)
	_, _, err = f.auth.Login(ctx, "ana", password)
	assert.NoError(t, err)
}

func TestRegister_Duplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ana", "ana@example.com", "secret1")

	_, err := f.auth.Register(ctx, model.RegisterRequest{Username: "ana", Email: "other@example.com", Password: "secret1"})
	var dup *repository.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "username", dup.Field)

	_, err = f.auth.Register(ctx, model.RegisterRequest{Username: "bea", Email: "ANA@example.com", Password: "secret1"})
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	f := newFixture(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.auth.Register(context.Background(), model.RegisterRequest{
				Username: "ana",
				Email:    "ana" + strings.Repeat("x", i) + "@example.com",
				Password: "secret1",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	}
	assert.Equal(t, 1, successes)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "ana", "ana@example.com", "secret1")

	f.now = f.now.Add(2 * time.Hour)
	user, token, err := f.auth.Login(ctx, "ana", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.True(t, user.LastLogin.Equal(f.now))

	claims, err := f.auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, model.RoleEditor, claims.Role)
}

func TestLogin_WrongPasswordKeepsLastLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "ana", "ana@example.com", "secret1")

	f.now = f.now.Add(time.Hour)
	_, _, err := f.auth.Login(ctx, "ana", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := f.store.Users.FindByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastLogin.Equal(registered.LastLogin))
}

func TestLogin_UnknownUserIsGeneric(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.auth.Login(context.Background(), "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.auth.Login(context.Background(), "", "")
	assert.Equal(t, "Username and password are required", validationMessage(t, err))
}

func TestVerify_RejectsForeignToken(t *testing.T) {
	f := newFixture(t)

	token, err := utils.NewJWTUtil("other", time.Hour).GenerateToken(1, "ana", model.RoleAdmin)
	require.NoError(t, err)

	_, err = f.auth.Verify(token)
	assert.ErrorIs(t, err, utils.ErrTokenInvalid)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.auth.EnsureAdmin(ctx, "admin", "admin@movexa.com", "admin123", false)
	require.NoError(t, err)
	assert.Equal(t, AdminCreated, status)

	admin, err := f.store.Users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	status, err = f.auth.EnsureAdmin(ctx, "admin", "admin@movexa.com", "changed1", false)
	require.NoError(t, err)
	assert.Equal(t, AdminExists, status)
	_, _, err = f.auth.Login(ctx, "admin", "admin123")
	assert.NoError(t, err)

	status, err = f.auth.EnsureAdmin(ctx, "admin", "", "changed1", true)
	require.NoError(t, err)
	assert.Equal(t, AdminReset, status)
	_, _, err = f.auth.Login(ctx, "admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.auth.Login(ctx, "admin", "changed1")
	assert.NoError(t, err)
}

func TestEnsureAdmin_DefaultEmailAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.EnsureAdmin(ctx, "root", "", "short", false)
	assert.Equal(t, "Password must be at least 6 characters", validationMessage(t, err))

	_, err = f.auth.EnsureAdmin(ctx, "root", "", "rootpass", false)
	require.NoError(t, err)
	root, err := f.store.Users.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, "root@localhost.localdomain", root.Email)
}

func TestNewAuthService_LogsRegistration(t *testing.T) {
	hasher, err := utils.NewPasswordHasher(utils.HasherBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	logger, hook := logtest.NewNullLogger()
	auth := NewAuthService(memory.NewStore().Users, hasher, utils.NewJWTUtil("s", time.Hour), logger)

	_, err = auth.Register(context.Background(), model.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "ana", hook.LastEntry().Data["username"])
	_, hasPassword := hook.LastEntry().Data["password"]
	assert.False(t, hasPassword)
}
