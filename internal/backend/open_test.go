package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"movexa_cms/internal/config"
	"movexa_cms/internal/model"

	"github.com/alicebob/miniredis/v2"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	cfg := config.Default()
	cfg.JWTSecret = "secret"
	cfg.StorageBackend = backend
	return cfg
}

func TestOpen_Memory(t *testing.T) {
	log, _ := logtest.NewNullLogger()

	store, err := Open(context.Background(), testConfig(config.BackendMemory), log)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "memory", store.Backend)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpen_File(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	cfg := testConfig(config.BackendFile)
	cfg.DataDir = filepath.Join(t.TempDir(), "data")

	store, err := Open(context.Background(), cfg, log)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, "file", store.Backend)

	user := &model.User{Username: "ana", Email: "ana@x.io", PasswordHash: "$2a$10$x", Role: model.RoleEditor}
	require.NoError(t, store.Users.Create(context.Background(), user))

	_, err = os.Stat(filepath.Join(cfg.DataDir, "users.json"))
	assert.NoError(t, err)
}

func TestOpen_Redis(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	mr := miniredis.RunT(t)
	cfg := testConfig(config.BackendRedis)
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	store, err := Open(context.Background(), cfg, log)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "redis", store.Backend)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpen_Errors(t *testing.T) {
	log, _ := logtest.NewNullLogger()

	_, err := Open(context.Background(), testConfig("mongo"), log)
	assert.Error(t, err)

	cfg := testConfig(config.BackendRedis)
	cfg.RedisURL = "not a url"
	_, err = Open(context.Background(), cfg, log)
	assert.Error(t, err)

	// postgres without connection settings fails before dialing
	_, err = Open(context.Background(), testConfig(config.BackendPostgres), log)
	assert.Error(t, err)
}
