package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Pratik1374/API-GraphQL/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()
	return &config.Config{
		Env:              "test",
		FeatureFlags:     "read_cache=on",
		StoreDriver:      config.StoreDriverSQLite,
		SQLitePath:       filepath.Join(t.TempDir(), "runtime.db"),
		RedisURL:         redisAddr,
		IdentityProvider: config.IdentityProviderLocal,
		JWTSecret:        "test-secret-key-12345678901234567890",
		JWTIssuer:        "graphql-api",
		JWTAudience:      "graphql-client",
		TokenTTLMinutes:  5,
		RecentPostsLimit: 10,
		RecentPostsMax:   50,
	}
}

func TestInitRuntime_SQLiteAndLocalIdentity(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := sqliteConfig(t, mr.Addr())

	rt, err := InitRuntime(context.Background(), cfg, Options{SkipTracing: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	assert.Equal(t, config.StoreDriverSQLite, rt.Store.Name())
	assert.True(t, rt.Store.Transactional())
	require.NotNil(t, rt.Local)
	assert.Equal(t, "local", rt.Identity.Name())
	require.NotNil(t, rt.Services)
	assert.NotNil(t, rt.Services.Users)
	assert.NotNil(t, rt.Services.Follows)
	require.NoError(t, rt.Store.Ping(context.Background()))
}

func TestInitRuntime_LocalIdentityNeedsRedis(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	_, err := InitRuntime(context.Background(), sqliteConfig(t, addr), Options{SkipTracing: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a reachable Redis")
}

func TestOpenStore_UnsupportedDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreDriver: "cassandra"})
	assert.Error(t, err)
}

func TestNewIdentityProvider_Unsupported(t *testing.T) {
	_, _, err := NewIdentityProvider(context.Background(), &config.Config{IdentityProvider: "ldap"}, nil)
	assert.Error(t, err)
}
