package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "1",
		ExpiresAt: exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return mr, client
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	token, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Set(ctx, "opaque-token"))
	token, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)

	require.NoError(t, store.Clear(ctx))
	token, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	// clearing twice is harmless
	require.NoError(t, store.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStore(t, NewFileStore(path))
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	require.NoError(t, store.Set(context.Background(), "abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// a second store over the same file sees the token
	token, err := NewFileStore(path).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := NewFileStore(path).Get(context.Background())
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	_, client := setupTestRedis(t)
	exerciseStore(t, NewRedisStore(client, "test", "alice"))
}

func TestRedisStoreTTLFollowsExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "test", "alice")
	ctx := context.Background()

	token := signedToken(t, time.Now().Add(30*time.Minute))
	require.NoError(t, store.Set(ctx, token))

	ttl := mr.TTL("test:session:alice")
	assert.Greater(t, ttl, 25*time.Minute)
	assert.LessOrEqual(t, ttl, 30*time.Minute)

	// opaque tokens never expire
	require.NoError(t, store.Set(ctx, "opaque"))
	assert.Equal(t, time.Duration(0), mr.TTL("test:session:alice"))
}

func TestRedisStoreDropsExpiredToken(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, "", "")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "opaque"))
	require.NoError(t, store.Set(ctx, signedToken(t, time.Now().Add(-time.Minute))))

	assert.False(t, mr.Exists("carrental:session:default"))
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, ok := ExpiresAt(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = ExpiresAt("opaque")
	assert.False(t, ok)
}

func TestExpiringStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewExpiring(inner)

	fresh := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Set(ctx, fresh))
	token, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, fresh, token)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	token, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	raw, _ := inner.Get(ctx)
	assert.Empty(t, raw, "expired token should be cleared from the wrapped store")
}
