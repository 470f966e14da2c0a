package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/layer-3/tutorauth/ports"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKeyValueStore(t *testing.T, s ports.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "k", "v1", 0))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Set(ctx, "k", "v2", 0))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)

	assert.NoError(t, s.Delete(ctx, "k"))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseKeyValueStore(t, s)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "short", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err := s.Get(ctx, "short")
	assert.ErrorIs(t, err, ports.ErrKeyNotFound)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s := NewFileStore(path)
	exerciseKeyValueStore(t, s)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "persisted", 0))

	// A second instance over the same file sees the value
	v, err := NewFileStore(path).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "persisted", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	_, err = s.Get(ctx, "k")
	assert.Error(t, err)
}

type fakeRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
		delete(f.data, k)
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore(t *testing.T) {
	client := newFakeRedis()
	s := NewRedisStore(client, "test:")
	exerciseKeyValueStore(t, s)

	require.NoError(t, s.Set(context.Background(), "k", "v", -time.Second))
	assert.Equal(t, "v", client.data["test:k"])
	assert.Equal(t, time.Duration(0), client.ttls["test:k"])

	assert.Equal(t, "tutorauth:", NewRedisStore(client, "").prefix)
}
