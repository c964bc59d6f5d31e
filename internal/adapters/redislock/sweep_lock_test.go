package redislock

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewSweepLock(t *testing.T) {
	client := unreachableClient(t)

	_, err := NewSweepLock(nil, "", time.Minute)
	assert.Error(t, err)

	_, err = NewSweepLock(client, "", 0)
	assert.Error(t, err)

	lock, err := NewSweepLock(client, "", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, DefaultKey, lock.key)
}

func TestTryAcquireReportsBackendErrors(t *testing.T) {
	lock, err := NewSweepLock(unreachableClient(t), "test:sweep", time.Minute)
	require.NoError(t, err)

	release, ok, err := lock.TryAcquire(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
}

// memoryRedis - команды, которыми пользуется SweepLock, поверх map.
type memoryRedis struct {
	redis.Cmdable

	mu         sync.Mutex
	values     map[string]string
	ttls       map[string]time.Duration
	releaseErr []error
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.values[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	m.values[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

// EvalSha выполняет скрипт снятия блокировки: DEL только при совпадении токена.
func (m *memoryRedis) EvalSha(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseErr = append(m.releaseErr, ctx.Err())
	if m.values[keys[0]] != fmt.Sprint(args[0]) {
		return redis.NewCmdResult(int64(0), nil)
	}
	delete(m.values, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}

func (m *memoryRedis) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func newTestLock(t *testing.T, backend *memoryRedis, token string) *SweepLock {
	t.Helper()
	lock, err := NewSweepLock(backend, "test:sweep", 2*time.Minute)
	require.NoError(t, err)
	lock.newToken = func() string { return token }
	return lock
}

func TestTryAcquireAndRelease(t *testing.T) {
	backend := newMemoryRedis()
	lock := newTestLock(t, backend, "token-a")

	release, ok, err := lock.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, release)

	v, held := backend.value("test:sweep")
	assert.True(t, held)
	assert.Equal(t, "token-a", v)
	assert.Equal(t, 2*time.Minute, backend.ttls["test:sweep"])

	release()
	_, held = backend.value("test:sweep")
	assert.False(t, held)
}

func TestTryAcquireWhileHeldElsewhere(t *testing.T) {
	backend := newMemoryRedis()
	first := newTestLock(t, backend, "token-a")
	second := newTestLock(t, backend, "token-b")

	release, ok, err := first.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	otherRelease, ok, err := second.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, otherRelease)

	release()
	_, ok, err = second.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseKeepsForeignToken(t *testing.T) {
	backend := newMemoryRedis()
	lock := newTestLock(t, backend, "token-a")

	release, ok, err := lock.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// аренда истекла, ключ занял другой экземпляр
	backend.mu.Lock()
	backend.values["test:sweep"] = "token-b"
	backend.mu.Unlock()

	release()
	v, held := backend.value("test:sweep")
	assert.True(t, held)
	assert.Equal(t, "token-b", v)
}

func TestReleaseAfterCancelledContext(t *testing.T) {
	backend := newMemoryRedis()
	lock := newTestLock(t, backend, "token-a")

	ctx, cancel := context.WithCancel(context.Background())
	release, ok, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	cancel()
	release()

	_, held := backend.value("test:sweep")
	assert.False(t, held)
	require.Len(t, backend.releaseErr, 1)
	assert.NoError(t, backend.releaseErr[0])
}
