package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient is an in-memory stand-in for the commands
// cache.RedisSnapshotCache issues. Expiry is recorded, not enforced.
type MockRedisClient struct {
	mu   sync.Mutex
	keys map[string]string
	ttls map[string]time.Duration

	SetError  error
	GetError  error
	PingError error
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		keys: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		cmd.SetErr(fmt.Errorf("mock redis: unsupported value type %T", value))
		return cmd
	}
	m.Put(key, s, expiration)
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}
	val, ok := m.Value(key)
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

// Put seeds a key directly.
func (m *MockRedisClient) Put(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = value
	m.ttls[key] = ttl
}

func (m *MockRedisClient) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.keys[key]
	return val, ok
}

func (m *MockRedisClient) HasKey(key string) bool {
	_, ok := m.Value(key)
	return ok
}

// TTL is the expiration last passed for key.
func (m *MockRedisClient) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}
