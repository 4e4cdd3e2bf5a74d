package reminder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicedesk/internal/config"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker guards the sweep so only one replica runs it at a time.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// NewRedisClient returns nil when REDIS_ADDR is unset.
func NewRedisClient(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
}

// NewLocker falls back to a process-local lock without redis.
func NewLocker(client *redis.Client) Locker {
	if client == nil {
		return &localLocker{held: map[string]string{}}
	}
	return &RedisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

type RedisLocker struct {
	client *redis.Client
	script *redis.Script
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := validateLock(key, ttl); err != nil {
		return "", false, err
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func (l *localLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := validateLock(key, ttl); err != nil {
		return "", false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, true, nil
}

func (l *localLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

func validateLock(key string, ttl time.Duration) error {
	if key == "" {
		return errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return errors.New("lock ttl must be positive")
	}
	return nil
}
