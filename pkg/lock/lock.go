// Package lock 提供文档级互斥锁，生产环境基于 Redis，测试使用进程内实现。
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNotAcquired 表示锁已被其他持有者占用。
var ErrNotAcquired = errors.New("lock not acquired")

// Locker 获取一把以 key 标识的锁，返回的 release 函数用于释放。
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// DocumentKey 返回文档级锁的 key。
func DocumentKey(documentID uint) string {
	return fmt.Sprintf("annotate:doc:lock:%d", documentID)
}

// 只删除自己持有的锁，避免误删过期后被他人重新获取的锁。
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker 使用 SET NX PX 实现的分布式锁。
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker 创建一个新的 RedisLocker，ttl 为锁的自动过期时间。
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire 尝试获取锁，不阻塞等待。
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotAcquired)
	}
	return func() {
		// 调用方的 ctx 可能已取消，释放时使用独立的超时。
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, owner).Err()
	}, nil
}

// LocalLocker 是进程内的 Locker 实现，用于单元测试和单实例部署。
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker 创建一个新的 LocalLocker。
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, fmt.Errorf("%s: %w", key, ErrNotAcquired)
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
