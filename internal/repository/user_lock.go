package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coder_quest_backend/internal/util"
	"coder_quest_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const lockRetryInterval = 20 * time.Millisecond

// 仅当 value 仍是自己的 token 时才删除，避免误删他人续上的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisUserLocker 基于 SET NX PX 的按用户分布式锁，多实例部署时串行化同一用户的进度写入
type RedisUserLocker struct {
	Redis *redis.Client
	TTL   time.Duration
	Wait  time.Duration
}

func NewRedisUserLocker(rdb *redis.Client, ttl, wait time.Duration) *RedisUserLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return &RedisUserLocker{Redis: rdb, TTL: ttl, Wait: wait}
}

// Lock 阻塞直到拿到锁，超过 Wait 或 ctx 结束返回 ErrLockTimeout。
// 返回的 unlock 可以安全地多次调用。
func (l *RedisUserLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	key := fmt.Sprintf("%s%d", util.UserLockKeyPrefix, userID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.Wait)

	for {
		ok, err := l.Redis.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, util.ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, util.ErrLockTimeout
		case <-time.After(lockRetryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 使用独立 context，请求取消后仍要释放锁
			if err := releaseScript.Run(context.Background(), l.Redis, []string{key}, token).Err(); err != nil && err != redis.Nil {
				logger.Log.Warn("release user lock failed", zap.Uint("userID", userID), zap.Error(err))
			}
		})
	}, nil
}

// LocalUserLocker 单实例或未配置 Redis 时的进程内按用户锁。
// 槽位按引用计数回收，没有持有者和等待者时从 map 中删除。
type LocalUserLocker struct {
	mu    sync.Mutex
	locks map[uint]*lockSlot
	Wait  time.Duration
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalUserLocker(wait time.Duration) *LocalUserLocker {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return &LocalUserLocker{locks: make(map[uint]*lockSlot), Wait: wait}
}

func (l *LocalUserLocker) acquire(userID uint) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.locks[userID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.locks[userID] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalUserLocker) release(userID uint, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.locks, userID)
	}
}

func (l *LocalUserLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	slot := l.acquire(userID)
	timer := time.NewTimer(l.Wait)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
	case <-timer.C:
		l.release(userID, slot)
		return nil, util.ErrLockTimeout
	case <-ctx.Done():
		l.release(userID, slot)
		return nil, util.ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.release(userID, slot)
		})
	}, nil
}
