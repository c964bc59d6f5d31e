package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/contextkeys"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/core/port"
)

const DefaultKey = "brokerage:sweep:lock"

// снимаем блокировку, только если она все еще наша
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SweepLock - аренда ключа через SET NX с TTL. Если процесс упал, не сняв
// блокировку, она освободится по истечении TTL.
type SweepLock struct {
	client   redis.Cmdable
	key      string
	ttl      time.Duration
	newToken func() string
}

func NewSweepLock(client redis.Cmdable, key string, ttl time.Duration) (*SweepLock, error) {
	if client == nil {
		return nil, fmt.Errorf("redis lock: client cannot be nil")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("redis lock: ttl must be positive, got %s", ttl)
	}
	if key == "" {
		key = DefaultKey
	}
	return &SweepLock{client: client, key: key, ttl: ttl, newToken: uuid.NewString}, nil
}

func (l *SweepLock) TryAcquire(ctx context.Context) (func(), bool, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "RedisSweepLock", "key": l.key})

	token := l.newToken()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis lock: SETNX %s: %w", l.key, err)
	}
	if !ok {
		logger.Debug("Lock is held by another instance", nil)
		return nil, false, nil
	}

	release := func() {
		// проход мог быть отменен, снять блокировку нужно все равно
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{l.key}, token).Err(); err != nil {
			logger.Error("Failed to release sweep lock, it will expire by TTL", err, port.Fields{"ttl": l.ttl.String()})
		}
	}
	return release, true, nil
}
