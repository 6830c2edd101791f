package rediswr

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rise-and-shine/tabletop/bulkload"
	"github.com/rise-and-shine/tabletop/observability/logger"
)

// CodeUnavailable is returned when Redis cannot be reached.
const CodeUnavailable = "REDIS_UNAVAILABLE"

// releaseScript deletes the key only if it still holds our token.
//nolint:gochecknoglobals // compiled script
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ bulkload.Locker = (*Locker)(nil)

// Locker is a bulkload.Locker shared by every instance using the same Redis.
type Locker struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewLocker creates a Locker. Keys are namespaced with cfg.KeyPrefix and expire after cfg.LockTTL.
func NewLocker(client redis.Cmdable, cfg Config) *Locker {
	return &Locker{client: client, prefix: cfg.KeyPrefix, ttl: cfg.LockTTL}
}

func (l *Locker) TryLock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	fullKey := l.prefix + key

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeUnavailable), errx.WithType(errx.T_Internal))
	}
	if !ok {
		return nil, bulkload.ErrInProgress(key)
	}

	return func() {
		// The request context may already be done when the lock is released.
		err := releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{fullKey}, token).Err()
		if err != nil {
			logger.WithContext(ctx).Warnx(errx.Wrap(err, errx.WithDetails(errx.D{"key": fullKey})))
		}
	}, nil
}
