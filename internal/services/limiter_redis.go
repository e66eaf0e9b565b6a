package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
)

// RedisScripter is the subset of the redis client the limiter needs.
type RedisScripter = redis.Scripter

// slidingWindowScript trims the window, checks the count and records the hit
// in one atomic step. Returns 1 when the attempt is accepted.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// RedisLimiter is a sliding window shared by every process using the same redis.
type RedisLimiter struct {
	client RedisScripter
	prefix string
	cfg    LimiterConfig
	now    func() time.Time
}

func NewRedisLimiter(client RedisScripter, prefix string, cfg LimiterConfig) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, cfg: cfg, now: time.Now}
}

// TryAcquire fails open: when redis is unreachable the attempt is allowed and
// the error is returned for logging.
func (l *RedisLimiter) TryAcquire(ctx context.Context, key string) (bool, error) {
	now := l.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{l.prefix + ":" + key},
		now, l.cfg.Window.Milliseconds(), l.cfg.MaxCount, uuid.NewString(),
	).Int()
	if err != nil {
		logger.Warnf("[Limiter] redis limiter %s unavailable, allowing request: %v", l.prefix, err)
		return true, err
	}
	return res == 1, nil
}
