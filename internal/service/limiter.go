package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gallery-service/internal/persistence"
)

// AttemptLimiter throttles password attempts per client key using
// fixed-window counters in Redis. When Redis is unreachable the limiter
// fails open: password checks still carry PBKDF2's cost, and availability
// wins over throttling here.
type AttemptLimiter struct {
	redis  *persistence.Redis
	logger *zap.Logger
	prefix string
	limit  int
	window time.Duration
}

// NewAttemptLimiter builds a limiter for one attempt family (login, unlock).
func NewAttemptLimiter(redis *persistence.Redis, logger *zap.Logger, prefix string, limit int, window time.Duration) *AttemptLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &AttemptLimiter{redis: redis, logger: logger, prefix: prefix, limit: limit, window: window}
}

// Allow records an attempt for key and reports whether it is within the
// window budget.
func (l *AttemptLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.redis == nil || l.redis.Client == nil {
		return true
	}

	redisKey := l.prefix + ":" + key
	count, err := l.redis.Client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn("attempt limiter unavailable", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := l.redis.Client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Warn("attempt limiter expire failed", zap.Error(err))
		}
	}
	return count <= int64(l.limit)
}

// Reset clears the window for key, used after a successful attempt.
func (l *AttemptLimiter) Reset(ctx context.Context, key string) {
	if l == nil || l.redis == nil || l.redis.Client == nil {
		return
	}
	if err := l.redis.Client.Del(ctx, l.prefix+":"+key).Err(); err != nil {
		l.logger.Warn("attempt limiter reset failed", zap.Error(err))
	}
}
