package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAttemptLimiterFailsOpenWithoutRedis(t *testing.T) {
	limiter := NewAttemptLimiter(nil, zap.NewNop(), "login", 2, time.Minute)
	ctx := context.Background()

	// Without a reachable Redis the limiter must not block logins, no
	// matter how many attempts arrive.
	for i := 0; i < 10; i++ {
		if !limiter.Allow(ctx, "10.0.0.1") {
			t.Fatalf("attempt %d was blocked without redis", i)
		}
	}
	limiter.Reset(ctx, "10.0.0.1")
}

func TestAttemptLimiterDefaults(t *testing.T) {
	limiter := NewAttemptLimiter(nil, zap.NewNop(), "login", 0, 0)
	if limiter.limit != 10 {
		t.Fatalf("expected default limit 10, got %d", limiter.limit)
	}
	if limiter.window != 5*time.Minute {
		t.Fatalf("expected default window 5m, got %s", limiter.window)
	}
}
