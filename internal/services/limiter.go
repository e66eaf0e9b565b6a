package services

import (
	"context"
	"sync"
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/config"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
)

// GlobalLimiterKey is the single key shared by every caller of the global limiter.
const GlobalLimiterKey = "global"

// Limiter is a sliding-window attempt counter.
type Limiter interface {
	// TryAcquire records an attempt for key and reports whether it fits in the
	// current window. Rejected attempts are not recorded.
	TryAcquire(ctx context.Context, key string) (bool, error)
}

// LimiterConfig configures one limiter instance.
type LimiterConfig struct {
	Window   time.Duration
	MaxCount int
}

func limiterConfigFrom(w config.WindowConfig) LimiterConfig {
	return LimiterConfig{Window: w.Window(), MaxCount: w.MaxCount}
}

// Limiters bundles the identity and global limiters used by the dispatcher.
type Limiters struct {
	Identity Limiter
	Global   Limiter
}

// NewLimiters builds both limiters from config. The redis backend is used only
// when a client is supplied.
func NewLimiters(cfg *config.RateLimitConfig, redisClient RedisScripter) Limiters {
	identity := limiterConfigFrom(cfg.Identity)
	global := limiterConfigFrom(cfg.Global)
	if cfg.Backend == "redis" && redisClient != nil {
		logger.Infof("[Limiter] Using redis sliding window (identity %d/%v, global %d/%v)",
			identity.MaxCount, identity.Window, global.MaxCount, global.Window)
		return Limiters{
			Identity: NewRedisLimiter(redisClient, "ratelimit:identity", identity),
			Global:   NewRedisLimiter(redisClient, "ratelimit:global", global),
		}
	}
	logger.Infof("[Limiter] Using in-memory sliding window (identity %d/%v, global %d/%v)",
		identity.MaxCount, identity.Window, global.MaxCount, global.Window)
	return Limiters{
		Identity: NewMemoryLimiter(identity),
		Global:   NewMemoryLimiter(global),
	}
}

// window holds accepted attempt timestamps for one key, oldest first.
type window struct {
	hits     []time.Time
	lastSeen time.Time
}

// MemoryLimiter is a process-local sliding window log keyed by identity.
type MemoryLimiter struct {
	mu      sync.Mutex
	cfg     LimiterConfig
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter(cfg LimiterConfig) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) TryAcquire(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok {
		w = &window{}
		l.windows[key] = w
	}
	w.lastSeen = now

	cutoff := now.Add(-l.cfg.Window)
	drop := 0
	for drop < len(w.hits) && !w.hits[drop].After(cutoff) {
		drop++
	}
	w.hits = w.hits[drop:]

	if len(w.hits) >= l.cfg.MaxCount {
		return false, nil
	}
	w.hits = append(w.hits, now)
	return true, nil
}

// Sweep removes keys whose newest attempt left the window.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.Window)
	removed := 0
	for key, w := range l.windows {
		if w.lastSeen.Before(cutoff) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps idle keys every interval until ctx is done.
func (l *MemoryLimiter) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				logger.Debugf("[Limiter] Swept %d idle keys", n)
			}
		}
	}
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
