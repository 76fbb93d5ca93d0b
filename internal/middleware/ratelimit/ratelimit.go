package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/metrics"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimiter is a token bucket per client. A client is the X-Session-ID
// header when present, otherwise the remote IP.
type RateLimiter struct {
	buckets    map[string]*bucket
	mu         sync.RWMutex
	maxTokens  int
	refillRate time.Duration
	idleAfter  time.Duration
	logger     *zap.Logger
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type Config struct {
	MaxRequestsPerMinute int
	WindowDuration       time.Duration
	CleanupInterval      time.Duration
	Logger               *zap.Logger
	// Now overrides the clock in tests.
	Now                  func() time.Time
}

func New(cfg Config) *RateLimiter {
	if cfg.MaxRequestsPerMinute <= 0 {
		cfg.MaxRequestsPerMinute = 60
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	rl := &RateLimiter{
		buckets:    make(map[string]*bucket),
		maxTokens:  cfg.MaxRequestsPerMinute,
		refillRate: cfg.WindowDuration / time.Duration(cfg.MaxRequestsPerMinute),
		idleAfter:  2 * cfg.WindowDuration,
		logger:     cfg.Logger,
		now:        cfg.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	go rl.cleanupLoop(cfg.CleanupInterval)

	return rl
}

func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if sid := c.Get("X-Session-ID"); sid != "" {
			key = "session:" + sid
		}

		if !rl.Allow(key) {
			metrics.RateLimited.Inc()
			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			c.Set(fiber.HeaderRetryAfter, "60")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return c.Next()
	}
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.RLock()
	b, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if b, exists = rl.buckets[key]; !exists {
			b = &bucket{tokens: rl.maxTokens, lastRefill: rl.now()}
			rl.buckets[key] = b
		}
		rl.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()
	if refill := int(now.Sub(b.lastRefill) / rl.refillRate); refill > 0 {
		b.tokens = min(rl.maxTokens, b.tokens+refill)
		b.lastRefill = b.lastRefill.Add(time.Duration(refill) * rl.refillRate)
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if now.Sub(b.lastRefill) > rl.idleAfter {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Stop ends the cleanup goroutine and waits for it.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}
