// Package cache stores small JSON values and counters in Redis, falling back
// to process memory when Redis is disabled, unreachable or tripped.
package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/cache/redis"
	"github.com/chat-assistant/backend/pkg/circuitbreaker"
	"github.com/chat-assistant/backend/pkg/config"
	"github.com/chat-assistant/backend/pkg/retry"
	"github.com/chat-assistant/backend/pkg/utils"
)

type Store interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Incr(ctx context.Context, key string) (int64, error)
	Counter(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

const (
	PrefixIntent   = "intent:"
	PrefixResponse = "response:"
	PrefixCounter  = "counter:"
)

func IntentKey(profile, text string) string {
	return PrefixIntent + profile + ":" + utils.HashString(text)
}

func ResponseKey(profile, intent string) string {
	return PrefixResponse + profile + ":" + intent
}

func CounterKey(name string) string {
	return PrefixCounter + name
}

// Guarded sends calls to primary through a circuit breaker and serves them
// from fallback while the breaker is open or primary errors.
type Guarded struct {
	primary  Store
	fallback Store
	breaker  *circuitbreaker.CircuitBreaker
	log      *zap.Logger
}

func NewGuarded(primary, fallback Store, breaker *circuitbreaker.CircuitBreaker, log *zap.Logger) *Guarded {
	return &Guarded{primary: primary, fallback: fallback, breaker: breaker, log: log}
}

func (g *Guarded) degrade(op string, err error) {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return
	}
	g.log.Warn("Cache primary failed, using fallback", zap.String("op", op), zap.Error(err))
}

func (g *Guarded) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	hit, err := circuitbreaker.Call(ctx, g.breaker, func(ctx context.Context) (bool, error) {
		return g.primary.GetJSON(ctx, key, dst)
	})
	if err == nil {
		return hit, nil
	}
	g.degrade("get", err)
	return g.fallback.GetJSON(ctx, key, dst)
}

func (g *Guarded) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.primary.SetJSON(ctx, key, value, ttl)
	})
	if err == nil {
		return nil
	}
	g.degrade("set", err)
	return g.fallback.SetJSON(ctx, key, value, ttl)
}

func (g *Guarded) DeletePrefix(ctx context.Context, prefix string) error {
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.primary.DeletePrefix(ctx, prefix)
	})
	if err != nil {
		g.degrade("delete", err)
	}
	// The fallback may hold entries written while primary was down.
	return g.fallback.DeletePrefix(ctx, prefix)
}

func (g *Guarded) Incr(ctx context.Context, key string) (int64, error) {
	n, err := circuitbreaker.Call(ctx, g.breaker, func(ctx context.Context) (int64, error) {
		return g.primary.Incr(ctx, key)
	})
	if err == nil {
		return n, nil
	}
	g.degrade("incr", err)
	return g.fallback.Incr(ctx, key)
}

func (g *Guarded) Counter(ctx context.Context, key string) (int64, error) {
	n, err := circuitbreaker.Call(ctx, g.breaker, func(ctx context.Context) (int64, error) {
		return g.primary.Counter(ctx, key)
	})
	if err == nil {
		return n, nil
	}
	g.degrade("counter", err)
	return g.fallback.Counter(ctx, key)
}

func (g *Guarded) Ping(ctx context.Context) error {
	return g.breaker.Execute(ctx, g.primary.Ping)
}

func (g *Guarded) Close() error {
	return errors.Join(g.primary.Close(), g.fallback.Close())
}

// Open connects to Redis with retries when enabled. Without Redis, or when
// every attempt fails, the local store is returned on its own.
func Open(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) Store {
	local := NewLocal(time.Minute, log)
	if !cfg.Enabled {
		return local
	}

	rcfg := retry.DefaultConfig()
	rcfg.MaxAttempts = 5
	rcfg.InitialDelay = 200 * time.Millisecond
	rcfg.Logger = log

	client, err := retry.DoWithResult(ctx, rcfg, func(ctx context.Context) (*redis.Client, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return redis.NewClient(pingCtx, cfg.Host, cfg.Port, cfg.Password, cfg.DB)
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		return local
	}

	breaker := circuitbreaker.NewCircuitBreaker("redis", circuitbreaker.Config{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		Logger:           log,
	})
	return NewGuarded(client, local, breaker, log)
}
