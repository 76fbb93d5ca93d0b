package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Local is the in-memory Store used when Redis is disabled or unreachable.
type Local struct {
	mu       sync.RWMutex
	data     map[string]entry
	counters map[string]int64
	now      func() time.Time
	log      *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewLocal starts a cleanup loop every cleanupInterval (one minute when not
// positive). Close stops it.
func NewLocal(cleanupInterval time.Duration, log *zap.Logger) *Local {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	c := &Local{
		data:     make(map[string]entry),
		counters: make(map[string]int64),
		now:      time.Now,
		log:      log,
		stopCh:   make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(cleanupInterval)

	log.Info("Local in-memory cache initialized",
		zap.Duration("cleanup_interval", cleanupInterval),
	)
	return c
}

func (c *Local) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		return false, nil
	}
	if err := json.Unmarshal(e.value, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *Local) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	e := entry{value: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.data[key] = e
	c.mu.Unlock()
	return nil
}

func (c *Local) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	return nil
}

func (c *Local) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *Local) Counter(ctx context.Context, key string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counters[key], nil
}

func (c *Local) Ping(ctx context.Context) error {
	return nil
}

func (c *Local) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
	return nil
}

func (c *Local) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(c.now())
}

func (c *Local) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Local) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := 0
	for key, e := range c.data {
		if c.expired(e) {
			delete(c.data, key)
			expired++
		}
	}

	if expired > 0 {
		c.log.Debug("Cache cleanup completed", zap.Int("expired_entries", expired))
	}
}
