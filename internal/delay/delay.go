// Package delay provides the injectable wait used to simulate backend latency
// and to debounce suggestion lookups.
package delay

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

type Policy interface {
	// Wait blocks for the policy's duration and reports how long it waited.
	// It fails only when ctx ends first.
	Wait(ctx context.Context) (time.Duration, error)
}

// Zero never waits. Tests use it to make exchanges immediate.
type Zero struct{}

func (Zero) Wait(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 0, nil
}

type Fixed struct {
	D time.Duration
}

func (f Fixed) Wait(ctx context.Context) (time.Duration, error) {
	return sleep(ctx, f.D)
}

// Uniform waits a duration drawn uniformly from [Min, Max].
type Uniform struct {
	Min time.Duration
	Max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewUniform(min, max time.Duration, seed int64) *Uniform {
	if max < min {
		min, max = max, min
	}
	return &Uniform{Min: min, Max: max, rng: rand.New(rand.NewSource(seed))}
}

func (u *Uniform) Next() time.Duration {
	span := u.Max - u.Min
	if span <= 0 {
		return u.Min
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.rng == nil {
		u.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return u.Min + time.Duration(u.rng.Int63n(int64(span)+1))
}

func (u *Uniform) Wait(ctx context.Context) (time.Duration, error) {
	return sleep(ctx, u.Next())
}

// Func adapts a function to Policy. Tests use it to inject failures.
type Func func(ctx context.Context) (time.Duration, error)

func (f Func) Wait(ctx context.Context) (time.Duration, error) {
	return f(ctx)
}

func sleep(ctx context.Context, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, ctx.Err()
	}
	start := time.Now()
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return time.Since(start), ctx.Err()
	case <-t.C:
		return time.Since(start), nil
	}
}
