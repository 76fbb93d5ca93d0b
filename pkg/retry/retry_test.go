package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.JitterFraction = 0
	return cfg
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastError(t *testing.T) {
	want := errors.New("down")
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return want
	})
	assert.ErrorIs(t, err, want)
	assert.Equal(t, 3, calls)
}

func TestDo_Permanent(t *testing.T) {
	want := errors.New("bad config")
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return Permanent(want)
	})
	assert.Same(t, want, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryableFilter(t *testing.T) {
	transient := errors.New("transient")
	cfg := fastConfig()
	cfg.RetryableErrors = []error{transient}

	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return errors.New("other")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, fastConfig(), func(context.Context) error {
		t.Fatal("operation must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), fastConfig(), func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("once")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
