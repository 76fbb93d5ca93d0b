package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chat-assistant/backend/internal/delay"
	"github.com/chat-assistant/backend/internal/profile"
	"github.com/chat-assistant/backend/pkg/config"
)

func newTestManager(t *testing.T, ttl time.Duration, clock *fakeClock) *Manager {
	t.Helper()
	reg, err := profile.NewRegistry(config.ProfilesConfig{})
	require.NoError(t, err)
	m := NewManager(reg, ttl, WithLatency(delay.Zero{}), WithClock(clock.Now))
	m.now = clock.Now
	return m
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := newTestManager(t, time.Hour, newFakeClock())

	s, err := m.Create("fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", s.Profile().Name)

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Delete(s.ID()))
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(s.ID()), ErrNotFound)

	_, err = m.Create("unknown")
	assert.Error(t, err)
}

func TestManager_Sweep(t *testing.T) {
	clock := newFakeClock()
	m := newTestManager(t, 10*time.Minute, clock)

	idle, err := m.Create("assistant")
	require.NoError(t, err)
	clock.Advance(8 * time.Minute)

	active, err := m.Create("assistant")
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)
	_, err = active.Submit(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, 1, m.Sweep())
	_, err = m.Get(idle.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(active.ID())
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestManager_RunStops(t *testing.T) {
	m := newTestManager(t, time.Minute, newFakeClock())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	<-done
}
