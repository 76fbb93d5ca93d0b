package delay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestZero(t *testing.T) {
	d, err := Zero{}.Wait(context.Background())
	require.NoError(t, err)
	assert.Zero(t, d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Zero{}.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUniform_Bounds(t *testing.T) {
	u := NewUniform(50*time.Millisecond, 150*time.Millisecond, 1)
	for i := 0; i < 1000; i++ {
		d := u.Next()
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}

	swapped := NewUniform(2*time.Second, 800*time.Millisecond, 1)
	assert.Equal(t, 800*time.Millisecond, swapped.Min)

	flat := &Uniform{Min: time.Millisecond, Max: time.Millisecond}
	assert.Equal(t, time.Millisecond, flat.Next())
}

func TestFixed_Waits(t *testing.T) {
	d, err := Fixed{D: 5 * time.Millisecond}.Wait(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 5*time.Millisecond)
}

func TestWait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := Fixed{D: time.Minute}.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
