package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/chat-assistant/backend/internal/delay"
	"github.com/chat-assistant/backend/internal/engine"
	"github.com/chat-assistant/backend/internal/profile"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// latencies returns a policy that advances the clock by each duration in turn.
func (c *fakeClock) latencies(ds ...time.Duration) delay.Policy {
	i := 0
	return delay.Func(func(ctx context.Context) (time.Duration, error) {
		d := ds[i%len(ds)]
		i++
		c.Advance(d)
		return d, nil
	})
}

func newTestSession(t *testing.T, p *profile.Profile, opts ...Option) *Session {
	t.Helper()
	base := []Option{WithLatency(delay.Zero{}), WithDebounce(delay.Zero{})}
	return New(p, append(base, opts...)...)
}

type observerFunc func(string, string, Exchange)

func (f observerFunc) ObserveExchange(id, p string, ex Exchange) { f(id, p, ex) }

func TestNew_Greeting(t *testing.T) {
	s := newTestSession(t, profile.Assistant())

	tr := s.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, SenderBot, tr[0].Sender)
	assert.Equal(t, "Hello! I'm your AI assistant. How can I help you today?", tr[0].Message)
	assert.Equal(t, 0.95, *tr[0].Confidence)
	assert.Equal(t, "greeting", tr[0].Intent)

	assert.Equal(t, Stats{
		TotalMessages:     1,
		AverageConfidence: 0.95,
		TopIntents:        []string{"greeting"},
	}, s.Stats())
}

func TestSubmit_AppendsExchange(t *testing.T) {
	s := newTestSession(t, profile.Assistant())

	ex, err := s.Submit(context.Background(), "Hello there")
	require.NoError(t, err)

	assert.Equal(t, SenderUser, ex.User.Sender)
	assert.Equal(t, "Hello there", ex.User.Message)
	assert.Nil(t, ex.User.Confidence)
	assert.Equal(t, "greeting", ex.Bot.Intent)
	assert.Equal(t, 0.92, *ex.Bot.Confidence)
	assert.False(t, ex.Failed)

	tr := s.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, ex.User.ID, tr[1].ID)
	assert.Equal(t, ex.Bot.ID, tr[2].ID)

	st := s.Stats()
	assert.Equal(t, 3, st.TotalMessages)
	assert.InDelta(t, 0.92, st.AverageConfidence, 1e-9)
}

func TestSubmit_RejectsBlank(t *testing.T) {
	s := newTestSession(t, profile.Fast())
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := s.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyUtterance)
	}
	assert.Len(t, s.Transcript(), 1)
}

func TestStats_RunningMean(t *testing.T) {
	table := &engine.Table{
		Name: "fixed",
		Rules: []engine.Rule{
			{Name: "a", Any: []string{"a"}, Message: "A", Confidence: 0.95, Intent: "a"},
			{Name: "b", Any: []string{"b"}, Message: "B", Confidence: 0.92, Intent: "b"},
		},
		Fallback: engine.Record{Message: "?", Confidence: 0.5, Intent: "general"},
	}
	p := profile.Assistant()
	p.Table = table
	s := newTestSession(t, p)

	_, err := s.Submit(context.Background(), "a")
	require.NoError(t, err)
	_, err = s.Submit(context.Background(), "b")
	require.NoError(t, err)

	st := s.Stats()
	assert.InDelta(t, 0.935, st.AverageConfidence, 1e-9)
	assert.Equal(t, 5, st.TotalMessages)
	assert.Equal(t, []string{"greeting", "a", "b"}, st.TopIntents)
}

func TestStats_IntentSetBounded(t *testing.T) {
	rules := make([]engine.Rule, 100)
	for i := range rules {
		kw := fmt.Sprintf("k%03d", i)
		rules[i] = engine.Rule{Name: kw, Any: []string{kw}, Message: kw, Confidence: 0.5, Intent: "intent-" + kw}
	}
	p := profile.Fast()
	p.Table = &engine.Table{Name: "many", Rules: rules, Fallback: engine.Record{Message: "?", Confidence: 0.1, Intent: "general"}}
	s := newTestSession(t, p)

	for i := 0; i < 100; i++ {
		_, err := s.Submit(context.Background(), fmt.Sprintf("k%03d", i))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(s.Stats().TopIntents), 5)
	}

	assert.Equal(t, []string{"greeting", "intent-k000", "intent-k001", "intent-k002", "intent-k003"}, s.Stats().TopIntents)
	assert.Equal(t, 201, s.Stats().TotalMessages)
}

func TestStats_LatencyWindow(t *testing.T) {
	clock := newFakeClock()
	var ds []time.Duration
	for i := 1; i <= 12; i++ {
		ds = append(ds, time.Duration(i*10)*time.Millisecond)
	}
	s := newTestSession(t, profile.Fast(), WithClock(clock.Now), WithLatency(clock.latencies(ds...)))

	for i := 0; i < 12; i++ {
		_, err := s.Submit(context.Background(), "hello")
		require.NoError(t, err)
	}

	st := s.Stats()
	assert.Equal(t, int64(120), st.LastResponseMS)
	// window keeps 30..120ms -> mean 75
	assert.Equal(t, int64(75), st.AverageResponseMS)
	assert.Equal(t, 13.3, st.MessagesPerSecond)
}

func TestStats_MessagesPerSecondZeroWithoutSamples(t *testing.T) {
	s := newTestSession(t, profile.Fast())
	assert.Zero(t, s.Stats().MessagesPerSecond)

	// zero latency samples must not divide by zero
	_, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	st := s.Stats()
	assert.Zero(t, st.MessagesPerSecond)
	assert.Zero(t, st.AverageResponseMS)
}

func TestSubmit_PerformancePlaceholders(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(t, profile.Fast(), WithClock(clock.Now), WithLatency(clock.latencies(40*time.Millisecond)))

	ex, err := s.Submit(context.Background(), "what's your performance?")
	require.NoError(t, err)
	assert.Equal(t, "🏃 My average response time is 0ms! I process 0 messages per second.", ex.Bot.Message)

	ex, err = s.Submit(context.Background(), "performance again")
	require.NoError(t, err)
	assert.Equal(t, "🏃 My average response time is 40ms! I process 25 messages per second.", ex.Bot.Message)
}

func TestSubmit_DelayFailureSubstitutesErrorRecord(t *testing.T) {
	failing := delay.Func(func(ctx context.Context) (time.Duration, error) {
		return 0, errors.New("backend unreachable")
	})
	s := newTestSession(t, profile.Assistant(), WithLatency(failing))
	before := s.Stats()

	ex, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, ex.Failed)
	assert.Equal(t, "error", ex.Bot.Intent)
	assert.Equal(t, 0.1, *ex.Bot.Confidence)
	assert.Equal(t, "Sorry, I'm having trouble connecting. Please try again.", ex.Bot.Message)

	assert.Len(t, s.Transcript(), 3)
	assert.Equal(t, before, s.Stats())
}

func TestSubmit_CancelledContext(t *testing.T) {
	s := New(profile.Fast(), WithLatency(delay.Fixed{D: time.Minute}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex, err := s.Submit(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, ex.Failed)
	assert.Equal(t, "⚠️ Connection error - but I'm still fast!", ex.Bot.Message)
}

func TestClear_ResetsTranscriptAndStats(t *testing.T) {
	s := newTestSession(t, profile.Assistant())
	initial := s.Stats()

	for _, msg := range []string{"hi", "help", "price?", "bye", "thanks", "what"} {
		_, err := s.Submit(context.Background(), msg)
		require.NoError(t, err)
	}
	require.Len(t, s.Transcript(), 13)

	s.Clear()

	tr := s.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, "greeting", tr[0].Intent)
	assert.Equal(t, SenderBot, tr[0].Sender)
	assert.Equal(t, initial, s.Stats())
}

func TestClear_DropsPendingReply(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gate := delay.Func(func(ctx context.Context) (time.Duration, error) {
		close(entered)
		<-release
		return 0, nil
	})
	s := newTestSession(t, profile.Assistant(), WithLatency(gate))

	errc := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "hello")
		errc <- err
	}()

	<-entered
	s.Clear()
	close(release)

	assert.ErrorIs(t, <-errc, ErrCleared)
	assert.Len(t, s.Transcript(), 1)
	assert.Equal(t, 1, s.Stats().TotalMessages)
}

func TestSubmit_ConcurrentKeepsPairsAdjacent(t *testing.T) {
	s := newTestSession(t, profile.Assistant())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Submit(context.Background(), fmt.Sprintf("message %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tr := s.Transcript()
	require.Len(t, tr, 41)
	for i := 1; i < len(tr); i += 2 {
		assert.Equal(t, SenderUser, tr[i].Sender)
		assert.Equal(t, SenderBot, tr[i+1].Sender)
	}
	assert.Equal(t, 41, s.Stats().TotalMessages)
}

func TestTranscript_IsACopy(t *testing.T) {
	s := newTestSession(t, profile.Assistant())
	_, err := s.Submit(context.Background(), "thanks")
	require.NoError(t, err)

	first := s.Transcript()
	first[1].Message = "tampered"

	opt := cmpopts.IgnoreFields(Entry{}, "ID", "Timestamp")
	if diff := cmp.Diff(first[:1], s.Transcript()[:1], opt); diff != "" {
		t.Errorf("greeting changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, "thanks", s.Transcript()[1].Message)
}

func TestSuggest_SupersededBySubmit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	gate := delay.Func(func(ctx context.Context) (time.Duration, error) {
		close(entered)
		<-release
		return 0, nil
	})
	s := newTestSession(t, profile.Assistant(), WithDebounce(gate))

	type res struct {
		got []string
		ok  bool
	}
	out := make(chan res, 1)
	go func() {
		got, ok, _ := s.Suggest(context.Background(), "what")
		out <- res{got, ok}
	}()

	<-entered
	_, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	close(release)

	r := <-out
	assert.False(t, r.ok)
	assert.Nil(t, r.got)
}

func TestSuggest_Immediate(t *testing.T) {
	s := newTestSession(t, profile.Fast())
	got, ok, err := s.Suggest(context.Background(), "fast")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"How fast are you?"}, got)
}

func TestObserver(t *testing.T) {
	var seen []string
	var ids []string
	obs := observerFunc(func(id, p string, ex Exchange) {
		ids = append(ids, id)
		seen = append(seen, p+":"+ex.Bot.Intent)
	})
	s := newTestSession(t, profile.Fast(), WithObserver(Observers{obs, obs}))

	_, err := s.Submit(context.Background(), "thank you")
	require.NoError(t, err)
	assert.Equal(t, []string{"fast:gratitude", "fast:gratitude"}, seen)
	assert.Equal(t, []string{s.ID(), s.ID()}, ids)
}
