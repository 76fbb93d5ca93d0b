package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/cache"
	"github.com/chat-assistant/backend/internal/session"
	"github.com/chat-assistant/backend/internal/storage/models"
	"github.com/chat-assistant/backend/internal/storage/sqlite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

type memWriter struct {
	mu   sync.Mutex
	recs []*models.ExchangeRecord
}

func (w *memWriter) InsertExchange(_ context.Context, rec *models.ExchangeRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.recs = append(w.recs, rec)
	return nil
}

func exchange(id, intent string, conf float64, failed bool) session.Exchange {
	return session.Exchange{
		User:    session.Entry{ID: "u-" + id, Message: "hello", Sender: session.SenderUser},
		Bot:     session.Entry{ID: id, Message: "Hi", Sender: session.SenderBot, Intent: intent, Confidence: &conf, Timestamp: time.UnixMilli(1000)},
		Latency: 40 * time.Millisecond,
		Failed:  failed,
	}
}

func newCounters(t *testing.T) *cache.Local {
	t.Helper()
	c := cache.NewLocal(time.Hour, zap.NewNop())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecorder_FlushesOnCancel(t *testing.T) {
	w := &memWriter{}
	counters := newCounters(t)
	r := NewRecorder(w, counters, 8)

	r.ObserveExchange("s1", "fast", exchange("b1", "greeting", 0.99, false))
	r.ObserveExchange("s1", "fast", exchange("b2", "error", 0.1, true))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Run(ctx)

	require.Len(t, w.recs, 2)
	assert.Equal(t, "s1", w.recs[0].SessionID)
	assert.Equal(t, "hello", w.recs[0].Utterance)
	assert.Equal(t, int64(40), w.recs[0].LatencyMS)
	assert.True(t, w.recs[1].Failed)

	ex, failures, err := Totals(context.Background(), counters, "fast")
	require.NoError(t, err)
	assert.Equal(t, int64(2), ex)
	assert.Equal(t, int64(1), failures)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	r := NewRecorder(&memWriter{}, newCounters(t), 1)
	r.ObserveExchange("s1", "fast", exchange("b1", "greeting", 0.99, false))
	r.ObserveExchange("s1", "fast", exchange("b2", "greeting", 0.99, false))
	assert.Equal(t, int64(1), r.Dropped())
}

func TestRecorder_SQLite(t *testing.T) {
	db, err := sqlite.NewClient(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.InitSchema())

	r := NewRecorder(db, newCounters(t), 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	r.ObserveExchange("s9", "assistant", exchange("b1", "greeting", 0.95, false))
	r.ObserveExchange("s9", "assistant", exchange("b2", "help", 0.9, false))
	cancel()
	<-done

	hist, err := db.ExchangeHistory(context.Background(), "s9", 10)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "b2", hist[0].ID)
	assert.Equal(t, 0.9, hist[0].Confidence)

	require.NoError(t, db.StoreFeedback(context.Background(), &models.Feedback{ExchangeID: "b1", Helpful: true}))
	require.NoError(t, db.StoreFeedback(context.Background(), &models.Feedback{ExchangeID: "b2", Helpful: false}))
	assert.ErrorIs(t, db.StoreFeedback(context.Background(), &models.Feedback{ExchangeID: "nope"}), sqlite.ErrNotFound)

	ratio, n, err := db.HelpfulRatio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0.5, ratio)
}
