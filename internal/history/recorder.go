// Package history persists completed exchanges off the request path and keeps
// per-profile counters in the cache.
package history

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/cache"
	"github.com/chat-assistant/backend/internal/session"
	"github.com/chat-assistant/backend/internal/storage/models"
	"github.com/chat-assistant/backend/pkg/logger"
)

type Writer interface {
	InsertExchange(ctx context.Context, record *models.ExchangeRecord) error
}

// Recorder is a session observer. ObserveExchange only enqueues; Run does
// the writes.
type Recorder struct {
	writer   Writer
	counters cache.Store
	queue    chan *models.ExchangeRecord
	dropped  atomic.Int64
	log      *zap.Logger
}

func NewRecorder(writer Writer, counters cache.Store, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 256
	}
	return &Recorder{
		writer:   writer,
		counters: counters,
		queue:    make(chan *models.ExchangeRecord, buffer),
		log:      logger.Named("history"),
	}
}

func (r *Recorder) ObserveExchange(sessionID, profile string, ex session.Exchange) {
	rec := &models.ExchangeRecord{
		ID:        ex.Bot.ID,
		SessionID: sessionID,
		Profile:   profile,
		Utterance: ex.User.Message,
		Response:  ex.Bot.Message,
		Intent:    ex.Bot.Intent,
		LatencyMS: ex.Latency.Milliseconds(),
		Failed:    ex.Failed,
		CreatedAt: ex.Bot.Timestamp,
	}
	if ex.Bot.Confidence != nil {
		rec.Confidence = *ex.Bot.Confidence
	}

	select {
	case r.queue <- rec:
	default:
		r.dropped.Add(1)
		r.log.Warn("History queue full, exchange dropped", zap.String("session_id", sessionID))
	}
}

// Dropped is how many exchanges were discarded because the queue was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Run writes queued exchanges until ctx is cancelled, then flushes what is
// left with a short deadline.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case rec := <-r.queue:
			r.write(ctx, rec)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case rec := <-r.queue:
			r.write(ctx, rec)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, rec *models.ExchangeRecord) {
	if err := r.writer.InsertExchange(ctx, rec); err != nil {
		r.log.Error("Failed to persist exchange", zap.String("exchange_id", rec.ID), zap.Error(err))
	}

	if _, err := r.counters.Incr(ctx, cache.CounterKey("exchanges:"+rec.Profile)); err != nil {
		r.log.Warn("Failed to bump exchange counter", zap.Error(err))
	}
	if rec.Failed {
		if _, err := r.counters.Incr(ctx, cache.CounterKey("failures:"+rec.Profile)); err != nil {
			r.log.Warn("Failed to bump failure counter", zap.Error(err))
		}
	}
}

// Totals reads the exchange and failure counters for a profile.
func Totals(ctx context.Context, counters cache.Store, profile string) (exchanges, failures int64, err error) {
	exchanges, err = counters.Counter(ctx, cache.CounterKey("exchanges:"+profile))
	if err != nil {
		return 0, 0, err
	}
	failures, err = counters.Counter(ctx, cache.CounterKey("failures:"+profile))
	return exchanges, failures, err
}
