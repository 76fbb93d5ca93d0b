package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/delay"
	"github.com/chat-assistant/backend/internal/engine"
	"github.com/chat-assistant/backend/internal/profile"
	"github.com/chat-assistant/backend/internal/suggest"
	"github.com/chat-assistant/backend/pkg/logger"
)

var (
	ErrEmptyUtterance = errors.New("message is empty")
	ErrCleared        = errors.New("session was cleared while the reply was pending")
	ErrNotFound       = errors.New("session not found")
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Entry struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Sender     Sender    `json:"sender"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence *float64  `json:"confidence,omitempty"`
	Intent     string    `json:"intent,omitempty"`
}

type Exchange struct {
	User    Entry         `json:"user"`
	Bot     Entry         `json:"bot"`
	Latency time.Duration `json:"-"`
	Failed  bool          `json:"failed"`
}

// Observer is told about every completed exchange. It runs on the
// submitting goroutine and should not block.
type Observer interface {
	ObserveExchange(sessionID, profile string, ex Exchange)
}

// Observers fans an exchange out to each observer in order.
type Observers []Observer

func (o Observers) ObserveExchange(sessionID, profile string, ex Exchange) {
	for _, obs := range o {
		obs.ObserveExchange(sessionID, profile, ex)
	}
}

type Option func(*Session)

// WithLatency replaces the profile's simulated latency.
func WithLatency(p delay.Policy) Option {
	return func(s *Session) { s.latency = p }
}

func WithDebounce(p delay.Policy) Option {
	return func(s *Session) { s.debouncer = suggest.NewDebouncer(s.profile.Suggester(), p) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session is one conversation. Submits are serialised so every user entry is
// immediately followed by its reply.
type Session struct {
	id        string
	profile   *profile.Profile
	latency   delay.Policy
	debouncer *suggest.Debouncer
	now       func() time.Time
	observer  Observer
	log       *zap.Logger

	turn sync.Mutex

	mu         sync.Mutex
	epoch      uint64
	transcript []Entry
	stats      *tracker
	lastActive time.Time
}

func New(p *profile.Profile, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		profile: p,
		now:     time.Now,
	}
	s.latency = p.Latency()
	s.debouncer = suggest.NewDebouncer(p.Suggester(), p.DebouncePolicy())
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.Named("session").With(zap.String("session_id", s.id), zap.String("profile", p.Name))
	s.stats = newTracker(p.Greeting.Confidence, p.Greeting.Intent, p.LatencyWindow)
	s.transcript = []Entry{s.botEntry(p.Greeting)}
	s.lastActive = s.now()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Profile() *profile.Profile { return s.profile }

// Submit records the utterance, waits the simulated latency, classifies and
// records the reply. A failed wait is answered with the profile's error
// record and does not touch the statistics.
func (s *Session) Submit(ctx context.Context, utterance string) (Exchange, error) {
	if strings.TrimSpace(utterance) == "" {
		return Exchange{}, ErrEmptyUtterance
	}

	s.turn.Lock()
	defer s.turn.Unlock()

	s.mu.Lock()
	epoch := s.epoch
	user := Entry{
		ID:        uuid.NewString(),
		Message:   utterance,
		Sender:    SenderUser,
		Timestamp: s.now(),
	}
	s.transcript = append(s.transcript, user)
	s.lastActive = user.Timestamp
	s.mu.Unlock()
	s.debouncer.Reset()

	start := s.now()
	rec, failed := s.respond(ctx, utterance)
	latency := s.now().Sub(start)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return Exchange{}, ErrCleared
	}
	if !failed {
		rec = rec.Render(s.placeholders())
		s.stats.record(rec.Confidence, rec.Intent, latency)
	}
	bot := s.botEntry(rec)
	s.transcript = append(s.transcript, bot)
	s.lastActive = bot.Timestamp
	s.mu.Unlock()

	ex := Exchange{User: user, Bot: bot, Latency: latency, Failed: failed}
	if s.observer != nil {
		s.observer.ObserveExchange(s.id, s.profile.Name, ex)
	}

	s.log.Debug("Exchange completed",
		zap.String("intent", rec.Intent),
		zap.Float64("confidence", rec.Confidence),
		zap.Duration("latency", latency),
		zap.Bool("failed", failed),
	)
	return ex, nil
}

func (s *Session) respond(ctx context.Context, utterance string) (rec engine.Record, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Response engine panicked", zap.Any("panic", r))
			rec, failed = s.profile.ErrorRecord, true
		}
	}()

	if _, err := s.latency.Wait(ctx); err != nil {
		s.log.Warn("Simulated backend call failed", zap.Error(err))
		return s.profile.ErrorRecord, true
	}
	return s.profile.Table.Classify(utterance), false
}

// placeholders reflects statistics before the current exchange is recorded.
func (s *Session) placeholders() map[string]string {
	st := s.stats.snapshot()
	return map[string]string{
		engine.VarAvgResponseMS:     strconv.FormatInt(st.AverageResponseMS, 10),
		engine.VarMessagesPerSecond: strconv.FormatFloat(st.MessagesPerSecond, 'f', -1, 64),
	}
}

// Suggest runs a debounced lookup. ok is false when a newer keystroke, a
// submit or a clear superseded this one.
func (s *Session) Suggest(ctx context.Context, partial string) ([]string, bool, error) {
	s.touch()
	return s.debouncer.Submit(ctx, partial)
}

// Clear resets the transcript to the greeting and the statistics to their
// initial values. Replies still pending are dropped.
func (s *Session) Clear() {
	s.mu.Lock()
	s.epoch++
	s.transcript = []Entry{s.botEntry(s.profile.Greeting)}
	s.stats.reset()
	s.lastActive = s.now()
	s.mu.Unlock()
	s.debouncer.Reset()
	s.log.Info("Session cleared")
}

func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.transcript...)
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.snapshot()
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

func (s *Session) botEntry(rec engine.Record) Entry {
	conf := rec.Confidence
	return Entry{
		ID:         uuid.NewString(),
		Message:    rec.Message,
		Sender:     SenderBot,
		Timestamp:  s.now(),
		Confidence: &conf,
		Intent:     rec.Intent,
	}
}
