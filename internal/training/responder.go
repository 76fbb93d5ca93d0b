package training

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/cache"
	"github.com/chat-assistant/backend/internal/engine"
	"github.com/chat-assistant/backend/internal/metrics"
	"github.com/chat-assistant/backend/internal/nlp"
	"github.com/chat-assistant/backend/pkg/logger"
	"github.com/chat-assistant/backend/pkg/utils"
)

var ErrEmptyMessage = errors.New("message is empty")

const (
	// Rephrase answers utterances that match no intent response or pattern.
	Rephrase = "I'm sorry, I don't understand. Could you please rephrase your question?"

	similarityThreshold = 0.3
	// fuzzyThreshold lets near-spellings of short patterns count as matches.
	fuzzyThreshold = 0.9
)

type Reply struct {
	engine.Record
	Entities []string `json:"entities,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
}

// Responder is the trained assistant backend.
type Responder struct {
	store Store
	cache cache.Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewResponder(store Store, c cache.Store, ttl time.Duration) *Responder {
	return &Responder{store: store, cache: c, ttl: ttl, log: logger.Named("responder")}
}

func (r *Responder) Respond(ctx context.Context, utterance string) (Reply, error) {
	processed := nlp.Preprocess(utterance)
	if processed == "" {
		return Reply{}, ErrEmptyMessage
	}

	intent := cachedIntent(ctx, r.cache, r.ttl, "assistant", processed, nlp.DetectIntent, r.log)

	reply := Reply{Entities: nlp.Entities(utterance)}
	reply.Intent = intent
	reply.Confidence = Confidence(processed, intent)

	responses, err := r.store.IntentResponses(ctx, intent)
	if err != nil {
		return Reply{}, fmt.Errorf("load responses for %s: %w", intent, err)
	}
	if len(responses) > 0 {
		reply.Message = responses[utils.Pick(processed, len(responses))]
		return reply, nil
	}

	pattern, responses, err := r.bestPattern(ctx, processed)
	if err != nil {
		return Reply{}, err
	}
	if pattern == "" {
		reply.Message = Rephrase
		return reply, nil
	}
	reply.Pattern = pattern
	reply.Message = responses[utils.Pick(processed, len(responses))]
	return reply, nil
}

// bestPattern returns the stored pattern most similar to processed, or ""
// when nothing clears the similarity threshold.
func (r *Responder) bestPattern(ctx context.Context, processed string) (string, []string, error) {
	patterns, err := r.store.Patterns(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("load patterns: %w", err)
	}

	best := 0.0
	var bestPattern string
	var bestResponses []string
	for _, p := range patterns {
		score := nlp.Cosine(processed, p.Pattern)
		if f := nlp.Fuzzy(processed, p.Pattern); f >= fuzzyThreshold && f > score {
			score = f
		}
		if score > best && score > similarityThreshold {
			best = score
			bestPattern = p.Pattern
			bestResponses = p.Responses
		}
	}
	return bestPattern, bestResponses, nil
}

// Train stores a response for a pattern, an intent, or both. Cached intents
// are dropped so new data takes effect.
func (r *Responder) Train(ctx context.Context, pattern, intent, response string) error {
	response = strings.TrimSpace(response)
	pattern = normalizePattern(pattern)
	intent = strings.TrimSpace(intent)
	if response == "" || (pattern == "" && intent == "") {
		return fmt.Errorf("training needs a response and a pattern or intent: %w", ErrEmptyMessage)
	}

	if pattern != "" {
		if err := r.store.AddPattern(ctx, pattern, response); err != nil {
			return err
		}
	}
	if intent != "" {
		if err := r.store.AddIntentResponse(ctx, intent, response); err != nil {
			return err
		}
	}

	if err := r.cache.DeletePrefix(ctx, cache.PrefixIntent); err != nil {
		r.log.Warn("Failed to invalidate intent cache", zap.Error(err))
	}
	r.log.Info("Training data added", zap.String("pattern", pattern), zap.String("intent", intent))
	return nil
}

// Confidence scores a reply: 0.3 when the utterance has no keywords,
// otherwise an intent base scaled up to full by ten words, capped at 0.95.
func Confidence(processed, intent string) float64 {
	if len(nlp.Keywords(processed)) == 0 {
		return 0.3
	}

	var base float64
	switch intent {
	case "greeting", "goodbye", "gratitude":
		base = 0.9
	case "help", "question":
		base = 0.7
	case "pricing", "product_inquiry":
		base = 0.8
	default:
		base = 0.5
	}

	lengthFactor := math.Min(1, float64(nlp.WordCount(processed))/10)
	return math.Min(0.95, base*(0.7+0.3*lengthFactor))
}

// FastResponder answers from a fixed per-intent table with the first reply
// chosen for an intent reused afterwards.
type FastResponder struct {
	cache cache.Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewFastResponder(c cache.Store, ttl time.Duration) *FastResponder {
	return &FastResponder{cache: c, ttl: ttl, log: logger.Named("fast_responder")}
}

func (f *FastResponder) Respond(ctx context.Context, utterance string) (Reply, error) {
	processed := nlp.FastPreprocess(utterance)
	if processed == "" && !strings.Contains(utterance, "?") {
		return Reply{}, ErrEmptyMessage
	}

	intent := cachedIntent(ctx, f.cache, f.ttl, "fast", utterance, nlp.FastDetectIntent, f.log)

	var reply Reply
	reply.Intent = intent
	reply.Confidence = FastConfidence(utterance, intent)
	reply.Message = f.response(ctx, intent, processed)
	return reply, nil
}

func (f *FastResponder) response(ctx context.Context, intent, processed string) string {
	key := cache.ResponseKey("fast", intent)

	var msg string
	hit, err := f.cache.GetJSON(ctx, key, &msg)
	metrics.ObserveCache("response", hit && err == nil)
	if err == nil && hit {
		return msg
	}

	responses, ok := fastResponses[intent]
	if !ok {
		responses = fastResponses["general"]
	}
	msg = responses[utils.Pick(processed, len(responses))]

	if err := f.cache.SetJSON(ctx, key, msg, f.ttl); err != nil {
		f.log.Warn("Failed to cache response", zap.String("intent", intent), zap.Error(err))
	}
	return msg
}

// FastConfidence is an intent base plus up to 0.1 for longer messages,
// capped at 0.99.
func FastConfidence(message, intent string) float64 {
	var base float64
	switch intent {
	case "greeting", "goodbye", "gratitude":
		base = 0.95
	case "help", "question":
		base = 0.85
	case "pricing", "product":
		base = 0.80
	default:
		base = 0.70
	}
	bonus := math.Min(0.1, float64(utf8.RuneCountInString(message))/200)
	return math.Min(0.99, base+bonus)
}

func cachedIntent(ctx context.Context, c cache.Store, ttl time.Duration, profile, text string, detect func(string) string, log *zap.Logger) string {
	key := cache.IntentKey(profile, text)

	var intent string
	hit, err := c.GetJSON(ctx, key, &intent)
	if err != nil {
		log.Warn("Intent cache read failed", zap.Error(err))
	}
	metrics.ObserveCache("intent", hit)
	if hit {
		return intent
	}

	intent = detect(text)
	if err := c.SetJSON(ctx, key, intent, ttl); err != nil {
		log.Warn("Intent cache write failed", zap.Error(err))
	}
	return intent
}
