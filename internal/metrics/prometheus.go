package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chat-assistant/backend/internal/session"
)

var (
	ExchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_exchange_duration_seconds",
			Help:    "Time from user message to bot reply, including simulated latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"profile"},
	)

	ExchangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_exchanges_total",
			Help: "Total number of completed exchanges",
		},
		[]string{"profile", "status"},
	)

	IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_intents_total",
			Help: "Replies by classified intent",
		},
		[]string{"profile", "intent"},
	)

	ConfidenceScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_confidence_score",
			Help:    "Reply confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
		[]string{"profile"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)

	SuggestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_suggestions_total",
			Help: "Suggestion lookups by outcome",
		},
		[]string{"profile", "outcome"},
	)

	NLPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_nlp_requests_total",
			Help: "Trained responder requests by backend and intent",
		},
		[]string{"backend", "intent"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	UserSatisfaction = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_satisfaction_ratio",
			Help: "Share of feedback marked helpful",
		},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

var initOnce sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			ExchangeDuration,
			ExchangesTotal,
			IntentsTotal,
			ConfidenceScore,
			ActiveSessions,
			SuggestionsTotal,
			NLPRequests,
			CacheHits,
			CacheMisses,
			UserSatisfaction,
			RateLimited,
		)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Observer records every session exchange.
type Observer struct{}

func (Observer) ObserveExchange(_ string, profile string, ex session.Exchange) {
	status := "ok"
	if ex.Failed {
		status = "failed"
	}
	ExchangesTotal.WithLabelValues(profile, status).Inc()
	ExchangeDuration.WithLabelValues(profile).Observe(ex.Latency.Seconds())
	if ex.Failed {
		return
	}
	IntentsTotal.WithLabelValues(profile, ex.Bot.Intent).Inc()
	if ex.Bot.Confidence != nil {
		ConfidenceScore.WithLabelValues(profile).Observe(*ex.Bot.Confidence)
	}
}

func ObserveSuggestion(profile string, served bool) {
	outcome := "served"
	if !served {
		outcome = "superseded"
	}
	SuggestionsTotal.WithLabelValues(profile, outcome).Inc()
}

func ObserveCache(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}
