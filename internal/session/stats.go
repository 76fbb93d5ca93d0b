package session

import (
	"math"
	"slices"
	"time"
)

const maxTopIntents = 5

type Stats struct {
	TotalMessages     int      `json:"total_messages"`
	AverageConfidence float64  `json:"average_confidence"`
	TopIntents        []string `json:"top_intents"`
	LastResponseMS    int64    `json:"last_response_ms"`
	AverageResponseMS int64    `json:"average_response_ms"`
	MessagesPerSecond float64  `json:"messages_per_second"`
}

// tracker holds the running counters behind Stats. It is not safe for
// concurrent use; Session guards it.
type tracker struct {
	seedConfidence float64
	seedIntent     string
	window         int

	total     int
	confSum   float64
	exchanges int
	intents   []string
	latencies []time.Duration
	last      time.Duration
}

func newTracker(seedConfidence float64, seedIntent string, window int) *tracker {
	if window <= 0 {
		window = 10
	}
	t := &tracker{seedConfidence: seedConfidence, seedIntent: seedIntent, window: window}
	t.reset()
	return t
}

func (t *tracker) reset() {
	t.total = 1
	t.confSum = 0
	t.exchanges = 0
	t.intents = []string{t.seedIntent}
	t.latencies = t.latencies[:0]
	t.last = 0
}

func (t *tracker) record(confidence float64, intent string, latency time.Duration) {
	t.total += 2
	t.confSum += confidence
	t.exchanges++

	if len(t.intents) < maxTopIntents && !slices.Contains(t.intents, intent) {
		t.intents = append(t.intents, intent)
	}

	t.last = latency
	t.latencies = append(t.latencies, latency)
	if len(t.latencies) > t.window {
		t.latencies = t.latencies[len(t.latencies)-t.window:]
	}
}

func (t *tracker) averageLatencyMS() float64 {
	if len(t.latencies) == 0 {
		return 0
	}
	var sum time.Duration
	for _, l := range t.latencies {
		sum += l
	}
	return float64(sum) / float64(time.Millisecond) / float64(len(t.latencies))
}

func (t *tracker) snapshot() Stats {
	avgConf := t.seedConfidence
	if t.exchanges > 0 {
		avgConf = t.confSum / float64(t.exchanges)
	}

	avgMS := t.averageLatencyMS()
	mps := 0.0
	if avgMS > 0 {
		mps = math.Round(1000/avgMS*10) / 10
	}

	return Stats{
		TotalMessages:     t.total,
		AverageConfidence: avgConf,
		TopIntents:        append([]string(nil), t.intents...),
		LastResponseMS:    t.last.Milliseconds(),
		AverageResponseMS: int64(math.Round(avgMS)),
		MessagesPerSecond: mps,
	}
}
