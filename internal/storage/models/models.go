package models

import "time"

type TrainingPattern struct {
	Pattern   string   `json:"pattern"`
	Responses []string `json:"responses"`
}

type ExchangeRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Profile    string    `json:"profile"`
	Utterance  string    `json:"utterance"`
	Response   string    `json:"response"`
	Intent     string    `json:"intent"`
	Confidence float64   `json:"confidence"`
	LatencyMS  int64     `json:"latency_ms"`
	Failed     bool      `json:"failed"`
	CreatedAt  time.Time `json:"created_at"`
}

type Feedback struct {
	ID         int       `json:"id"`
	ExchangeID string    `json:"exchange_id"`
	Helpful    bool      `json:"helpful"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
