package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/storage/models"
	"github.com/chat-assistant/backend/pkg/logger"
)

var ErrNotFound = errors.New("record not found")

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// In-memory databases are per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS training_patterns (
		pattern TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pattern_responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pattern TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (pattern) REFERENCES training_patterns(pattern) ON DELETE CASCADE,
		UNIQUE (pattern, response)
	);
	CREATE INDEX IF NOT EXISTS idx_pattern_responses_pattern ON pattern_responses(pattern);

	CREATE TABLE IF NOT EXISTS intent_responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		intent TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (intent, response)
	);
	CREATE INDEX IF NOT EXISTS idx_intent_responses_intent ON intent_responses(intent);

	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		profile TEXT NOT NULL,
		utterance TEXT NOT NULL,
		response TEXT NOT NULL,
		intent TEXT NOT NULL,
		confidence REAL NOT NULL,
		latency_ms INTEGER NOT NULL,
		failed INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		exchange_id TEXT NOT NULL,
		helpful INTEGER NOT NULL,
		comment TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (exchange_id) REFERENCES exchanges(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_exchange ON feedback(exchange_id);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// AddPattern stores response under pattern. Duplicate pairs are ignored.
func (c *Client) AddPattern(ctx context.Context, pattern, response string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO training_patterns (pattern, created_at) VALUES (?, ?)`,
		pattern, now,
	); err != nil {
		return fmt.Errorf("failed to insert pattern: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO pattern_responses (pattern, response, created_at) VALUES (?, ?, ?)`,
		pattern, response, now,
	); err != nil {
		return fmt.Errorf("failed to insert pattern response: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pattern: %w", err)
	}

	logger.Debug("Training pattern stored", zap.String("pattern", pattern))
	return nil
}

// Patterns returns every pattern with its responses in insertion order.
func (c *Client) Patterns(ctx context.Context) ([]models.TrainingPattern, error) {
	query := `
		SELECT p.pattern, r.response
		FROM training_patterns p
		JOIN pattern_responses r ON r.pattern = p.pattern
		ORDER BY p.rowid, r.id
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get patterns: %w", err)
	}
	defer rows.Close()

	var patterns []models.TrainingPattern
	for rows.Next() {
		var pattern, response string
		if err := rows.Scan(&pattern, &response); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		n := len(patterns)
		if n == 0 || patterns[n-1].Pattern != pattern {
			patterns = append(patterns, models.TrainingPattern{Pattern: pattern})
			n++
		}
		patterns[n-1].Responses = append(patterns[n-1].Responses, response)
	}

	return patterns, rows.Err()
}

func (c *Client) AddIntentResponse(ctx context.Context, intent, response string) error {
	query := `INSERT OR IGNORE INTO intent_responses (intent, response, created_at) VALUES (?, ?, ?)`

	_, err := c.db.ExecContext(ctx, query, intent, response, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert intent response: %w", err)
	}

	logger.Debug("Intent response stored", zap.String("intent", intent))
	return nil
}

func (c *Client) IntentResponses(ctx context.Context, intent string) ([]string, error) {
	query := `SELECT response FROM intent_responses WHERE intent = ? ORDER BY id`

	rows, err := c.db.QueryContext(ctx, query, intent)
	if err != nil {
		return nil, fmt.Errorf("failed to get intent responses: %w", err)
	}
	defer rows.Close()

	var responses []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		responses = append(responses, r)
	}

	return responses, rows.Err()
}

func (c *Client) CountIntentResponses(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM intent_responses`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count intent responses: %w", err)
	}
	return n, nil
}

func (c *Client) InsertExchange(ctx context.Context, record *models.ExchangeRecord) error {
	query := `
		INSERT INTO exchanges (id, session_id, profile, utterance, response, intent, confidence,
			latency_ms, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	failed := 0
	if record.Failed {
		failed = 1
	}

	_, err := c.db.ExecContext(ctx,
		query,
		record.ID,
		record.SessionID,
		record.Profile,
		record.Utterance,
		record.Response,
		record.Intent,
		record.Confidence,
		record.LatencyMS,
		failed,
		record.CreatedAt.UnixMilli(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}

	logger.Debug("Exchange recorded",
		zap.String("exchange_id", record.ID),
		zap.String("session_id", record.SessionID),
		zap.String("intent", record.Intent),
		zap.Float64("confidence", record.Confidence),
	)

	return nil
}

// ExchangeHistory returns the newest exchanges of a session first.
func (c *Client) ExchangeHistory(ctx context.Context, sessionID string, limit int) ([]models.ExchangeRecord, error) {
	query := `
		SELECT id, session_id, profile, utterance, response, intent, confidence, latency_ms, failed, created_at
		FROM exchanges
		WHERE session_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange history: %w", err)
	}
	defer rows.Close()

	var records []models.ExchangeRecord
	for rows.Next() {
		var r models.ExchangeRecord
		var failed int
		var createdAt int64

		err := rows.Scan(&r.ID, &r.SessionID, &r.Profile, &r.Utterance, &r.Response,
			&r.Intent, &r.Confidence, &r.LatencyMS, &failed, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.Failed = failed == 1
		r.CreatedAt = time.UnixMilli(createdAt)
		records = append(records, r)
	}

	return records, rows.Err()
}

func (c *Client) StoreFeedback(ctx context.Context, feedback *models.Feedback) error {
	var exists int
	err := c.db.QueryRowContext(ctx, `SELECT 1 FROM exchanges WHERE id = ?`, feedback.ExchangeID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("exchange %s: %w", feedback.ExchangeID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up exchange: %w", err)
	}

	query := `INSERT INTO feedback (exchange_id, helpful, comment, created_at) VALUES (?, ?, ?, ?)`

	helpful := 0
	if feedback.Helpful {
		helpful = 1
	}

	_, err = c.db.ExecContext(ctx,
		query,
		feedback.ExchangeID,
		helpful,
		feedback.Comment,
		time.Now().Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	logger.Info("Feedback stored",
		zap.String("exchange_id", feedback.ExchangeID),
		zap.Bool("helpful", feedback.Helpful),
	)

	return nil
}

// HelpfulRatio is the share of helpful feedback, or 0 with no feedback.
func (c *Client) HelpfulRatio(ctx context.Context) (float64, int, error) {
	var total int
	var helpful sql.NullInt64
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*), SUM(helpful) FROM feedback`).Scan(&total, &helpful)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate feedback: %w", err)
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(helpful.Int64) / float64(total), total, nil
}
