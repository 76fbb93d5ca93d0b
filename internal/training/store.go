// Package training answers utterances from stored training data: responses
// keyed by detected intent, then by the most similar known pattern.
package training

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chat-assistant/backend/internal/storage/models"
	"github.com/chat-assistant/backend/pkg/logger"
)

// Store is the persistence the responders need. The SQLite client
// implements it.
type Store interface {
	AddPattern(ctx context.Context, pattern, response string) error
	Patterns(ctx context.Context) ([]models.TrainingPattern, error)
	AddIntentResponse(ctx context.Context, intent, response string) error
	IntentResponses(ctx context.Context, intent string) ([]string, error)
	CountIntentResponses(ctx context.Context) (int, error)
}

// Seed loads the built-in training data into an empty store.
func Seed(ctx context.Context, store Store) error {
	n, err := store.CountIntentResponses(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Debug("Training data already present", zap.Int("intent_responses", n))
		return nil
	}

	for _, p := range seedPatterns {
		for _, r := range p.responses {
			if err := store.AddPattern(ctx, p.pattern, r); err != nil {
				return fmt.Errorf("seed pattern %q: %w", p.pattern, err)
			}
		}
	}
	for _, ir := range seedIntentResponses {
		for _, r := range ir.responses {
			if err := store.AddIntentResponse(ctx, ir.intent, r); err != nil {
				return fmt.Errorf("seed intent %q: %w", ir.intent, err)
			}
		}
	}

	logger.Info("Training data seeded",
		zap.Int("patterns", len(seedPatterns)),
		zap.Int("intents", len(seedIntentResponses)),
	)
	return nil
}

func normalizePattern(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}
