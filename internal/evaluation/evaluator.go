package evaluation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/chat-assistant/backend/internal/engine"
	"github.com/chat-assistant/backend/pkg/logger"
)

// Classifier is anything that maps an utterance to a record.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (engine.Record, error)
}

// ClassifierFunc adapts a plain function.
type ClassifierFunc func(ctx context.Context, utterance string) (engine.Record, error)

func (f ClassifierFunc) Classify(ctx context.Context, utterance string) (engine.Record, error) {
	return f(ctx, utterance)
}

// TableClassifier evaluates a rule table directly.
func TableClassifier(t *engine.Table) Classifier {
	return ClassifierFunc(func(_ context.Context, utterance string) (engine.Record, error) {
		return t.Classify(utterance), nil
	})
}

type Dataset struct {
	Name  string        `yaml:"name" json:"name"`
	Items []DatasetItem `yaml:"items" json:"items"`
}

type DatasetItem struct {
	Utterance      string `yaml:"utterance" json:"utterance"`
	ExpectedIntent string `yaml:"expected_intent" json:"expected_intent"`
}

type IntentScore struct {
	Expected int     `json:"expected"`
	Correct  int     `json:"correct"`
	Recall   float64 `json:"recall"`
}

type Miss struct {
	Utterance string  `json:"utterance"`
	Expected  string  `json:"expected"`
	Got       string  `json:"got"`
	Confident float64 `json:"confidence"`
}

type Report struct {
	Dataset           string                 `json:"dataset"`
	Total             int                    `json:"total"`
	Correct           int                    `json:"correct"`
	Errors            int                    `json:"errors"`
	Accuracy          float64                `json:"accuracy"`
	AverageConfidence float64                `json:"average_confidence"`
	PerIntent         map[string]IntentScore `json:"per_intent"`
	Misclassified     []Miss                 `json:"misclassified"`
}

type Evaluator struct {
	classifier  Classifier
	concurrency int
	log         *zap.Logger
}

func NewEvaluator(c Classifier, concurrency int) *Evaluator {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Evaluator{classifier: c, concurrency: concurrency, log: logger.Named("evaluation")}
}

type outcome struct {
	rec engine.Record
	err error
}

// Run classifies every item concurrently. A failing item is counted in
// Errors rather than aborting the run; only ctx cancellation does that.
func (e *Evaluator) Run(ctx context.Context, ds *Dataset) (*Report, error) {
	e.log.Info("Running dataset evaluation", zap.String("dataset", ds.Name), zap.Int("items", len(ds.Items)))

	results := make([]outcome, len(ds.Items))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)
	for i, item := range ds.Items {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			rec, err := e.classifier.Classify(egCtx, item.Utterance)
			results[i] = outcome{rec: rec, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("evaluation interrupted: %w", err)
	}

	report := &Report{
		Dataset:   ds.Name,
		Total:     len(ds.Items),
		PerIntent: make(map[string]IntentScore),
	}

	var totalConfidence float64
	scored := 0
	for i, item := range ds.Items {
		res := results[i]
		score := report.PerIntent[item.ExpectedIntent]
		score.Expected++

		if res.err != nil {
			report.Errors++
			e.log.Warn("Failed to classify item", zap.Int("index", i), zap.Error(res.err))
			report.PerIntent[item.ExpectedIntent] = score
			continue
		}

		scored++
		totalConfidence += res.rec.Confidence
		if res.rec.Intent == item.ExpectedIntent {
			report.Correct++
			score.Correct++
		} else {
			report.Misclassified = append(report.Misclassified, Miss{
				Utterance: item.Utterance,
				Expected:  item.ExpectedIntent,
				Got:       res.rec.Intent,
				Confident: res.rec.Confidence,
			})
		}
		report.PerIntent[item.ExpectedIntent] = score
	}

	for intent, score := range report.PerIntent {
		if score.Expected > 0 {
			score.Recall = float64(score.Correct) / float64(score.Expected)
		}
		report.PerIntent[intent] = score
	}
	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total)
	}
	if scored > 0 {
		report.AverageConfidence = totalConfidence / float64(scored)
	}

	e.log.Info("Dataset evaluation completed",
		zap.Int("total", report.Total),
		zap.Int("correct", report.Correct),
		zap.Int("errors", report.Errors),
		zap.Float64("accuracy", report.Accuracy),
	)

	return report, nil
}

func LoadDataset(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	for i, item := range ds.Items {
		if strings.TrimSpace(item.Utterance) == "" || item.ExpectedIntent == "" {
			return nil, fmt.Errorf("dataset item %d needs an utterance and an expected intent", i)
		}
	}
	return &ds, nil
}

func LoadDatasetFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDataset(f)
}

// GenerateReport renders a report for terminals.
func GenerateReport(report *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nEvaluation Report: %s\n", report.Dataset)
	b.WriteString("==================\n\n")
	fmt.Fprintf(&b, "Items: %d  Correct: %d  Errors: %d\n", report.Total, report.Correct, report.Errors)
	fmt.Fprintf(&b, "Accuracy: %.1f%%\n", report.Accuracy*100)
	fmt.Fprintf(&b, "Average confidence: %.3f\n\n", report.AverageConfidence)

	intents := make([]string, 0, len(report.PerIntent))
	for intent := range report.PerIntent {
		intents = append(intents, intent)
	}
	sort.Strings(intents)

	b.WriteString("Per intent:\n")
	for _, intent := range intents {
		s := report.PerIntent[intent]
		fmt.Fprintf(&b, "- %-16s %d/%d (%.0f%%)\n", intent, s.Correct, s.Expected, s.Recall*100)
	}

	if len(report.Misclassified) > 0 {
		b.WriteString("\nMisclassified:\n")
		for _, m := range report.Misclassified {
			fmt.Fprintf(&b, "- %q: expected %s, got %s (%.2f)\n", m.Utterance, m.Expected, m.Got, m.Confident)
		}
	}
	return b.String()
}
