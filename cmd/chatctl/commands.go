package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chat-assistant/backend/internal/delay"
	"github.com/chat-assistant/backend/internal/engine"
	"github.com/chat-assistant/backend/internal/evaluation"
	"github.com/chat-assistant/backend/internal/session"
)

func newClassifyCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "classify [utterance...]",
		Short: "Classify an utterance with the profile's rule table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			rec := p.Table.Classify(strings.Join(args, " "))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%.2f): %s\n", rec.Intent, rec.Confidence, rec.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <partial>",
		Short: "List canned suggestions containing the partial input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			for _, s := range p.Suggester().Suggest(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newEvaluateCmd() *cobra.Command {
	var (
		dataset     string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the profile's rule table against a labelled YAML dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			ds, err := evaluation.LoadDatasetFile(dataset)
			if err != nil {
				return err
			}
			report, err := evaluation.NewEvaluator(evaluation.TableClassifier(p.Table), concurrency).Run(cmd.Context(), ds)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), evaluation.GenerateReport(report))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "Dataset file (required)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Items classified in parallel")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the profile's rule table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			return engine.WriteTable(cmd.OutOrStdout(), p.Table)
		},
	}
}

func newChatCmd() *cobra.Command {
	var realDelay bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session (/clear, /stats, /quit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			var opts []session.Option
			if !realDelay {
				opts = append(opts, session.WithLatency(delay.Zero{}))
			}
			return runChat(cmd.Context(), cmd, session.New(p, opts...))
		},
	}
	cmd.Flags().BoolVar(&realDelay, "delay", false, "Simulate the profile's response latency")
	return cmd
}

func runChat(ctx context.Context, cmd *cobra.Command, s *session.Session) error {
	out := cmd.OutOrStdout()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintf(out, "bot> %s\n", s.Transcript()[0].Message)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			s.Clear()
			fmt.Fprintf(out, "bot> %s\n", s.Transcript()[0].Message)
			continue
		case "/stats":
			st := s.Stats()
			fmt.Fprintf(out, "messages=%d avg_confidence=%.3f avg_ms=%d mps=%.1f intents=%s\n",
				st.TotalMessages, st.AverageConfidence, st.AverageResponseMS, st.MessagesPerSecond,
				strings.Join(st.TopIntents, ","))
			continue
		}

		ex, err := s.Submit(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "bot> %s\n", ex.Bot.Message)
	}
}
