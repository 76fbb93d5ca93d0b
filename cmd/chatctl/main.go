// Command chatctl exercises the chat engine from a terminal: one-off
// classification, suggestion lookups, dataset evaluation, rule export and an
// interactive session.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chat-assistant/backend/internal/engine"
	"github.com/chat-assistant/backend/internal/profile"
	"github.com/chat-assistant/backend/pkg/logger"
)

var (
	profileName string
	rulesFile   string
	verbose     bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Drive the rule-based chat engine from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			return logger.Init(level, "console", "stderr")
		},
	}

	root.PersistentFlags().StringVarP(&profileName, "profile", "p", profile.AssistantName, "Chat profile (assistant or fast)")
	root.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML rule table replacing the profile's built-in rules")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newSuggestCmd())
	root.AddCommand(newEvaluateCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newRulesCmd())
	return root
}

// loadProfile resolves --profile and applies --rules on top.
func loadProfile() (*profile.Profile, error) {
	p, err := profile.Lookup(profileName)
	if err != nil {
		return nil, err
	}
	if rulesFile != "" {
		table, err := engine.LoadTableFile(rulesFile)
		if err != nil {
			return nil, err
		}
		p.Table = table
	}
	return p, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
