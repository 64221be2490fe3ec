// Package cmd implements the aurenia command line interface.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aurenia/aurenia/internal/app"
	"github.com/aurenia/aurenia/internal/config"
	"github.com/aurenia/aurenia/internal/log"
)

var (
	flagDocument string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "aurenia",
	Short: "Aurenia, a reading companion for your documents",
	Long: `Aurenia is a reading companion: ingest a document's pages, then chat
about it. Each question is classified against what is currently on
screen, retrieved from the rest of the document, or answered without
document context.

Running aurenia without a subcommand opens the chat.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDocument, "document", "d", "", "title of the stored document")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// setup loads configuration, installs the logger and initializes the app.
func setup(cmd *cobra.Command) (*app.App, error) {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return app.Setup(cmd.Context(), cfg, logger)
}

// resolveDocument picks the document to open: the --document flag, or the
// only stored document when there is exactly one.
func resolveDocument(cmd *cobra.Command, a *app.App) (string, error) {
	if flagDocument != "" {
		return flagDocument, nil
	}
	docs, err := a.Pages.Documents(cmd.Context())
	if err != nil {
		return "", err
	}
	switch len(docs) {
	case 0:
		return "", fmt.Errorf("no documents stored yet, ingest one with: aurenia index <file>")
	case 1:
		return docs[0], nil
	default:
		return "", fmt.Errorf("multiple documents stored, pick one with --document: %v", docs)
	}
}
