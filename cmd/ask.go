package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aurenia/aurenia/internal/study"
)

var (
	askMode string
	askPage int
	askChat bool
)

var askCmd = &cobra.Command{
	Use:   "ask <selection>",
	Short: "Explain, define or translate a text selection",
	Long: `Ask runs a single study exchange about a selected piece of text.

Modes:
  explain    what the selection means on its page (needs --page)
  define     a dictionary definition of the selection
  translate  the selection translated into the configured language

With --chat the finished exchange seeds an interactive conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "explain", "explain, define or translate")
	askCmd.Flags().IntVarP(&askPage, "page", "p", 0, "page the selection is on (explain mode)")
	askCmd.Flags().BoolVar(&askChat, "chat", false, "continue the exchange in chat")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	document, err := resolveDocument(cmd, a)
	if err != nil {
		return err
	}
	session := a.OpenDocument(document)
	svc, err := a.Study(session)
	if err != nil {
		return err
	}

	selection := args[0]
	var exchange study.Exchange
	switch askMode {
	case "explain":
		if askPage < 1 {
			return fmt.Errorf("explain mode needs --page")
		}
		exchange, err = svc.Explain(cmd.Context(), askPage, selection, consoleEmitter())
	case "define":
		exchange, err = svc.Define(cmd.Context(), selection, consoleEmitter())
	case "translate":
		exchange, err = svc.Translate(cmd.Context(), selection, consoleEmitter())
	default:
		return fmt.Errorf("unknown mode %q (explain, define or translate)", askMode)
	}
	if err != nil {
		return err
	}

	if askChat {
		return chatLoop(cmd, a, session, exchange.Seed)
	}
	return nil
}
