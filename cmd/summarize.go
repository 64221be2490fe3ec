package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	summarizePage int
	summarizeChat bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize one page of a stored document",
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().IntVarP(&summarizePage, "page", "p", 0, "page to summarize")
	summarizeCmd.Flags().BoolVar(&summarizeChat, "chat", false, "continue the exchange in chat")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, _ []string) error {
	if summarizePage < 1 {
		return fmt.Errorf("summarize needs --page")
	}

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

	exchange, err := svc.SummarizePage(cmd.Context(), summarizePage, consoleEmitter())
	if err != nil {
		return err
	}

	if summarizeChat {
		return chatLoop(cmd, a, session, exchange.Seed)
	}
	return nil
}
