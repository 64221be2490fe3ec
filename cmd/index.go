package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Ingest a document's extracted text",
	Long: `Index reads a plain-text file with one page per form-feed-separated
section, stores each page's text, and embeds it into the retrieval index.

The document title defaults to the file name without its extension;
override it with --document.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	document := flagDocument
	if document == "" {
		base := filepath.Base(path)
		document = strings.TrimSuffix(base, filepath.Ext(base))
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// Re-ingesting replaces the previous index wholesale.
	if err := a.Retriever.DeleteDocument(cmd.Context(), document); err != nil {
		return err
	}
	if err := a.Pages.DeleteDocument(cmd.Context(), document); err != nil {
		return err
	}

	pages := strings.Split(string(raw), "\f")
	indexed := 0
	for i, text := range pages {
		number := i + 1
		if err := a.Pages.SavePage(cmd.Context(), document, number, text); err != nil {
			return err
		}
		if err := a.Retriever.IndexPage(cmd.Context(), document, number, text); err != nil {
			return err
		}
		if strings.TrimSpace(text) != "" {
			indexed++
		}
	}

	fmt.Printf("Indexed %q: %d pages (%d with text).\n", document, len(pages), indexed)
	return nil
}
