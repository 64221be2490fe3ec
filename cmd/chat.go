package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/spf13/cobra"

	"github.com/aurenia/aurenia/internal/app"
	"github.com/aurenia/aurenia/internal/companion"
	"github.com/aurenia/aurenia/internal/page"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat about a stored document",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
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
	return chatLoop(cmd, a, session, nil)
}

// chatLoop runs the interactive conversation. seed, when non-nil, promotes
// a finished study exchange into the opening turns.
func chatLoop(cmd *cobra.Command, a *app.App, session *page.DocumentSession, seed []*ai.Message) error {
	engine, err := a.Engine(session)
	if err != nil {
		return err
	}
	conv := engine.Start(seed)

	fmt.Printf("Reading %q. Ask away; /help lists commands.\n", session.Document())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := handleChatCommand(engine, session, &conv, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				continue
			}
			if quit {
				return nil
			}
			continue
		}

		if _, err := engine.Turn(cmd.Context(), conv, line, consoleEmitter()); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// handleChatCommand executes one /command. It returns true to quit.
func handleChatCommand(engine *companion.Engine, session *page.DocumentSession, conv **companion.Conversation, line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new":
		*conv = engine.Start(nil)
		fmt.Println("Started a new conversation.")

	case "/view":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /view <page> [page...]")
		}
		pages := make([]int, 0, len(fields)-1)
		for _, f := range fields[1:] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return false, fmt.Errorf("not a page number: %q", f)
			}
			pages = append(pages, n)
		}
		session.Viewport().SetVisible(pages)
		fmt.Printf("Visible pages: %v\n", session.Viewport().Visible())

	case "/context":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			return false, fmt.Errorf("usage: /context on|off")
		}
		engine.SetDocumentContext(fields[1] == "on")
		fmt.Printf("Document context: %s\n", fields[1])

	case "/pages":
		fmt.Printf("Pages already in this conversation: %v\n", (*conv).SeenPages())

	case "/help":
		fmt.Println(`Commands:
  /view <page> [page...]  set the pages currently on screen
  /context on|off         toggle document-context injection
  /new                    start a new conversation
  /pages                  show pages already injected
  /quit                   leave the chat`)

	default:
		return false, fmt.Errorf("unknown command %q, try /help", fields[0])
	}
	return false, nil
}

// consoleEmitter renders one streamed reply to stdout, printing only the
// text added since the previous event.
func consoleEmitter() companion.EmitFunc {
	printed := 0
	return func(e companion.Event) {
		switch ev := e.(type) {
		case companion.Updated:
			fmt.Print(ev.Text[printed:])
			printed = len(ev.Text)
		case companion.Completed:
			fmt.Print(ev.Text[printed:])
			fmt.Println()
		}
	}
}
