package companion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// DefaultAssistantName is the persona used when Config.AssistantName is empty.
const DefaultAssistantName = "Aurenia"

const systemPromptFormat = `You are %s, a study assistant.
The user is currently reading %s
The user will have conversation with you, and when it seems like the user is asking for some particular part of the document, then retrieval will be performed and Context will be attached with it.
Only talk in %s.`

// Config configures an Engine. Completer, Pages, Retriever, Document and
// Language are required.
type Config struct {
	Completer Completer
	Pages     PageProvider
	Retriever Retriever

	// Document is the title of the document being read. It appears in the
	// persona prompt and identifies the document to the retriever.
	Document string

	// Language is the display name of the response language, e.g. "English".
	Language string

	// AssistantName overrides the assistant persona name.
	AssistantName string

	// UseDocumentContext is the initial state of the context toggle. When
	// off, every turn classifies as NoContext without consulting anything.
	UseDocumentContext bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Completer == nil {
		return ErrNilCompleter
	}
	if c.Pages == nil {
		return ErrNilPageProvider
	}
	if c.Retriever == nil {
		return ErrNilRetriever
	}
	if strings.TrimSpace(c.Document) == "" {
		return ErrNoDocument
	}
	if strings.TrimSpace(c.Language) == "" {
		return ErrNoLanguage
	}
	return nil
}

// Engine is the conversation engine: it creates conversations, classifies
// and appends user turns, and streams assistant replies.
//
// Turns are strictly sequential per conversation. The caller must let one
// turn finish (including its reply stream) before appending the next; the
// engine does not serialize overlapping turns.
type Engine struct {
	completer     Completer
	classifier    *Classifier
	document      string
	language      string
	assistant     string
	useDocContext bool
	logger        *slog.Logger
}

// New validates cfg and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	assistant := cfg.AssistantName
	if assistant == "" {
		assistant = DefaultAssistantName
	}
	return &Engine{
		completer: cfg.Completer,
		classifier: &Classifier{
			completer: cfg.Completer,
			pages:     cfg.Pages,
			retriever: cfg.Retriever,
			document:  cfg.Document,
			logger:    logger,
		},
		document:      cfg.Document,
		language:      cfg.Language,
		assistant:     assistant,
		useDocContext: cfg.UseDocumentContext,
		logger:        logger,
	}, nil
}

// SetDocumentContext switches document-context injection on or off for
// subsequent turns. Call only between turns.
func (e *Engine) SetDocumentContext(on bool) { e.useDocContext = on }

// DocumentContext reports whether document-context injection is on.
func (e *Engine) DocumentContext() bool { return e.useDocContext }

// Document returns the title of the document being read.
func (e *Engine) Document() string { return e.document }

func (e *Engine) systemPrompt() string {
	return fmt.Sprintf(systemPromptFormat, e.assistant, e.document, e.language)
}

// Start creates a new conversation, replacing nothing: the previous
// conversation, if any, is simply abandoned by the caller.
//
// The engine always supplies its own persona system message first. Seed
// messages, the finished turns of a promoted single-shot exchange, are
// appended after it in order; a system message among the seeds is skipped
// so the history never carries more than one. Seeded turns are trusted as
// finalized: their context usage is not replayed into the seen-pages set
// and they leave no transcript trace.
func (e *Engine) Start(seed []*ai.Message) *Conversation {
	conv := newConversation()
	conv.append(ai.NewSystemTextMessage(e.systemPrompt()))
	for _, msg := range seed {
		if msg == nil || msg.Role == ai.RoleSystem {
			continue
		}
		conv.append(msg)
	}
	return conv
}

// AppendUserTurn classifies raw and appends the resulting user message.
//
// Nothing is committed until classification fully succeeds: a retrieval or
// page-fetch failure aborts the turn with the conversation unchanged.
// Unparsable classifier decisions degrade to NoContext and the turn
// proceeds with the raw message.
func (e *Engine) AppendUserTurn(ctx context.Context, conv *Conversation, raw string) (Classification, error) {
	if conv == nil {
		return Classification{}, ErrNilConversation
	}
	if strings.TrimSpace(raw) == "" {
		return Classification{}, ErrEmptyMessage
	}

	// Conversations can reach here without going through Start. Guard the
	// system-message invariant and stamp the transcript with the document.
	if conv.Len() == 0 {
		conv.append(ai.NewSystemTextMessage(e.systemPrompt()))
		fmt.Fprintf(&conv.transcript, "[Document: %s]\n", e.document)
	}

	cls := Classification{Decision: NoContext, Message: raw}
	if e.useDocContext {
		var err error
		cls, err = e.classifier.Classify(ctx, conv, raw)
		if err != nil {
			return Classification{}, err
		}
	}

	conv.markSeen(cls.Pages)
	conv.append(ai.NewUserTextMessage(cls.Message))
	conv.transcript.WriteString("User: " + cls.Message)

	e.logger.Debug("user turn appended",
		"conversation", conv.ID(),
		"decision", cls.Decision,
		"new_pages", cls.Pages,
		"retrieved_page", cls.RetrievedPage)
	return cls, nil
}

// AppendAssistantTurn appends the assistant's reply to the history and the
// transcript mirror. An empty reply is still appended.
func (e *Engine) AppendAssistantTurn(conv *Conversation, text string) {
	conv.append(ai.NewModelTextMessage(text))
	fmt.Fprintf(&conv.transcript, "Assistant: %s\n", text)
}

// StreamReply streams the assistant's reply to the current history, emitting
// events through emit, and appends the final text as the assistant turn.
//
// If the stream fails mid-turn the text accumulated so far is still
// appended, so no partial output is lost, and the failure is returned.
func (e *Engine) StreamReply(ctx context.Context, conv *Conversation, emit EmitFunc) (string, error) {
	if conv == nil {
		return "", ErrNilConversation
	}
	asm := NewAssembler(emit)
	streamErr := e.completer.Stream(ctx, conv.Messages(), asm.Feed)
	text := asm.Finish()
	e.AppendAssistantTurn(conv, text)
	if streamErr != nil {
		return text, fmt.Errorf("streaming assistant reply: %w", streamErr)
	}
	return text, nil
}

// Turn runs one full turn: classify and append the user message, then
// stream and append the assistant reply.
func (e *Engine) Turn(ctx context.Context, conv *Conversation, raw string, emit EmitFunc) (string, error) {
	if _, err := e.AppendUserTurn(ctx, conv, raw); err != nil {
		return "", fmt.Errorf("appending user turn: %w", err)
	}
	return e.StreamReply(ctx, conv, emit)
}
