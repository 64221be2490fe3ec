// Package study implements the single-shot study flows: explaining or
// defining a text selection, translating it, and summarizing a page. Each
// flow runs one isolated {system, user} exchange through the completion
// service, streams the reply through the same assembler the chat uses, and
// exposes the finished exchange as seed messages. Handing those seeds to the
// conversation engine's Start turns the one-off exchange into the opening
// turns of a full conversation.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"

	"github.com/aurenia/aurenia/internal/companion"
)

// Sentinel errors for service construction and input checks.
var (
	ErrNilCompleter    = errors.New("completer is nil")
	ErrNilPageProvider = errors.New("page provider is nil")
	ErrNoLanguage      = errors.New("response language is empty")
	ErrEmptySelection  = errors.New("selection is empty")
)

// Exchange is a finished single-shot flow: the reply text plus the messages
// that seed a full conversation. Seed carries the user and assistant turns
// only; the engine supplies its own system message when seeded.
type Exchange struct {
	Seed   []*ai.Message
	Answer string
}

// Config configures a Service.
type Config struct {
	Completer companion.Completer
	Pages     companion.PageProvider

	// Language is the display name of the response language.
	Language string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service runs the study flows.
type Service struct {
	completer companion.Completer
	pages     companion.PageProvider
	language  string
	logger    *slog.Logger
}

// New validates cfg and returns a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Completer == nil {
		return nil, ErrNilCompleter
	}
	if cfg.Pages == nil {
		return nil, ErrNilPageProvider
	}
	if strings.TrimSpace(cfg.Language) == "" {
		return nil, ErrNoLanguage
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		completer: cfg.Completer,
		pages:     cfg.Pages,
		language:  cfg.Language,
		logger:    logger,
	}, nil
}

// Explain asks what the selected text means on its page. The page's full
// text rides along so the model sees the selection in context.
func (s *Service) Explain(ctx context.Context, pageNumber int, selection string, emit companion.EmitFunc) (Exchange, error) {
	if strings.TrimSpace(selection) == "" {
		return Exchange{}, ErrEmptySelection
	}
	pageText, err := s.pages.PageText(ctx, pageNumber)
	if err != nil {
		return Exchange{}, fmt.Errorf("fetching page %d: %w", pageNumber, err)
	}
	prompt := fmt.Sprintf("Here is a page from a document: %s\nWhat does %s means here? Reply in %s only.",
		pageText, selection, s.language)
	system := fmt.Sprintf("You are a study assistant. Provide explanation only in %s", s.language)
	return s.ask(ctx, system, prompt, prompt, emit)
}

// Define asks for a definition of the selected text.
func (s *Service) Define(ctx context.Context, selection string, emit companion.EmitFunc) (Exchange, error) {
	if strings.TrimSpace(selection) == "" {
		return Exchange{}, ErrEmptySelection
	}
	prompt := fmt.Sprintf("Define %q", selection)
	system := fmt.Sprintf("You are a dictionary which defines things from any language into %s language. Output the definition in %s only.",
		s.language, s.language)
	return s.ask(ctx, system, prompt, prompt, emit)
}

// Translate translates the selected text into the configured language.
func (s *Service) Translate(ctx context.Context, selection string, emit companion.EmitFunc) (Exchange, error) {
	if strings.TrimSpace(selection) == "" {
		return Exchange{}, ErrEmptySelection
	}
	prompt := fmt.Sprintf("Translate into %s: %s", s.language, selection)
	system := fmt.Sprintf("You are a translator that converts any language to %s. Output the translation only.",
		s.language)
	return s.ask(ctx, system, prompt, prompt, emit)
}

// SummarizePage summarizes one page in markdown. The raw page text is what
// the model summarizes; the seed's user turn is a self-describing request so
// a promoted conversation reads naturally.
func (s *Service) SummarizePage(ctx context.Context, pageNumber int, emit companion.EmitFunc) (Exchange, error) {
	pageText, err := s.pages.PageText(ctx, pageNumber)
	if err != nil {
		return Exchange{}, fmt.Errorf("fetching page %d: %w", pageNumber, err)
	}
	system := fmt.Sprintf("You are a %s summarizer. Only output in %s the summary of the given content in markdown.",
		s.language, s.language)
	seedPrompt := fmt.Sprintf("Summarize this extracted page from a document in beautiful markdown: %s", pageText)
	return s.ask(ctx, system, pageText, seedPrompt, emit)
}

// ask runs one ephemeral {system, user} exchange and streams the reply.
// seedPrompt becomes the user turn in the seed, which differs from the sent
// prompt for summaries. On a stream failure the partial answer is still
// returned in the exchange alongside the error.
func (s *Service) ask(ctx context.Context, system, prompt, seedPrompt string, emit companion.EmitFunc) (Exchange, error) {
	msgs := []*ai.Message{
		ai.NewSystemTextMessage(system),
		ai.NewUserTextMessage(prompt),
	}
	asm := companion.NewAssembler(emit)
	streamErr := s.completer.Stream(ctx, msgs, asm.Feed)
	answer := asm.Finish()

	exchange := Exchange{
		Seed: []*ai.Message{
			ai.NewUserTextMessage(seedPrompt),
			ai.NewModelTextMessage(answer),
		},
		Answer: answer,
	}
	if streamErr != nil {
		return exchange, fmt.Errorf("streaming study reply: %w", streamErr)
	}
	return exchange, nil
}
