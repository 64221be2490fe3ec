package companion

import (
	"errors"
	"fmt"
)

var (
	// ErrNilCompleter indicates the engine was configured without a completer.
	ErrNilCompleter = errors.New("completer is nil")

	// ErrNilPageProvider indicates the engine was configured without a page provider.
	ErrNilPageProvider = errors.New("page provider is nil")

	// ErrNilRetriever indicates the engine was configured without a retriever.
	ErrNilRetriever = errors.New("retriever is nil")

	// ErrNoDocument indicates the engine was configured without a document title.
	ErrNoDocument = errors.New("document title is empty")

	// ErrNoLanguage indicates the engine was configured without a response language.
	ErrNoLanguage = errors.New("response language is empty")

	// ErrEmptyMessage indicates an attempt to append an empty user turn.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNilConversation indicates a nil conversation was passed to an engine operation.
	ErrNilConversation = errors.New("conversation is nil")

	// ErrUnparsableDecision indicates a structured classifier response could
	// not be parsed or validated against its schema. The engine recovers from
	// it internally (the turn proceeds without context); it is exported so
	// tests and callers of the schema types can check for it.
	ErrUnparsableDecision = errors.New("unparsable classifier decision")
)

// DecisionError reports a structured classifier response that failed to
// parse or validate. It satisfies errors.Is(err, ErrUnparsableDecision).
type DecisionError struct {
	Schema string // which decision schema was requested
	Err    error  // underlying parse or validation failure
}

func (e *DecisionError) Error() string {
	return fmt.Sprintf("decision %s: %v", e.Schema, e.Err)
}

func (e *DecisionError) Unwrap() error { return e.Err }

// Is reports ErrUnparsableDecision so callers need not know the concrete type.
func (e *DecisionError) Is(target error) bool { return target == ErrUnparsableDecision }
