package companion

import (
	"context"

	"github.com/firebase/genkit/go/ai"
)

// TokenCallback receives one incremental token fragment from a streaming
// completion. Returning an error aborts the stream.
type TokenCallback func(token string) error

// Completer is the language-model completion service the engine talks to.
// Implemented by internal/completion over Genkit.
type Completer interface {
	// Stream generates a reply to msgs, invoking cb for each token fragment
	// in arrival order. It returns after the stream has fully terminated.
	Stream(ctx context.Context, msgs []*ai.Message, cb TokenCallback) error

	// Structured generates a single reply conforming to the schema derived
	// from out, a pointer to a struct, and unmarshals into it.
	Structured(ctx context.Context, msgs []*ai.Message, out any) error
}

// PageProvider exposes the document being read: per-page text and the set of
// pages currently visible on screen. Page numbers are stable within a
// document. Implemented by internal/page.
type PageProvider interface {
	PageText(ctx context.Context, page int) (string, error)
	VisiblePages(ctx context.Context) ([]int, error)
}

// Match is the best-matching location for a retrieval query.
type Match struct {
	PageNumber int
	Text       string // the matched chunk, for callers that want the excerpt
}

// Retriever finds the document page that best answers a natural-language
// query. Implemented by internal/retrieval over pgvector.
type Retriever interface {
	TopMatch(ctx context.Context, document, query string) (Match, error)
}
