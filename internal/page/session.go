package page

import (
	"context"

	"github.com/aurenia/aurenia/internal/companion"
)

// TextSource serves stored page text for a named document.
// *Store satisfies it.
type TextSource interface {
	PageText(ctx context.Context, document string, number int) (string, error)
}

// DocumentSession binds a page store and a viewport to one open document,
// giving the conversation engine its page provider.
type DocumentSession struct {
	source   TextSource
	viewport *Viewport
	document string
}

var _ companion.PageProvider = (*DocumentSession)(nil)

// NewDocumentSession creates a session for document backed by source and
// viewport.
func NewDocumentSession(source TextSource, viewport *Viewport, document string) *DocumentSession {
	return &DocumentSession{source: source, viewport: viewport, document: document}
}

// Document returns the open document's title.
func (d *DocumentSession) Document() string { return d.document }

// Viewport returns the session's viewport for visibility updates.
func (d *DocumentSession) Viewport() *Viewport { return d.viewport }

// PageText returns the text of one page of the open document.
func (d *DocumentSession) PageText(ctx context.Context, number int) (string, error) {
	return d.source.PageText(ctx, d.document, number)
}

// VisiblePages returns the pages currently visible on screen.
func (d *DocumentSession) VisiblePages(_ context.Context) ([]int, error) {
	return d.viewport.Visible(), nil
}
