// Package page stores and serves document page text, and tracks which pages
// are currently visible on screen. Together with a document title this
// implements the companion's page provider.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrPageNotFound indicates the requested page is not stored for the document.
var ErrPageNotFound = errors.New("page not found")

// Querier is the database access the store needs. Defined by the consumer;
// *pgxpool.Pool satisfies it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists page text per document in PostgreSQL.
// Store is safe for concurrent use.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates a Store. A nil logger uses slog.Default().
func NewStore(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// SavePage inserts or replaces the text of one page.
func (s *Store) SavePage(ctx context.Context, document string, number int, text string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO pages (document, page_number, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (document, page_number)
		DO UPDATE SET content = EXCLUDED.content`,
		document, number, text)
	if err != nil {
		return fmt.Errorf("saving page %d of %q: %w", number, document, err)
	}
	return nil
}

// PageText returns the stored text of one page.
func (s *Store) PageText(ctx context.Context, document string, number int) (string, error) {
	var text string
	err := s.db.QueryRow(ctx,
		`SELECT content FROM pages WHERE document = $1 AND page_number = $2`,
		document, number).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("page %d of %q: %w", number, document, ErrPageNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("fetching page %d of %q: %w", number, document, err)
	}
	return text, nil
}

// PageCount returns the number of stored pages for a document.
func (s *Store) PageCount(ctx context.Context, document string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM pages WHERE document = $1`, document).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %q: %w", document, err)
	}
	return count, nil
}

// Documents lists the documents that have stored pages, alphabetically.
func (s *Store) Documents(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT document FROM pages ORDER BY document`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning document name: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes all stored pages of a document.
func (s *Store) DeleteDocument(ctx context.Context, document string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM pages WHERE document = $1`, document)
	if err != nil {
		return fmt.Errorf("deleting pages of %q: %w", document, err)
	}
	s.logger.Debug("document pages deleted", "document", document, "pages", tag.RowsAffected())
	return nil
}
