package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/aurenia/aurenia/internal/companion"
)

// VectorDimension is the embedding size stored in the page_chunks table.
// The embedder must be configured to produce vectors of this size.
const VectorDimension = 768

// Embedding task prefixes. E5-style embedding models are trained with
// asymmetric prefixes for indexed passages versus search queries.
const (
	passagePrefix = "passage: "
	queryPrefix   = "query: "
)

var (
	// ErrNoMatch indicates the document has no indexed chunks to match.
	ErrNoMatch = errors.New("no matching chunk")

	// ErrEmptyEmbedding indicates the embedder returned no vector.
	ErrEmptyEmbedding = errors.New("empty embedding returned")
)

// Querier is the database access the store needs. *pgxpool.Pool satisfies it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the pgvector-backed chunk index. It satisfies companion.Retriever.
// Store is safe for concurrent use.
type Store struct {
	db       Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ companion.Retriever = (*Store)(nil)

// NewStore creates a Store. A nil logger uses slog.Default().
func NewStore(db Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, embedder: embedder, logger: logger}
}

// IndexPage chunks, embeds and stores one page's text, replacing whatever
// was previously indexed for that page. Blank pages are skipped.
func (s *Store) IndexPage(ctx context.Context, document string, number int, text string) error {
	if strings.TrimSpace(text) == "" {
		s.logger.Debug("skipping blank page", "document", document, "page", number)
		return nil
	}

	if _, err := s.db.Exec(ctx,
		`DELETE FROM page_chunks WHERE document = $1 AND page_number = $2`,
		document, number); err != nil {
		return fmt.Errorf("clearing chunks of page %d: %w", number, err)
	}

	chunks := Chunks(text)
	for _, chunk := range chunks {
		embedding, err := s.embed(ctx, passagePrefix+chunk)
		if err != nil {
			return fmt.Errorf("embedding chunk of page %d: %w", number, err)
		}
		if _, err := s.db.Exec(ctx, `
			INSERT INTO page_chunks (document, page_number, content, embedding)
			VALUES ($1, $2, $3, $4)`,
			document, number, chunk, embedding); err != nil {
			return fmt.Errorf("storing chunk of page %d: %w", number, err)
		}
	}

	s.logger.Debug("page indexed", "document", document, "page", number, "chunks", len(chunks))
	return nil
}

// TopMatch returns the page whose indexed chunk is nearest to query by
// cosine distance, together with the matched chunk text.
func (s *Store) TopMatch(ctx context.Context, document, query string) (companion.Match, error) {
	embedding, err := s.embed(ctx, queryPrefix+query)
	if err != nil {
		return companion.Match{}, fmt.Errorf("embedding query: %w", err)
	}

	var match companion.Match
	err = s.db.QueryRow(ctx, `
		SELECT page_number, content
		FROM page_chunks
		WHERE document = $1
		ORDER BY embedding <=> $2
		LIMIT 1`,
		document, embedding).Scan(&match.PageNumber, &match.Text)
	if errors.Is(err, pgx.ErrNoRows) {
		return companion.Match{}, fmt.Errorf("document %q: %w", document, ErrNoMatch)
	}
	if err != nil {
		return companion.Match{}, fmt.Errorf("searching chunks of %q: %w", document, err)
	}
	return match, nil
}

// DeleteDocument removes all indexed chunks of a document.
func (s *Store) DeleteDocument(ctx context.Context, document string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM page_chunks WHERE document = $1`, document)
	if err != nil {
		return fmt.Errorf("deleting chunks of %q: %w", document, err)
	}
	s.logger.Debug("document chunks deleted", "document", document, "chunks", tag.RowsAffected())
	return nil
}

func (s *Store) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(text)}},
		},
	})
	if err != nil {
		return pgvector.Vector{}, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return pgvector.Vector{}, ErrEmptyEmbedding
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}
