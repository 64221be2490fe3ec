// Package completion implements the companion's completion service over
// Genkit: token-streaming chat generation and schema-constrained structured
// generation, with retry and proactive rate limiting.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/aurenia/aurenia/internal/companion"
)

// Sentinel errors for client construction.
var (
	ErrNilGenkit   = errors.New("genkit instance is required")
	ErrNoModelName = errors.New("model name is required")
)

// defaultRateLimit allows 2 requests/second with a small burst, conservative
// enough for free-tier API quotas.
var defaultRateLimit = rate.NewLimiter(rate.Limit(2), 4)

// Config contains the parameters for a Client.
type Config struct {
	Genkit *genkit.Genkit

	// ModelName is the provider-qualified model name,
	// e.g. "googleai/gemini-2.5-flash" or "ollama/llama3.3".
	ModelName string

	// Retry settings; zero value uses DefaultRetryConfig.
	Retry RetryConfig

	// RateLimiter proactively throttles calls. Nil uses a shared default.
	RateLimiter *rate.Limiter

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client is the Genkit-backed completion service. It satisfies
// companion.Completer. Client is stateless and safe for concurrent use.
type Client struct {
	g         *genkit.Genkit
	modelName string
	retry     RetryConfig
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// compile-time interface check
var _ companion.Completer = (*Client)(nil)

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.Genkit == nil {
		return nil, ErrNilGenkit
	}
	if cfg.ModelName == "" {
		return nil, ErrNoModelName
	}
	retry := cfg.Retry
	if retry == (RetryConfig{}) {
		retry = DefaultRetryConfig()
	}
	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = defaultRateLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		g:         cfg.Genkit,
		modelName: cfg.ModelName,
		retry:     retry,
		limiter:   limiter,
		logger:    logger,
	}, nil
}

// Stream generates a reply to msgs, delivering token fragments to cb in
// arrival order.
//
// Transient failures are retried only until the first token reaches cb:
// retrying a partially delivered stream would re-emit tokens the caller has
// already rendered.
func (c *Client) Stream(ctx context.Context, msgs []*ai.Message, cb companion.TokenCallback) error {
	delivered := false
	opts := []ai.GenerateOption{
		ai.WithMessages(deepCopyMessages(msgs)...),
		ai.WithModelName(c.modelName),
		ai.WithStreaming(func(_ context.Context, chunk *ai.ModelResponseChunk) error {
			delivered = true
			return cb(chunk.Text())
		}),
	}

	_, err := c.executeWithRetry(ctx,
		func(ctx context.Context) (*ai.ModelResponse, error) {
			return genkit.Generate(ctx, c.g, opts...)
		},
		func(err error) bool {
			return !delivered && retryableError(err)
		})
	if err != nil {
		return fmt.Errorf("streaming completion: %w", err)
	}
	return nil
}

// Structured generates a single reply constrained to the JSON schema derived
// from out, a pointer to a struct, and unmarshals the result into it.
func (c *Client) Structured(ctx context.Context, msgs []*ai.Message, out any) error {
	opts := []ai.GenerateOption{
		ai.WithMessages(deepCopyMessages(msgs)...),
		ai.WithModelName(c.modelName),
		ai.WithOutputType(out),
	}

	resp, err := c.executeWithRetry(ctx,
		func(ctx context.Context) (*ai.ModelResponse, error) {
			return genkit.Generate(ctx, c.g, opts...)
		},
		retryableError)
	if err != nil {
		return fmt.Errorf("structured completion: %w", err)
	}
	if err := resp.Output(out); err != nil {
		return fmt.Errorf("parsing structured output: %w", err)
	}
	return nil
}

// deepCopyMessages copies messages and their content slices. Genkit can
// modify message content in place during rendering, so sharing message
// objects between a live conversation and an in-flight generation would
// race.
func deepCopyMessages(messages []*ai.Message) []*ai.Message {
	copied := make([]*ai.Message, len(messages))
	for i, msg := range messages {
		if msg == nil {
			continue
		}
		content := make([]*ai.Part, len(msg.Content))
		copy(content, msg.Content)
		copied[i] = &ai.Message{
			Role:     msg.Role,
			Content:  content,
			Metadata: msg.Metadata,
		}
	}
	return copied
}
