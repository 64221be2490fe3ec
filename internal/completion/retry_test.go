package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/aurenia/aurenia/internal/log"
)

func testClient(t *testing.T, retry RetryConfig) *Client {
	t.Helper()
	return &Client{
		retry:   retry,
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  log.NewNop(),
	}
}

func TestRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", errors.New("googleai: rate limit exceeded"), true},
		{"quota", errors.New("Quota Exceeded for project"), true},
		{"http 429", errors.New("unexpected status 429"), true},
		{"server error", errors.New("503 Service Unavailable"), true},
		{"timeout", errors.New("dial tcp: i/o timeout"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"invalid request", errors.New("invalid request: unknown model"), false},
		{"auth failure", errors.New("401 unauthorized"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := retryableError(tt.err); got != tt.want {
				t.Errorf("retryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExecuteWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	c := testClient(t, RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})

	calls := 0
	want := &ai.ModelResponse{}
	resp, err := c.executeWithRetry(context.Background(),
		func(context.Context) (*ai.ModelResponse, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("503 service unavailable")
			}
			return want, nil
		},
		retryableError)
	if err != nil {
		t.Fatalf("executeWithRetry() = %v", err)
	}
	if resp != want {
		t.Error("unexpected response returned")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestExecuteWithRetry_NonRetryableFailsImmediately(t *testing.T) {
	t.Parallel()

	c := testClient(t, RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})

	permanent := errors.New("invalid request")
	calls := 0
	_, err := c.executeWithRetry(context.Background(),
		func(context.Context) (*ai.ModelResponse, error) {
			calls++
			return nil, permanent
		},
		retryableError)
	if !errors.Is(err, permanent) {
		t.Fatalf("executeWithRetry() = %v, want wrapped permanent error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestExecuteWithRetry_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	c := testClient(t, RetryConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})

	transient := errors.New("429 too many requests")
	calls := 0
	_, err := c.executeWithRetry(context.Background(),
		func(context.Context) (*ai.ModelResponse, error) {
			calls++
			return nil, transient
		},
		retryableError)
	if !errors.Is(err, transient) {
		t.Fatalf("executeWithRetry() = %v, want wrapped transient error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want MaxRetries+1 = 3", calls)
	}
}

func TestExecuteWithRetry_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	c := testClient(t, RetryConfig{
		MaxRetries:      5,
		InitialInterval: time.Hour, // never elapses
		MaxInterval:     time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := c.executeWithRetry(ctx,
		func(context.Context) (*ai.ModelResponse, error) {
			return nil, errors.New("timeout")
		},
		retryableError)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("executeWithRetry() = %v, want context.Canceled", err)
	}
}

func TestExecuteWithRetry_CallerCanRefuseRetry(t *testing.T) {
	t.Parallel()

	c := testClient(t, RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})

	// Simulates the streaming path: transient error after tokens were
	// already delivered must not retry.
	calls := 0
	_, err := c.executeWithRetry(context.Background(),
		func(context.Context) (*ai.ModelResponse, error) {
			calls++
			return nil, errors.New("connection reset mid-stream")
		},
		func(error) bool { return false })
	if err == nil {
		t.Fatal("executeWithRetry() = nil, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{ModelName: "googleai/gemini-2.5-flash"}); !errors.Is(err, ErrNilGenkit) {
		t.Errorf("New without genkit = %v, want ErrNilGenkit", err)
	}
	if _, err := New(Config{Genkit: &genkit.Genkit{}}); !errors.Is(err, ErrNoModelName) {
		t.Errorf("New without model name = %v, want ErrNoModelName", err)
	}
}

func TestDeepCopyMessages(t *testing.T) {
	t.Parallel()

	original := []*ai.Message{
		ai.NewSystemTextMessage("persona"),
		ai.NewUserTextMessage("question"),
	}
	copied := deepCopyMessages(original)

	if len(copied) != len(original) {
		t.Fatalf("len = %d, want %d", len(copied), len(original))
	}
	for i := range original {
		if copied[i] == original[i] {
			t.Errorf("message %d not copied", i)
		}
		if copied[i].Text() != original[i].Text() {
			t.Errorf("message %d text = %q, want %q", i, copied[i].Text(), original[i].Text())
		}
		copied[i].Content = append(copied[i].Content, ai.NewTextPart("mutation"))
		if len(original[i].Content) != 1 {
			t.Errorf("mutating copy %d affected original", i)
		}
	}
}
