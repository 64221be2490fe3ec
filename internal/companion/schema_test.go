package companion_test

import (
	"errors"
	"testing"

	"github.com/aurenia/aurenia/internal/companion"
)

func TestVisibleTextDecision_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"true", "true", true},
		{"false", "false", true},
		{"empty", "", false},
		{"boolean-ish", "True", false},
		{"free text", "the user is asking about the text", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := &companion.VisibleTextDecision{QuestionFromVisibleText: tt.value}
			err := d.Validate()
			if tt.valid {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, companion.ErrUnparsableDecision) {
				t.Fatalf("Validate() = %v, want ErrUnparsableDecision", err)
			}
			var derr *companion.DecisionError
			if !errors.As(err, &derr) || derr.Schema != companion.SchemaVisibleText {
				t.Fatalf("Validate() = %v, want DecisionError for %s", err, companion.SchemaVisibleText)
			}
		})
	}
}

func TestRetrievalDecision_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rag   string
		query string
		valid bool
	}{
		{"retrieve with query", "true", "photon emission", true},
		{"no retrieval", "false", "none", true},
		{"no retrieval empty query", "false", "", true},
		{"retrieve without query", "true", "", false},
		{"retrieve with placeholder query", "true", "none", false},
		{"out of schema value", "yes", "something", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := &companion.RetrievalDecision{Rag: tt.rag, Query: tt.query}
			err := d.Validate()
			if tt.valid != (err == nil) {
				t.Fatalf("Validate() = %v, want valid=%v", err, tt.valid)
			}
			if err != nil && !errors.Is(err, companion.ErrUnparsableDecision) {
				t.Fatalf("Validate() = %v, want ErrUnparsableDecision", err)
			}
		})
	}
}
