package companion

import "fmt"

// Named decision schemas requested from the completion service. The names
// identify which structured call failed when a DecisionError is reported.
const (
	SchemaVisibleText    = "question_from_visible_text"
	SchemaShouldRetrieve = "decide_rag"
)

// Schema booleans arrive as the strings "true"/"false", matching what small
// local models reliably produce for enum-constrained JSON fields.
const (
	schemaTrue  = "true"
	schemaFalse = "false"
)

// VisibleTextDecision is the structured answer to "is this question about
// the text currently visible on screen?".
type VisibleTextDecision struct {
	QuestionFromVisibleText string `json:"question_from_visible_text"`
}

// Validate checks the decision against its schema.
func (d *VisibleTextDecision) Validate() error {
	switch d.QuestionFromVisibleText {
	case schemaTrue, schemaFalse:
		return nil
	default:
		return &DecisionError{
			Schema: SchemaVisibleText,
			Err:    fmt.Errorf("question_from_visible_text must be %q or %q, got %q", schemaTrue, schemaFalse, d.QuestionFromVisibleText),
		}
	}
}

// Bool reports whether the question was judged answerable from visible text.
func (d *VisibleTextDecision) Bool() bool {
	return d.QuestionFromVisibleText == schemaTrue
}

// RetrievalDecision is the structured answer to "does this turn need content
// retrieved from the document, and with what query?".
type RetrievalDecision struct {
	Rag   string `json:"rag"`
	Query string `json:"query"`
}

// Validate checks the decision against its schema. A retrieval decision
// must carry a usable query.
func (d *RetrievalDecision) Validate() error {
	switch d.Rag {
	case schemaTrue:
		if d.Query == "" || d.Query == "none" {
			return &DecisionError{
				Schema: SchemaShouldRetrieve,
				Err:    fmt.Errorf("rag is %q but query is %q", schemaTrue, d.Query),
			}
		}
		return nil
	case schemaFalse:
		return nil
	default:
		return &DecisionError{
			Schema: SchemaShouldRetrieve,
			Err:    fmt.Errorf("rag must be %q or %q, got %q", schemaTrue, schemaFalse, d.Rag),
		}
	}
}

// Bool reports whether retrieval was requested.
func (d *RetrievalDecision) Bool() bool {
	return d.Rag == schemaTrue
}
