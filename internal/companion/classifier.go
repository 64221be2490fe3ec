package companion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// Decision is the context-injection strategy chosen for one user turn.
type Decision int

const (
	// NoContext leaves the user message untouched.
	NoContext Decision = iota
	// VisibleText prefixes the message with not-yet-seen visible page text.
	VisibleText
	// Retrieval prefixes the message with the best-matching page for a
	// query derived from the conversation.
	Retrieval
)

func (d Decision) String() string {
	switch d {
	case NoContext:
		return "no_context"
	case VisibleText:
		return "visible_text"
	case Retrieval:
		return "retrieval"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Classification is the outcome of classifying one user turn. Nothing in it
// has been committed to the conversation yet; the engine applies Pages to the
// seen set and appends Message only after classification fully succeeds.
type Classification struct {
	Decision      Decision
	Message       string // the possibly augmented user message
	Pages         []int  // visible pages newly injected by this turn
	RetrievedPage int    // page behind a Retrieval decision, 0 otherwise
}

// Classifier decides the context strategy for each user turn. It is a pure
// per-turn function over the conversation; all state lives in Conversation.
type Classifier struct {
	completer Completer
	pages     PageProvider
	retriever Retriever
	document  string
	logger    *slog.Logger
}

const visibleTextPrompt = `The user is reading a document.
Based on the provided text visible on the app screen, determine if the user is asking a question related to the visible text or not.
If the user is asking related to provided visible text, then output {"question_from_visible_text": "true"}
Else output {"question_from_visible_text": "false"}

Here is the text visible:
-------
%s
-------
Here is user's query:
%s
`

const shouldRetrievePrompt = `Based on the provided conversation history, determine if the user is asking a new question that requires retrieving content from the document related to some query or if they are asking only a general or a follow-up question.
You need to reply either {"rag": "true", "query": "natural language retrieval query to retrieve the required information"} or {"rag": "false", "query": "none"}
The retrieval query shouldn't mention the document name.
Here is the conversation history:
%s
`

// Classify decides the context strategy for raw, the new user message.
//
// Visible-text relevance is always checked before retrieval; retrieval runs
// only when the visible-text answer is false. A structured decision that
// fails or does not parse degrades the turn to NoContext (logged, never
// surfaced). Failures fetching pages or retrieving a match are fatal to the
// turn and propagate; the caller must not append anything in that case.
func (cl *Classifier) Classify(ctx context.Context, conv *Conversation, raw string) (Classification, error) {
	none := Classification{Decision: NoContext, Message: raw}

	visible, err := cl.pages.VisiblePages(ctx)
	if err != nil {
		return Classification{}, fmt.Errorf("listing visible pages: %w", err)
	}

	// One pass over the viewport: the full visible text feeds the
	// classifier prompt, the unseen subset is the candidate injection.
	var visibleContext strings.Builder
	type pageText struct {
		number int
		text   string
	}
	var unseen []pageText
	for _, page := range visible {
		text, err := cl.pages.PageText(ctx, page)
		if err != nil {
			return Classification{}, fmt.Errorf("fetching text of page %d: %w", page, err)
		}
		fmt.Fprintf(&visibleContext, "Page Number: %d\n%s\n\n", page, text)
		if !conv.hasSeen(page) {
			unseen = append(unseen, pageText{number: page, text: text})
		}
	}

	var visDecision VisibleTextDecision
	if err := cl.decide(ctx, SchemaVisibleText,
		fmt.Sprintf(visibleTextPrompt, visibleContext.String(), raw), &visDecision); err != nil {
		return none, nil
	}

	if visDecision.Bool() {
		// Pages already injected earlier in the conversation are never
		// re-injected, even when relevant again. If everything visible has
		// been seen the message goes through unmodified.
		var added strings.Builder
		pages := make([]int, 0, len(unseen))
		for _, p := range unseen {
			pages = append(pages, p.number)
			fmt.Fprintf(&added, "Page Number: %d\n%s\n\n", p.number, p.text)
		}
		if added.Len() == 0 {
			return Classification{Decision: VisibleText, Message: raw}, nil
		}
		return Classification{
			Decision: VisibleText,
			Message:  fmt.Sprintf("Context: \n%s\n\n%s", added.String(), raw),
			Pages:    pages,
		}, nil
	}

	var ragDecision RetrievalDecision
	if err := cl.decide(ctx, SchemaShouldRetrieve,
		fmt.Sprintf(shouldRetrievePrompt, conv.Transcript()+"User: "+raw), &ragDecision); err != nil {
		return none, nil
	}
	if !ragDecision.Bool() {
		return none, nil
	}

	// Retrieval uses the derived query, not the raw message: the decision
	// prompt has the whole transcript and distills follow-ups into a
	// self-contained query.
	match, err := cl.retriever.TopMatch(ctx, cl.document, ragDecision.Query)
	if err != nil {
		return Classification{}, fmt.Errorf("retrieving match for %q: %w", ragDecision.Query, err)
	}
	text, err := cl.pages.PageText(ctx, match.PageNumber)
	if err != nil {
		return Classification{}, fmt.Errorf("fetching text of retrieved page %d: %w", match.PageNumber, err)
	}

	return Classification{
		Decision:      Retrieval,
		Message:       fmt.Sprintf("Context:\n[Text from Page Number: %d]\n%s\n[Context End]\n%s", match.PageNumber, text, raw),
		RetrievedPage: match.PageNumber,
	}, nil
}

// decide runs one structured classification call and validates the result.
// Any failure is logged and returned for the caller to degrade to NoContext.
func (cl *Classifier) decide(ctx context.Context, schema, prompt string, out interface{ Validate() error }) error {
	msgs := []*ai.Message{ai.NewUserTextMessage(prompt)}
	if err := cl.completer.Structured(ctx, msgs, out); err != nil {
		cl.logger.Warn("classifier decision failed, proceeding without context",
			"schema", schema, "error", err)
		return &DecisionError{Schema: schema, Err: err}
	}
	if err := out.Validate(); err != nil {
		cl.logger.Warn("classifier decision invalid, proceeding without context",
			"schema", schema, "error", err)
		return err
	}
	return nil
}
