package study_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurenia/aurenia/internal/companion"
	"github.com/aurenia/aurenia/internal/log"
	"github.com/aurenia/aurenia/internal/study"
)

type scriptedCompleter struct {
	tokens    []string
	streamErr error

	structured func(out any) error

	streamedMsgs   [][]*ai.Message
	structuredMsgs [][]*ai.Message
}

func (c *scriptedCompleter) Stream(_ context.Context, msgs []*ai.Message, cb companion.TokenCallback) error {
	c.streamedMsgs = append(c.streamedMsgs, msgs)
	for _, token := range c.tokens {
		if err := cb(token); err != nil {
			return err
		}
	}
	return c.streamErr
}

func (c *scriptedCompleter) Structured(_ context.Context, msgs []*ai.Message, out any) error {
	c.structuredMsgs = append(c.structuredMsgs, msgs)
	if c.structured == nil {
		return errors.New("no structured behavior scripted")
	}
	return c.structured(out)
}

type staticPages struct {
	texts map[int]string
}

func (p *staticPages) PageText(_ context.Context, page int) (string, error) {
	text, ok := p.texts[page]
	if !ok {
		return "", fmt.Errorf("no page %d", page)
	}
	return text, nil
}

func (p *staticPages) VisiblePages(context.Context) ([]int, error) {
	return nil, nil
}

func newService(t *testing.T, completer *scriptedCompleter, pages *staticPages, language string) *study.Service {
	t.Helper()
	if pages == nil {
		pages = &staticPages{}
	}
	svc, err := study.New(study.Config{
		Completer: completer,
		Pages:     pages,
		Language:  language,
		Logger:    log.NewNop(),
	})
	require.NoError(t, err)
	return svc
}

func validQuiz() study.Quiz {
	q := study.Quiz{}
	for i := 0; i < study.QuizQuestionCount; i++ {
		q.Questions = append(q.Questions, study.QuizQuestion{
			Question:      fmt.Sprintf("Question %d", i+1),
			A:             "first",
			B:             "second",
			C:             "third",
			D:             "fourth",
			CorrectOption: "B",
		})
	}
	return q
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{}
	pages := &staticPages{}

	_, err := study.New(study.Config{Pages: pages, Language: "English"})
	assert.ErrorIs(t, err, study.ErrNilCompleter)

	_, err = study.New(study.Config{Completer: completer, Language: "English"})
	assert.ErrorIs(t, err, study.ErrNilPageProvider)

	_, err = study.New(study.Config{Completer: completer, Pages: pages})
	assert.ErrorIs(t, err, study.ErrNoLanguage)
}

func TestExplain(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{tokens: []string{"It is ", "a metaphor."}}
	pages := &staticPages{texts: map[int]string{7: "the seventh page text"}}
	svc := newService(t, completer, pages, "English")

	var events []companion.Event
	exchange, err := svc.Explain(context.Background(), 7, "white whale", func(e companion.Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	assert.Equal(t, "It is a metaphor.", exchange.Answer)
	require.NotEmpty(t, events)
	assert.IsType(t, companion.Started{}, events[0])

	// One ephemeral {system, user} exchange went to the model.
	require.Len(t, completer.streamedMsgs, 1)
	msgs := completer.streamedMsgs[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Text(), "study assistant")
	assert.Equal(t, ai.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Text(), "the seventh page text")
	assert.Contains(t, msgs[1].Text(), "What does white whale means here?")

	// Seeds carry user and assistant only; the engine adds its own system
	// message on promotion.
	require.Len(t, exchange.Seed, 2)
	assert.Equal(t, ai.RoleUser, exchange.Seed[0].Role)
	assert.Equal(t, msgs[1].Text(), exchange.Seed[0].Text())
	assert.Equal(t, ai.RoleModel, exchange.Seed[1].Role)
	assert.Equal(t, "It is a metaphor.", exchange.Seed[1].Text())
}

func TestExplain_EmptySelection(t *testing.T) {
	t.Parallel()

	svc := newService(t, &scriptedCompleter{}, nil, "English")
	_, err := svc.Explain(context.Background(), 1, "  ", nil)
	assert.ErrorIs(t, err, study.ErrEmptySelection)
}

func TestDefine(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{tokens: []string{"A large ", "marine mammal."}}
	svc := newService(t, completer, nil, "Spanish")

	exchange, err := svc.Define(context.Background(), "whale", nil)
	require.NoError(t, err)
	assert.Equal(t, "A large marine mammal.", exchange.Answer)

	msgs := completer.streamedMsgs[0]
	assert.Contains(t, msgs[0].Text(), "dictionary")
	assert.Contains(t, msgs[0].Text(), "Spanish")
	assert.Contains(t, msgs[1].Text(), `"whale"`)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{tokens: []string{"ballena"}}
	svc := newService(t, completer, nil, "Spanish")

	exchange, err := svc.Translate(context.Background(), "whale", nil)
	require.NoError(t, err)
	assert.Equal(t, "ballena", exchange.Answer)

	msgs := completer.streamedMsgs[0]
	assert.Contains(t, msgs[0].Text(), "translator")
	assert.Equal(t, "Translate into Spanish: whale", msgs[1].Text())
}

func TestSummarizePage_SeedDiffersFromPrompt(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{tokens: []string{"# Summary"}}
	pages := &staticPages{texts: map[int]string{3: "third page text"}}
	svc := newService(t, completer, pages, "English")

	exchange, err := svc.SummarizePage(context.Background(), 3, nil)
	require.NoError(t, err)

	// The model sees the raw page text as the user turn.
	msgs := completer.streamedMsgs[0]
	assert.Equal(t, "third page text", msgs[1].Text())
	assert.Contains(t, msgs[0].Text(), "summarizer")

	// The seed's user turn is the self-describing request instead.
	require.Len(t, exchange.Seed, 2)
	assert.Equal(t, "Summarize this extracted page from a document in beautiful markdown: third page text",
		exchange.Seed[0].Text())
	assert.Equal(t, "# Summary", exchange.Seed[1].Text())
}

func TestAsk_StreamFailureKeepsPartialAnswer(t *testing.T) {
	t.Parallel()

	streamErr := errors.New("stream dropped")
	completer := &scriptedCompleter{tokens: []string{"partial"}, streamErr: streamErr}
	svc := newService(t, completer, nil, "English")

	exchange, err := svc.Define(context.Background(), "whale", nil)
	require.ErrorIs(t, err, streamErr)
	assert.Equal(t, "partial", exchange.Answer)
	require.Len(t, exchange.Seed, 2)
	assert.Equal(t, "partial", exchange.Seed[1].Text())
}

func TestQuizValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*study.Quiz)
		valid  bool
	}{
		{"valid", func(*study.Quiz) {}, true},
		{"too few questions", func(q *study.Quiz) { q.Questions = q.Questions[:4] }, false},
		{"too many questions", func(q *study.Quiz) { q.Questions = append(q.Questions, q.Questions[0]) }, false},
		{"missing question text", func(q *study.Quiz) { q.Questions[2].Question = "" }, false},
		{"missing option", func(q *study.Quiz) { q.Questions[1].C = "" }, false},
		{"correct option out of range", func(q *study.Quiz) { q.Questions[0].CorrectOption = "E" }, false},
		{"lowercase correct option", func(q *study.Quiz) { q.Questions[0].CorrectOption = "b" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			quiz := validQuiz()
			tt.mutate(&quiz)
			err := quiz.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, study.ErrInvalidQuiz)
			}
		})
	}
}

func TestGenerateQuiz_English(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		structured: func(out any) error {
			*out.(*study.Quiz) = validQuiz()
			return nil
		},
	}
	pages := &staticPages{texts: map[int]string{5: "page five content"}}
	svc := newService(t, completer, pages, "English")

	quiz, err := svc.GenerateQuiz(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, quiz.Questions, study.QuizQuestionCount)

	// English configuration: one structured call, no translation pass.
	require.Len(t, completer.structuredMsgs, 1)
	msgs := completer.structuredMsgs[0]
	assert.Contains(t, msgs[0].Text(), "Quiz Generator")
	assert.Contains(t, msgs[1].Text(), "page five content")
}

func TestGenerateQuiz_TranslationPass(t *testing.T) {
	t.Parallel()

	calls := 0
	completer := &scriptedCompleter{
		structured: func(out any) error {
			calls++
			quiz := validQuiz()
			if calls == 2 {
				quiz.Questions[0].Question = "Pregunta 1"
			}
			*out.(*study.Quiz) = quiz
			return nil
		},
	}
	pages := &staticPages{texts: map[int]string{5: "page five content"}}
	svc := newService(t, completer, pages, "Spanish")

	quiz, err := svc.GenerateQuiz(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Pregunta 1", quiz.Questions[0].Question)

	require.Len(t, completer.structuredMsgs, 2)
	translationSystem := completer.structuredMsgs[1][0].Text()
	assert.Contains(t, translationSystem, "English to Spanish translator")
	// The translation pass receives the generated quiz as JSON.
	assert.Contains(t, completer.structuredMsgs[1][1].Text(), `"correct_option":"B"`)
}

func TestGenerateQuiz_InvalidStructuredOutput(t *testing.T) {
	t.Parallel()

	completer := &scriptedCompleter{
		structured: func(out any) error {
			*out.(*study.Quiz) = study.Quiz{Questions: []study.QuizQuestion{{Question: "only one"}}}
			return nil
		},
	}
	pages := &staticPages{texts: map[int]string{5: "content"}}
	svc := newService(t, completer, pages, "English")

	_, err := svc.GenerateQuiz(context.Background(), 5)
	assert.ErrorIs(t, err, study.ErrInvalidQuiz)
}

func TestGenerateQuiz_StructuredCallFails(t *testing.T) {
	t.Parallel()

	callErr := errors.New("model unavailable")
	completer := &scriptedCompleter{
		structured: func(any) error { return callErr },
	}
	pages := &staticPages{texts: map[int]string{5: "content"}}
	svc := newService(t, completer, pages, "English")

	_, err := svc.GenerateQuiz(context.Background(), 5)
	assert.ErrorIs(t, err, callErr)
}
