package study

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

// QuizQuestionCount is the fixed number of questions in a generated quiz.
const QuizQuestionCount = 5

// ErrInvalidQuiz indicates a generated quiz did not conform to its schema.
var ErrInvalidQuiz = errors.New("invalid quiz")

// QuizQuestion is one multiple-choice question with options A through D and
// exactly one correct option.
type QuizQuestion struct {
	Question      string `json:"question"`
	A             string `json:"A"`
	B             string `json:"B"`
	C             string `json:"C"`
	D             string `json:"D"`
	CorrectOption string `json:"correct_option"`
}

// Quiz is the structured quiz output.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// Validate checks the quiz against its schema: exactly QuizQuestionCount
// questions, each with text, four options and a correct option in A-D.
func (q *Quiz) Validate() error {
	if len(q.Questions) != QuizQuestionCount {
		return fmt.Errorf("%w: got %d questions, want %d", ErrInvalidQuiz, len(q.Questions), QuizQuestionCount)
	}
	for i, question := range q.Questions {
		if question.Question == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuiz, i+1)
		}
		if question.A == "" || question.B == "" || question.C == "" || question.D == "" {
			return fmt.Errorf("%w: question %d is missing options", ErrInvalidQuiz, i+1)
		}
		switch question.CorrectOption {
		case "A", "B", "C", "D":
		default:
			return fmt.Errorf("%w: question %d correct_option is %q, want A-D", ErrInvalidQuiz, i+1, question.CorrectOption)
		}
	}
	return nil
}

const quizSystemPrompt = "You are a Quiz Generator. Generate 5 MCQs from given content with options A, B, C and D with only one correct option with no ambiguity."

// GenerateQuiz builds a five-question multiple-choice quiz from one page.
//
// The quiz is generated in English regardless of the configured language:
// English dominates model training data and yields more reliable structured
// output. When the configured language is not English a second structured
// pass translates the finished quiz.
func (s *Service) GenerateQuiz(ctx context.Context, pageNumber int) (*Quiz, error) {
	pageText, err := s.pages.PageText(ctx, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("fetching page %d: %w", pageNumber, err)
	}

	prompt := fmt.Sprintf("Content:\n---\n%s\n---", pageText)
	msgs := []*ai.Message{
		ai.NewSystemTextMessage(quizSystemPrompt),
		ai.NewUserTextMessage(prompt),
	}

	var quiz Quiz
	if err := s.completer.Structured(ctx, msgs, &quiz); err != nil {
		return nil, fmt.Errorf("generating quiz: %w", err)
	}
	if err := quiz.Validate(); err != nil {
		return nil, fmt.Errorf("generated quiz: %w", err)
	}

	if s.language == "English" {
		return &quiz, nil
	}
	translated, err := s.translateQuiz(ctx, &quiz)
	if err != nil {
		return nil, err
	}
	return translated, nil
}

// translateQuiz runs one structured translation pass over a finished quiz.
func (s *Service) translateQuiz(ctx context.Context, quiz *Quiz) (*Quiz, error) {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return nil, fmt.Errorf("encoding quiz for translation: %w", err)
	}

	system := fmt.Sprintf("You are a English to %s translator. Output only the translation.", s.language)
	msgs := []*ai.Message{
		ai.NewSystemTextMessage(system),
		ai.NewUserTextMessage(string(raw)),
	}

	var translated Quiz
	if err := s.completer.Structured(ctx, msgs, &translated); err != nil {
		return nil, fmt.Errorf("translating quiz: %w", err)
	}
	if err := translated.Validate(); err != nil {
		return nil, fmt.Errorf("translated quiz: %w", err)
	}
	return &translated, nil
}
