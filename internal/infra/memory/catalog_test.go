package memory

import (
	"context"
	"errors"
	"testing"

	"quizless-service/internal/domain"
)

func TestCatalogLoadsOnce(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(sampleQuiz())}
	catalog := NewCatalog(loader)

	if _, err := catalog.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	topics, err := catalog.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(topics) != 1 || loader.calls != 1 {
		t.Fatalf("expected cached catalog, got %d quizzes and %d loads", len(topics), loader.calls)
	}
}

func TestCatalogUnknownQuiz(t *testing.T) {
	catalog := NewCatalog(NewStaticQuizLoader(sampleQuiz()))

	_, err := catalog.GetQuiz(context.Background(), "nope")
	if !errors.Is(err, domain.ErrQuizNotFound) || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogRejectsInvalidQuiz(t *testing.T) {
	broken := sampleQuiz()
	broken.Questions[0].CorrectAnswers = []int{7}
	catalog := NewCatalog(NewStaticQuizLoader(broken))

	if err := catalog.Load(context.Background()); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCatalogRejectsDuplicateIDs(t *testing.T) {
	catalog := NewCatalog(NewStaticQuizLoader(sampleQuiz(), sampleQuiz()))

	if err := catalog.Load(context.Background()); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuizzes(ctx)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:   "quiz-1",
		Name: "Arithmetic",
		Questions: []domain.Question{
			{
				Prompt:         "What is 2 + 2?",
				Kind:           domain.SingleChoice,
				Choices:        []string{"3", "4"},
				CorrectAnswers: []int{1},
			},
		},
	}
}
