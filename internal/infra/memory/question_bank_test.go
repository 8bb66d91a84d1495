package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-room-service/internal/domain"
)

func TestQuestionBankCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string][]domain.Question{
			"geography": sampleQuestions(),
		}),
	}
	bank := NewQuestionBank(loader, time.Minute)

	if _, err := bank.GenerateQuestions(context.Background(), "geography"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := bank.GenerateQuestions(context.Background(), "geography"); err != nil {
		t.Fatalf("generate 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionBankPropagatesNoMaterial(t *testing.T) {
	bank := NewQuestionBank(NewStaticQuestionLoader(nil), time.Minute)

	_, err := bank.GenerateQuestions(context.Background(), "unknown")
	if !errors.Is(err, domain.ErrNoMaterial) {
		t.Fatalf("expected ErrNoMaterial, got %v", err)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, subject string) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, subject)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Prompt:  "What is the capital of France?",
			Options: []string{"London", "Paris", "Berlin"},
			Answer:  "Paris",
		},
	}
}
