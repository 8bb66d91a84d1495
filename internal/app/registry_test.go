package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

func TestCreateRoomRejectsNilQuestions(t *testing.T) {
	registry := app.NewRegistry(time.Minute, nil)

	_, err := registry.CreateRoom(context.Background(), "subject", "title", nil, "creator-1")
	if !errors.Is(err, domain.ErrInvalidQuestions) {
		t.Fatalf("expected ErrInvalidQuestions for nil questions, got %v", err)
	}

	// An empty set is permitted.
	if _, err := registry.CreateRoom(context.Background(), "subject", "title", []domain.Question{}, "creator-1"); err != nil {
		t.Fatalf("expected empty question set to be accepted, got %v", err)
	}
}

func TestCreateRoomRejectsAnswerOutsideOptions(t *testing.T) {
	registry := app.NewRegistry(time.Minute, nil)

	questions := []domain.Question{
		{Prompt: "q", Options: []string{"a", "b"}, Answer: "c"},
	}
	_, err := registry.CreateRoom(context.Background(), "subject", "title", questions, "creator-1")
	if !errors.Is(err, domain.ErrInvalidQuestions) {
		t.Fatalf("expected ErrInvalidQuestions for answer outside options, got %v", err)
	}

	questions = []domain.Question{{Prompt: "q", Options: nil, Answer: ""}}
	_, err = registry.CreateRoom(context.Background(), "subject", "title", questions, "creator-1")
	if !errors.Is(err, domain.ErrInvalidQuestions) {
		t.Fatalf("expected ErrInvalidQuestions for empty options, got %v", err)
	}
}

func TestGetRoomIsCaseInsensitive(t *testing.T) {
	registry := app.NewRegistry(time.Minute, nil)

	room, err := registry.CreateRoom(context.Background(), "subject", "title", twoQuestions(), "creator-1")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if len(room.ID()) != 6 {
		t.Fatalf("expected 6-char code, got %q", room.ID())
	}

	got, err := registry.GetRoom(strings.ToLower(room.ID()))
	if err != nil {
		t.Fatalf("lower-case lookup: %v", err)
	}
	if got.ID() != room.ID() {
		t.Fatalf("expected same room, got %s", got.ID())
	}

	if _, err := registry.GetRoom("ZZZZZZ"); err != domain.ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomCodesAreUnique(t *testing.T) {
	registry := app.NewRegistry(time.Minute, nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, err := registry.CreateRoom(context.Background(), "subject", "title", []domain.Question{}, "creator-1")
		if err != nil {
			t.Fatalf("create room %d: %v", i, err)
		}
		if seen[room.ID()] {
			t.Fatalf("duplicate room code %s", room.ID())
		}
		seen[room.ID()] = true
	}
}

func TestListByCreator(t *testing.T) {
	registry := app.NewRegistry(time.Minute, nil)

	for i := 0; i < 2; i++ {
		if _, err := registry.CreateRoom(context.Background(), "subject", "title", []domain.Question{}, "creator-a"); err != nil {
			t.Fatalf("create room: %v", err)
		}
	}
	if _, err := registry.CreateRoom(context.Background(), "subject", "title", []domain.Question{}, "creator-b"); err != nil {
		t.Fatalf("create room: %v", err)
	}

	summaries := registry.ListByCreator("creator-a")
	if len(summaries) != 2 {
		t.Fatalf("expected 2 rooms for creator-a, got %d", len(summaries))
	}
	for _, summary := range summaries {
		if summary.State != domain.RoomLobby {
			t.Fatalf("expected lobby state, got %s", summary.State)
		}
	}
}

func TestCreateRoomRecordsIndex(t *testing.T) {
	index := &recordingIndex{}
	registry := app.NewRegistry(time.Minute, index)

	room, err := registry.CreateRoom(context.Background(), "subject", "title", []domain.Question{}, "creator-1")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if len(index.codes) != 1 || index.codes[0] != room.ID() {
		t.Fatalf("expected room code recorded, got %+v", index.codes)
	}
}

type recordingIndex struct {
	codes []string
}

func (i *recordingIndex) RecordRoom(_ context.Context, code, _ string) error {
	i.codes = append(i.codes, code)
	return nil
}
