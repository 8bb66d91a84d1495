package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"quiz-room-service/internal/domain"
)

// QuestionGenerator produces an ordered question set for a subject. The
// production implementation sits in front of the indexed question bank;
// subjects with no material fail with domain.ErrNoMaterial.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, subject string) ([]domain.Question, error)
}

// RoomIndex records created rooms in an external store (liveness markers,
// creator listing). All calls are best-effort; the registry never fails a
// creation because the index is down.
type RoomIndex interface {
	RecordRoom(ctx context.Context, code, creatorSessionID string) error
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const codeLength = 6

// Registry is the process-wide table of rooms. Creation and lookup are safe
// under concurrent access; room payloads are only ever mutated through the
// owning room's serialized operations.
type Registry struct {
	questionTime time.Duration
	now          func() time.Time
	index        RoomIndex

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry builds a registry whose rooms run each question for
// questionTime. index may be nil.
func NewRegistry(questionTime time.Duration, index RoomIndex) *Registry {
	return NewRegistryWithClock(questionTime, index, time.Now)
}

// NewRegistryWithClock is test-only for deterministic join timestamps.
func NewRegistryWithClock(questionTime time.Duration, index RoomIndex, now func() time.Time) *Registry {
	return &Registry{
		questionTime: questionTime,
		now:          now,
		index:        index,
		rooms:        make(map[string]*Room),
	}
}

// CreateRoom validates the question set, allocates a fresh room code, and
// stores a new lobby-state room. A nil question set is rejected; an empty
// one is permitted.
func (reg *Registry) CreateRoom(ctx context.Context, subject, title string, questions []domain.Question, creatorSessionID string) (*Room, error) {
	if questions == nil {
		return nil, domain.ErrInvalidQuestions
	}
	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	reg.mu.Lock()
	code, err := reg.uniqueCodeLocked()
	if err != nil {
		reg.mu.Unlock()
		return nil, err
	}
	room := newRoom(code, subject, title, creatorSessionID, questions, reg.questionTime, reg.now)
	reg.rooms[code] = room
	reg.mu.Unlock()

	if reg.index != nil {
		_ = reg.index.RecordRoom(ctx, code, creatorSessionID)
	}
	return room, nil
}

// GetRoom resolves a room code, case-insensitively.
func (reg *Registry) GetRoom(code string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// ListByCreator returns summaries of every room created under the session.
func (reg *Registry) ListByCreator(sessionID string) []domain.RoomSummary {
	reg.mu.RLock()
	rooms := make([]*Room, 0)
	for _, room := range reg.rooms {
		if room.Creator() == sessionID {
			rooms = append(rooms, room)
		}
	}
	reg.mu.RUnlock()

	summaries := make([]domain.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}
	return summaries
}

func (reg *Registry) uniqueCodeLocked() (string, error) {
	for {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
}

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func validateQuestions(questions []domain.Question) error {
	for i, q := range questions {
		if len(q.Options) == 0 {
			return fmt.Errorf("question %d has no options: %w", i, domain.ErrInvalidQuestions)
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.Answer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("question %d answer matches no option: %w", i, domain.ErrInvalidQuestions)
		}
	}
	return nil
}
