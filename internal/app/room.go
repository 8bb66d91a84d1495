package app

import (
	"sort"
	"sync"
	"time"

	"quiz-room-service/internal/domain"
)

// Room owns one quiz session: roster, question pointer, and the single
// active countdown. Every operation serializes on the room's own mutex;
// independent rooms never contend with each other.
type Room struct {
	id        string
	subject   string
	title     string
	creator   string
	questions []domain.Question

	questionTime time.Duration
	now          func() time.Time

	mu          sync.Mutex
	state       domain.RoomState
	current     int
	players     map[string]*domain.Player
	order       []string
	subscribers map[chan domain.Event]struct{}
	timer       *time.Timer
	timerGen    uint64
}

func newRoom(id, subject, title, creator string, questions []domain.Question, questionTime time.Duration, now func() time.Time) *Room {
	return &Room{
		id:           id,
		subject:      subject,
		title:        title,
		creator:      creator,
		questions:    questions,
		questionTime: questionTime,
		now:          now,
		state:        domain.RoomLobby,
		current:      -1,
		players:      make(map[string]*domain.Player),
		subscribers:  make(map[chan domain.Event]struct{}),
	}
}

func (r *Room) ID() string      { return r.id }
func (r *Room) Subject() string { return r.subject }
func (r *Room) Creator() string { return r.creator }

func (r *Room) State() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) CurrentIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Join adds the connection to the roster if it is not already present and
// broadcasts the updated roster. Re-joins are no-ops that re-confirm
// membership; an ended room is never mutated.
func (r *Room) Join(connID, username string) []domain.PlayerView {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == domain.RoomEnded {
		return r.rosterLocked()
	}
	if _, ok := r.players[connID]; !ok {
		r.players[connID] = &domain.Player{
			ConnectionID:  connID,
			Username:      username,
			Score:         0,
			AnsweredIndex: -1,
			JoinedAt:      r.now(),
		}
		r.order = append(r.order, connID)
	}
	roster := r.rosterLocked()
	r.broadcastLocked(domain.Event{Type: domain.EventPlayerJoined, Roster: roster})
	return roster
}

// Start transitions the room from lobby to playing and opens the first
// question interval. With an empty question set the room ends immediately
// and the (empty-score) leaderboard is still broadcast exactly once.
func (r *Room) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != domain.RoomLobby {
		return domain.ErrQuizAlreadyStarted
	}
	r.state = domain.RoomPlaying
	r.broadcastLocked(domain.Event{Type: domain.EventQuizStarted})
	r.advanceLocked()
	return nil
}

// SubmitAnswer attempts to score an answer. Late, stale, repeated, or
// unknown-player submissions are dropped without effect; a live countdown
// treats them as noise, not faults.
func (r *Room) SubmitAnswer(connID string, questionIndex int, answer string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != domain.RoomPlaying || questionIndex != r.current {
		return
	}
	player, ok := r.players[connID]
	if !ok || player.AnsweredIndex >= questionIndex {
		return
	}
	player.AnsweredIndex = questionIndex
	if answer == r.questions[questionIndex].Answer {
		player.Score++
	}
}

// Subscribe registers a listener for room broadcasts. Events arrive in the
// order the room produced them. The caller must invoke the returned cancel
// function to avoid leaks.
func (r *Room) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// Roster returns the roster snapshot in join order.
func (r *Room) Roster() []domain.PlayerView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

func (r *Room) Summary() domain.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.RoomSummary{
		RoomID:        r.id,
		Subject:       r.subject,
		Title:         r.title,
		State:         r.state,
		Players:       len(r.players),
		QuestionCount: len(r.questions),
	}
}

// advanceLocked moves to the next question or ends the quiz. It is driven
// only by Start and by countdown expiry, never by a client message.
func (r *Room) advanceLocked() {
	next := r.current + 1
	if next < len(r.questions) {
		r.current = next
		q := r.questions[next]
		r.broadcastLocked(domain.Event{Type: domain.EventNewQuestion, Question: &domain.QuestionPrompt{
			Question: q.Prompt,
			Options:  q.Options,
			Index:    next,
			Total:    len(r.questions),
			TimeLeft: int(r.questionTime / time.Second),
		}})
		r.armCountdownLocked()
		return
	}

	r.state = domain.RoomEnded
	r.stopCountdownLocked()
	lb := r.leaderboardLocked()
	r.broadcastLocked(domain.Event{Type: domain.EventQuizEnded, Leaderboard: &lb})
}

// armCountdownLocked replaces the room's countdown with a fresh one bound
// to the current question. The generation counter makes a cancelled timer's
// late firing a no-op, so a question can never be skipped twice.
func (r *Room) armCountdownLocked() {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timerGen++
	gen := r.timerGen
	r.timer = time.AfterFunc(r.questionTime, func() {
		r.expire(gen)
	})
}

func (r *Room) stopCountdownLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Room) expire(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != domain.RoomPlaying || gen != r.timerGen {
		return
	}
	r.advanceLocked()
}

func (r *Room) rosterLocked() []domain.PlayerView {
	roster := make([]domain.PlayerView, 0, len(r.order))
	for _, connID := range r.order {
		p := r.players[connID]
		roster = append(roster, domain.PlayerView{Username: p.Username, Score: p.Score})
	}
	return roster
}

func (r *Room) leaderboardLocked() domain.Leaderboard {
	entries := make([]domain.LeaderboardEntry, 0, len(r.order))
	for _, connID := range r.order {
		p := r.players[connID]
		entries = append(entries, domain.LeaderboardEntry{Username: p.Username, Score: p.Score})
	}
	// Stable sort keeps join order as the tie-break.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return domain.Leaderboard{RoomID: r.id, Entries: entries}
}

func (r *Room) broadcastLocked(event domain.Event) {
	for ch := range r.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscribers lose their oldest event rather than
			// blocking the room.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
