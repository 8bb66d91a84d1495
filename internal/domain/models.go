package domain

import "time"

// RoomState is the one-directional lifecycle of a quiz room.
type RoomState string

const (
	RoomLobby   RoomState = "LOBBY"
	RoomPlaying RoomState = "PLAYING"
	RoomEnded   RoomState = "ENDED"
)

// Question models a single multiple-choice question. Grading is an exact
// string comparison of the submitted answer against Answer.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Player tracks one roster entry inside a room, keyed by the connection
// that joined. AnsweredIndex is the highest question index the player has
// already had scored (-1 before any attempt).
type Player struct {
	ConnectionID  string
	Username      string
	Score         int
	AnsweredIndex int
	JoinedAt      time.Time
}

// PlayerView is the wire-friendly roster entry.
type PlayerView struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// LeaderboardEntry is one row of the final ranking.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Leaderboard is the final, score-sorted ranking of a room, produced
// exactly once when the room ends.
type Leaderboard struct {
	RoomID  string             `json:"roomId"`
	Entries []LeaderboardEntry `json:"entries"`
}

// QuestionPrompt is the answer-free view of the active question sent to
// participants when its interval opens.
type QuestionPrompt struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	TimeLeft int      `json:"timeLeft"`
}

// RoomSummary is the lookup/listing view of a room; it carries no scoring
// state beyond the roster size.
type RoomSummary struct {
	RoomID        string    `json:"roomId"`
	Subject       string    `json:"subject"`
	Title         string    `json:"title"`
	State         RoomState `json:"state"`
	Players       int       `json:"players"`
	QuestionCount int       `json:"questionCount"`
}

// EventType tags the closed set of room-originated broadcast events.
type EventType string

const (
	EventPlayerJoined EventType = "player_joined"
	EventQuizStarted  EventType = "quiz_started"
	EventNewQuestion  EventType = "new_question"
	EventQuizEnded    EventType = "quiz_ended"
)

// Event is a room broadcast. Exactly one payload field is set, matching Type.
type Event struct {
	Type        EventType
	Roster      []PlayerView
	Question    *QuestionPrompt
	Leaderboard *Leaderboard
}
