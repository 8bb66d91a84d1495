package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a room code does not resolve.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidQuestions indicates a malformed question set at room creation.
	ErrInvalidQuestions = errors.New("invalid question set")
	// ErrQuizAlreadyStarted is returned when start is requested outside the lobby.
	ErrQuizAlreadyStarted = errors.New("quiz already started")
	// ErrNoMaterial indicates the generation backend has no indexed material
	// for the requested subject.
	ErrNoMaterial = errors.New("no material for subject")
)
