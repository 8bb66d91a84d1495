package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
)

// RoomsHandler serves the room creation/lookup boundary. Question sets come
// either inline with the request or from the generation service by subject.
type RoomsHandler struct {
	registry  *app.Registry
	generator app.QuestionGenerator
}

func NewRoomsHandler(registry *app.Registry, generator app.QuestionGenerator) *RoomsHandler {
	return &RoomsHandler{registry: registry, generator: generator}
}

// Register mounts the handler's routes on the mux.
func (h *RoomsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /rooms", h.createRoom)
	mux.HandleFunc("GET /rooms", h.listRooms)
	mux.HandleFunc("GET /rooms/{id}", h.getRoom)
}

type createRoomRequest struct {
	Subject          string            `json:"subject"`
	Title            string            `json:"title"`
	Questions        []domain.Question `json:"questions"`
	CreatorSessionID string            `json:"creatorSessionId"`
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
}

func (h *RoomsHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questions := req.Questions
	if questions == nil {
		if req.Subject == "" {
			writeError(w, http.StatusBadRequest, "subject or questions required")
			return
		}
		generated, err := h.generator.GenerateQuestions(r.Context(), req.Subject)
		if errors.Is(err, domain.ErrNoMaterial) {
			writeError(w, http.StatusNotFound, "no material for subject")
			return
		}
		if err != nil {
			log.Printf("question generation failed for subject %q: %v", req.Subject, err)
			writeError(w, http.StatusBadGateway, "question generation failed")
			return
		}
		questions = generated
		if questions == nil {
			questions = []domain.Question{}
		}
	}

	room, err := h.registry.CreateRoom(r.Context(), req.Subject, req.Title, questions, req.CreatorSessionID)
	if errors.Is(err, domain.ErrInvalidQuestions) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("create room failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not create room")
		return
	}

	log.Printf("room %s created (subject %q, %d questions)", room.ID(), req.Subject, len(questions))
	writeJSON(w, http.StatusCreated, createRoomResponse{RoomID: room.ID()})
}

func (h *RoomsHandler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.registry.GetRoom(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, room.Summary())
}

func (h *RoomsHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	creator := r.URL.Query().Get("creator")
	if creator == "" {
		writeError(w, http.StatusBadRequest, "creator query parameter required")
		return
	}
	writeJSON(w, http.StatusOK, h.registry.ListByCreator(creator))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
