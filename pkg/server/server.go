package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/usecase/chat"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/utils/logging"
)

// Server exposes the conversation pipeline over HTTP
type Server struct {
	session *chat.Session
}

// New creates an HTTP server around a chat session
func New(session *chat.Session) *Server {
	return &Server{session: session}
}

// Handler builds the route tree
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/chat", s.handleChat)

	return r
}

type chatRequest struct {
	UserID  string          `json:"user_id"`
	Message string          `json:"message"`
	History []model.Message `json:"conversation_history,omitempty"`
}

type chatResponse struct {
	Response  string           `json:"response"`
	UserID    string           `json:"user_id"`
	Intent    string           `json:"intent,omitempty"`
	MemoryIDs []model.MemoryID `json:"memory_ids"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}
	if req.Message == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	output, err := s.session.Send(ctx, chat.SendInput{
		UserID:  req.UserID,
		Message: req.Message,
		History: req.History,
	})
	if err != nil {
		logging.From(ctx).Error("chat turn failed", "user_id", req.UserID, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to process chat"})
		return
	}

	ids := output.MemoryIDs
	if ids == nil {
		ids = []model.MemoryID{}
	}

	respondJSON(w, http.StatusOK, chatResponse{
		Response:  output.Response,
		UserID:    req.UserID,
		Intent:    output.Intent,
		MemoryIDs: ids,
	})
}

func respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Warn("failed to encode response", "error", err)
	}
}
