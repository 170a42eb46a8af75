package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cmc-meeting/ai-service/internal/agent"
	errx "github.com/cmc-meeting/ai-service/internal/core/error"
	logx "github.com/cmc-meeting/ai-service/pkg/logger"
)

// Server exposes the chat endpoint and a health check.
type Server struct {
	agent *agent.Agent
}

func New(a *agent.Agent) *Server {
	return &Server{agent: a}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/api/chat", s.handleChat)
	return mux
}

type chatPayload struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "AI service is running"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token is missing"})
		return
	}
	token := strings.TrimPrefix(auth, "Bearer ")

	var payload chatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	reply, err := s.agent.Chat(r.Context(), token, payload.Message)
	if err != nil {
		status := http.StatusInternalServerError
		message := errx.SystemErrorMessage
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			status = appErr.Status
			message = appErr.Message
		}
		logx.Error().Err(err).Msg("chat turn failed")
		writeJSON(w, status, map[string]string{"error": message})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}
