package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmc-meeting/ai-service/internal/agent"
	"github.com/cmc-meeting/ai-service/internal/agent/model"
	"github.com/cmc-meeting/ai-service/internal/agent/session"
	"github.com/cmc-meeting/ai-service/internal/agent/tools"
	"github.com/cmc-meeting/ai-service/internal/backend"
	"github.com/cmc-meeting/ai-service/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type echoChat struct{}

func (echoChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "Sure, I can help with that."}}}},
		},
	}, nil
}

type echoModel struct{}

func (echoModel) StartChat(ctx context.Context, history []*genai.Content) (agent.ChatSession, error) {
	return echoChat{}, nil
}

func newTestHandler() http.Handler {
	api := backend.NewClient(model.BackendConfig{URL: "http://localhost:1", Timeout: 1})
	registry := tools.NewRegistry(api, policy.NewRetriever(nil, nil, 2))
	sessions := session.NewStore(nil, 20, time.Minute)
	bot := agent.New(echoModel{}, registry, sessions, model.ConversationConfig{MaxTurns: 8, HistoryLimit: 20})
	return New(bot).Handler()
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AI service is running", body["status"])
}

func TestChatRequiresToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Token is missing", body["error"])
}

func TestChatReturnsReply(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sure, I can help with that.", body["reply"])
}

func TestChatRejectsBadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{oops"))
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUnknownPathIs404(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
