package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmc-meeting/ai-service/internal/agent/model"
	"github.com/cmc-meeting/ai-service/internal/agent/session"
	"github.com/cmc-meeting/ai-service/internal/agent/tools"
	"github.com/cmc-meeting/ai-service/internal/backend"
	"github.com/cmc-meeting/ai-service/internal/policy"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// ================ Scripted model ================

type scriptStep struct {
	resp *genai.GenerateContentResponse
	err  error
}

// scriptedChat replays a fixed sequence of model responses and records
// every batch of parts it was sent.
type scriptedChat struct {
	script []scriptStep
	sent   [][]genai.Part
}

func (c *scriptedChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	c.sent = append(c.sent, parts)
	if len(c.script) == 0 {
		return nil, errors.New("script exhausted")
	}
	step := c.script[0]
	c.script = c.script[1:]
	return step.resp, step.err
}

type scriptedModel struct {
	chat     *scriptedChat
	history  []*genai.Content
	startErr error
}

func (m *scriptedModel) StartChat(ctx context.Context, history []*genai.Content) (ChatSession, error) {
	m.history = history
	if m.startErr != nil {
		return nil, m.startErr
	}
	return m.chat, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func toolCallResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{Name: name, Args: args}},
			}}},
		},
	}
}

// functionResult unwraps the {"result": ...} envelope from a recorded
// function-response part.
func functionResult(t *testing.T, parts []genai.Part) (string, any) {
	t.Helper()
	require.Len(t, parts, 1)
	fr := parts[0].FunctionResponse
	require.NotNil(t, fr)
	return fr.Name, fr.Response["result"]
}

func newTestAgent(chat *scriptedChat, maxTurns int, backendURL string) (*Agent, *scriptedModel) {
	api := backend.NewClient(model.BackendConfig{URL: backendURL, Timeout: 2})
	registry := tools.NewRegistry(api, policy.NewRetriever(nil, nil, 2))
	sessions := session.NewStore(nil, 20, time.Minute)
	m := &scriptedModel{chat: chat}
	a := New(m, registry, sessions, model.ConversationConfig{MaxTurns: maxTurns, HistoryLimit: 20})
	return a, m
}

// ================ Tests ================

func TestChatReturnsFinalTextWithoutTools(t *testing.T) {
	chat := &scriptedChat{script: []scriptStep{{resp: textResponse("Hello! How can I help?")}}}
	a, _ := newTestAgent(chat, 8, "http://localhost:1")

	reply, err := a.Chat(context.Background(), "tok", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", reply)
	assert.Len(t, chat.sent, 1)
}

func TestChatFirstMessageCarriesPreambleAndUserText(t *testing.T) {
	chat := &scriptedChat{script: []scriptStep{{resp: textResponse("ok")}}}
	a, _ := newTestAgent(chat, 8, "http://localhost:1")

	_, err := a.Chat(context.Background(), "tok", "book a room tomorrow")
	require.NoError(t, err)

	first := chat.sent[0]
	require.Len(t, first, 1)
	assert.Contains(t, first[0].Text, "Today's date:")
	assert.Contains(t, first[0].Text, "User: book a room tomorrow")
}

func TestChatCancelSeriesScenario(t *testing.T) {
	// The model looks up a meeting to find its series id, cancels the
	// whole series, then confirms in text. Both rounds must execute in
	// order and only the final confirmation comes back to the caller.
	var deletedSeries string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/meetings/5":
			json.NewEncoder(w).Encode(map[string]any{"id": 5, "seriesId": "series-9", "title": "Weekly sync"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/meetings/series/series-9":
			deletedSeries = r.URL.Path
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	chat := &scriptedChat{script: []scriptStep{
		{resp: toolCallResponse("get_meeting_details", map[string]any{"meeting_id": float64(5)})},
		{resp: toolCallResponse("cancel_meeting_series", map[string]any{"series_id": "series-9", "reason": "room Mars is closing"})},
		{resp: textResponse("The whole recurring series has been cancelled.")},
	}}
	a, _ := newTestAgent(chat, 8, ts.URL)

	reply, err := a.Chat(context.Background(), "tok", "cancel the whole recurring series for room Mars")
	require.NoError(t, err)
	assert.Equal(t, "The whole recurring series has been cancelled.", reply)
	assert.Equal(t, "/api/v1/meetings/series/series-9", deletedSeries)

	require.Len(t, chat.sent, 3)
	name, result := functionResult(t, chat.sent[1])
	assert.Equal(t, "get_meeting_details", name)
	details, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "series-9", details["seriesId"])

	name, result = functionResult(t, chat.sent[2])
	assert.Equal(t, "cancel_meeting_series", name)
	cancelled, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, cancelled["success"])
}

func TestChatUnknownToolBecomesErrorResult(t *testing.T) {
	backendCalls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCalls++
	}))
	defer ts.Close()

	chat := &scriptedChat{script: []scriptStep{
		{resp: toolCallResponse("launch_rocket", map[string]any{"target": "mars"})},
		{resp: textResponse("Sorry, I cannot do that.")},
	}}
	a, _ := newTestAgent(chat, 8, ts.URL)

	reply, err := a.Chat(context.Background(), "tok", "launch a rocket")
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I cannot do that.", reply)
	assert.Zero(t, backendCalls)

	name, result := functionResult(t, chat.sent[1])
	assert.Equal(t, "launch_rocket", name)
	errMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Tool launch_rocket is not implemented.", errMap["error"])
}

func TestChatMalformedIdListBecomesErrorResult(t *testing.T) {
	// A participant list the coercion table cannot read must never reach
	// the backend as an empty invite list; the model gets the error back
	// and asks for real ids instead.
	backendCalls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCalls++
	}))
	defer ts.Close()

	chat := &scriptedChat{script: []scriptStep{
		{resp: toolCallResponse("create_meeting", map[string]any{
			"title":           "standup",
			"start_time":      "2026-09-01T09:00:00",
			"end_time":        "2026-09-01T09:30:00",
			"participant_ids": []any{"An", "Binh"},
		})},
		{resp: textResponse("Could you give me the participant ids as numbers?")},
	}}
	a, _ := newTestAgent(chat, 8, ts.URL)

	reply, err := a.Chat(context.Background(), "tok", "book standup with An and Binh")
	require.NoError(t, err)
	assert.Equal(t, "Could you give me the participant ids as numbers?", reply)
	assert.Zero(t, backendCalls)

	name, result := functionResult(t, chat.sent[1])
	assert.Equal(t, "create_meeting", name)
	errMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errMap["error"], "participant_ids")
}

func TestChatBackendErrorFeedsBackAndLoopContinues(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "room is double booked", http.StatusInternalServerError)
	}))
	defer ts.Close()

	chat := &scriptedChat{script: []scriptStep{
		{resp: toolCallResponse("create_meeting", map[string]any{
			"title":      "standup",
			"start_time": "2026-09-01T09:00:00",
			"end_time":   "2026-09-01T09:30:00",
			"room_id":    float64(3),
		})},
		{resp: textResponse("That room is double booked, try another slot?")},
	}}
	a, _ := newTestAgent(chat, 8, ts.URL)

	reply, err := a.Chat(context.Background(), "tok", "book standup")
	require.NoError(t, err)
	assert.Equal(t, "That room is double booked, try another slot?", reply)

	_, result := functionResult(t, chat.sent[1])
	errMap, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errMap["error"], "room is double booked")
}

func TestChatTurnLimit(t *testing.T) {
	// A model that never stops calling tools: with max 3 turns the loop
	// must send the initial request plus exactly 3 function responses.
	chat := &scriptedChat{script: []scriptStep{
		{resp: toolCallResponse("get_rooms", map[string]any{})},
		{resp: toolCallResponse("get_rooms", map[string]any{})},
		{resp: toolCallResponse("get_rooms", map[string]any{})},
		{resp: toolCallResponse("get_rooms", map[string]any{})},
		{resp: toolCallResponse("get_rooms", map[string]any{})},
	}}
	a, _ := newTestAgent(chat, 3, "http://localhost:1")

	reply, err := a.Chat(context.Background(), "tok", "list rooms forever")
	require.NoError(t, err)
	assert.Equal(t, LimitMessage, reply)
	assert.Len(t, chat.sent, 4)
}

func TestChatFirstSendFailureReturnsBusyMessage(t *testing.T) {
	chat := &scriptedChat{script: []scriptStep{{err: errors.New("503 service unavailable")}}}
	a, _ := newTestAgent(chat, 8, "http://localhost:1")

	reply, err := a.Chat(context.Background(), "tok", "hi")
	require.NoError(t, err)
	assert.Equal(t, BusyMessage, reply)
}

func TestChatMidLoopFailurePropagates(t *testing.T) {
	chat := &scriptedChat{script: []scriptStep{
		{resp: toolCallResponse("get_rooms", map[string]any{})},
		{err: errors.New("connection reset")},
	}}
	a, _ := newTestAgent(chat, 8, "http://localhost:1")

	_, err := a.Chat(context.Background(), "tok", "list rooms")
	require.Error(t, err)
}

func TestChatReplaysStoredHistory(t *testing.T) {
	rdb := &historyRedis{data: map[string]string{
		"chat_history:tok": `[{"role":"user","text":"hi"},{"role":"model","text":"hello"}]`,
	}}
	sessions := session.NewStore(rdb, 20, time.Minute)
	chat := &scriptedChat{script: []scriptStep{{resp: textResponse("again?")}}}
	m := &scriptedModel{chat: chat}
	api := backend.NewClient(model.BackendConfig{URL: "http://localhost:1", Timeout: 2})
	a := New(m, tools.NewRegistry(api, policy.NewRetriever(nil, nil, 2)), sessions,
		model.ConversationConfig{MaxTurns: 8, HistoryLimit: 20})

	_, err := a.Chat(context.Background(), "tok", "hi again")
	require.NoError(t, err)

	require.Len(t, m.history, 2)
	assert.Equal(t, "user", string(m.history[0].Role))
	assert.Equal(t, "hi", m.history[0].Parts[0].Text)
	assert.Equal(t, "model", string(m.history[1].Role))
}

func TestChatPersistsCompletedTurn(t *testing.T) {
	rdb := &historyRedis{data: map[string]string{}}
	sessions := session.NewStore(rdb, 20, time.Minute)
	chat := &scriptedChat{script: []scriptStep{{resp: textResponse("booked!")}}}
	api := backend.NewClient(model.BackendConfig{URL: "http://localhost:1", Timeout: 2})
	a := New(&scriptedModel{chat: chat}, tools.NewRegistry(api, policy.NewRetriever(nil, nil, 2)),
		sessions, model.ConversationConfig{MaxTurns: 8, HistoryLimit: 20})

	_, err := a.Chat(context.Background(), "tok", "book it")
	require.NoError(t, err)

	var turns []model.Turn
	require.NoError(t, json.Unmarshal([]byte(rdb.data["chat_history:tok"]), &turns))
	require.Len(t, turns, 2)
	assert.Equal(t, model.Turn{Role: model.RoleUser, Text: "book it"}, turns[0])
	assert.Equal(t, model.Turn{Role: model.RoleModel, Text: "booked!"}, turns[1])
}

// historyRedis is the minimal Get/Set fake the agent tests need.
type historyRedis struct {
	redis.Cmdable
	data map[string]string
}

func (f *historyRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *historyRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if b, ok := value.([]byte); ok {
		f.data[key] = string(b)
	}
	return redis.NewStatusResult("OK", nil)
}
