package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/cmc-meeting/ai-service/internal/agent/model"
	"github.com/cmc-meeting/ai-service/internal/agent/session"
	"github.com/cmc-meeting/ai-service/internal/agent/tools"
	errx "github.com/cmc-meeting/ai-service/internal/core/error"
	logx "github.com/cmc-meeting/ai-service/pkg/logger"
	"google.golang.org/genai"
)

// Fixed user-facing sentences for the two non-recoverable loop outcomes.
const (
	// BusyMessage is returned when the very first model request of a turn
	// fails; the caller is expected to retry manually.
	BusyMessage = "The AI service is busy. Please try again later."
	// LimitMessage is the hard circuit breaker against model/tool
	// ping-pong that never converges on a text answer.
	LimitMessage = "I'm having trouble completing this request. Please try again with more specific details."
)

// Agent drives a bounded number of model-request/tool-execution rounds per
// user turn. Each call to Chat is independent; the only state shared across
// requests lives in the session store.
type Agent struct {
	chatModel ModelClient
	registry  *tools.Registry
	sessions  *session.Store
	maxTurns  int
	now       func() time.Time
}

func New(chatModel ModelClient, registry *tools.Registry, sessions *session.Store, cfg model.ConversationConfig) *Agent {
	return &Agent{
		chatModel: chatModel,
		registry:  registry,
		sessions:  sessions,
		maxTurns:  cfg.MaxTurns,
		now:       time.Now,
	}
}

// Chat runs one full user turn and returns the model's final text. Tool
// failures never abort the turn; they are fed back into the model as error
// values. Mid-loop transport failures propagate to the caller's generic
// error path.
func (a *Agent) Chat(ctx context.Context, token, userMessage string) (string, error) {
	history := historyContents(a.sessions.Load(ctx, token))

	chat, err := a.chatModel.StartChat(ctx, history)
	if err != nil {
		logx.Error().Err(err).Msg("failed to start chat session")
		return BusyMessage, nil
	}

	prompt := systemPreamble(a.now()) + "\nUser: " + userMessage
	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		logx.Error().Err(err).Msg("initial model request failed")
		return BusyMessage, nil
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		call := firstFunctionCall(resp)
		if call == nil {
			reply := resp.Text()
			a.sessions.Save(ctx, token, userMessage, reply)
			return reply, nil
		}

		result := a.execute(ctx, token, call)

		resp, err = chat.SendMessage(ctx, genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				Name:     call.Name,
				Response: map[string]any{"result": result},
			},
		})
		if err != nil {
			return "", errx.WrapModel(err)
		}
	}

	logx.Warn().Int("max_turns", a.maxTurns).Msg("tool loop hit the turn limit")
	return LimitMessage, nil
}

// firstFunctionCall inspects only the first content part of the first
// candidate; further parts are never consulted. A response with no usable
// parts counts as final text.
func firstFunctionCall(resp *genai.GenerateContentResponse) *genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return nil
	}
	return content.Parts[0].FunctionCall
}

// execute resolves, coerces and invokes one tool call. A panicking handler
// is converted into an error result, as defense in depth beyond the backend
// client's own error catching.
func (a *Agent) execute(ctx context.Context, token string, call *genai.FunctionCall) (result any) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("tool", call.Name).Interface("panic", r).Msg("tool handler panicked")
			result = map[string]any{"error": fmt.Sprint(r)}
		}
	}()

	handler, ok := a.registry.Resolve(call.Name)
	if !ok {
		logx.Warn().Str("tool", call.Name).Msg("model requested an unknown tool")
		return map[string]any{"error": fmt.Sprintf("Tool %s is not implemented.", call.Name)}
	}

	args, err := tools.Coerce(call.Args, token)
	if err != nil {
		logx.Warn().Str("tool", call.Name).Err(err).Msg("rejected malformed tool arguments")
		return map[string]any{"error": err.Error()}
	}

	logx.Info().Str("tool", call.Name).Interface("args", call.Args).Msg("executing tool call")
	return handler(ctx, args)
}

// historyContents replays only stored text turns into a fresh model
// context.
func historyContents(turns []model.Turn) []*genai.Content {
	if len(turns) == 0 {
		return nil
	}
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
	}
	return out
}
