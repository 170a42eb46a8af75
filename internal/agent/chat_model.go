package agent

import (
	"context"

	"github.com/cmc-meeting/ai-service/internal/agent/model"
	"google.golang.org/genai"
)

// ChatSession is one in-flight model conversation.
type ChatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// ModelClient starts chat sessions seeded with prior history. It exists as
// a seam between the loop and the hosted model: the production
// implementation wraps the process-wide genai client, tests script it.
type ModelClient interface {
	StartChat(ctx context.Context, history []*genai.Content) (ChatSession, error)
}

type geminiModel struct {
	client       *genai.Client
	model        string
	temperature  float32
	declarations []*genai.FunctionDeclaration
}

// NewGeminiModel wraps the shared genai client with the chat model and tool
// manifest every session is bound to.
func NewGeminiModel(client *genai.Client, cfg model.ChatModelConfig, declarations []*genai.FunctionDeclaration) ModelClient {
	return &geminiModel{
		client:       client,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		declarations: declarations,
	}
}

func (m *geminiModel) StartChat(ctx context.Context, history []*genai.Content) (ChatSession, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(m.temperature),
		Tools: []*genai.Tool{
			{FunctionDeclarations: m.declarations},
		},
	}
	return m.client.Chats.Create(ctx, m.model, cfg, history)
}
