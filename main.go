package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/genai"

	"github.com/cmc-meeting/ai-service/internal/agent"
	"github.com/cmc-meeting/ai-service/internal/agent/model"
	"github.com/cmc-meeting/ai-service/internal/agent/session"
	"github.com/cmc-meeting/ai-service/internal/agent/tools"
	"github.com/cmc-meeting/ai-service/internal/backend"
	"github.com/cmc-meeting/ai-service/internal/core"
	"github.com/cmc-meeting/ai-service/internal/policy"
	"github.com/cmc-meeting/ai-service/internal/server"
	logx "github.com/cmc-meeting/ai-service/pkg/logger"
	pkgredis "github.com/cmc-meeting/ai-service/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs). The only
// fatal startup conditions are an invalid config value and a missing
// GEMINI_API_KEY; every runtime dependency degrades gracefully.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Service configs
	Chat         model.ChatModelConfig
	Conversation model.ConversationConfig
	Backend      model.BackendConfig
	Policy       model.PolicyConfig
	Server       model.ServerConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	// Redis is best-effort: without it every turn starts a fresh
	// conversation but the service stays up.
	var rdb goredis.Cmdable
	if client, err := cfg.Redis.New(); err != nil {
		logx.Error().Err(err).Msg("redis unavailable, conversation history disabled")
	} else {
		defer client.Close()
		rdb = client
		logx.Info().Msg("connected to redis")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	genaiClient, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create gemini client")
	}

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", cfg.Conversation.TTL).Err(err).Msg("invalid CONVERSATION_TTL")
	}
	sessions := session.NewStore(rdb, cfg.Conversation.HistoryLimit, ttl)

	// Policy search degrades to a null retriever when no ingested
	// collection exists yet.
	collection, err := policy.LoadCollection(cfg.Policy.StoreDir, cfg.Policy.Collection)
	if err != nil {
		logx.Warn().Err(err).Msg("policy collection unavailable, policy search disabled")
		collection = nil
	}
	retriever := policy.NewRetriever(collection,
		policy.NewGeminiEmbedder(genaiClient, cfg.Policy.EmbedModel), cfg.Policy.TopK)

	registry := tools.NewRegistry(backend.NewClient(cfg.Backend), retriever)
	chatModel := agent.NewGeminiModel(genaiClient, cfg.Chat, tools.Declarations())
	bot := agent.New(chatModel, registry, sessions, cfg.Conversation)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logx.Info().Str("addr", addr).Msg("chat service listening")
	if err := http.ListenAndServe(addr, server.New(bot).Handler()); err != nil {
		logx.Fatal().Err(err).Msg("http server stopped")
	}
}
