// Command ingest rebuilds the policy vector collection from the policy
// source file. Run it whenever the policy text changes; the chat service
// picks the collection up at its next start.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/cmc-meeting/ai-service/internal/agent/model"
	"github.com/cmc-meeting/ai-service/internal/core"
	"github.com/cmc-meeting/ai-service/internal/policy"
	logx "github.com/cmc-meeting/ai-service/pkg/logger"
)

type IngestConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`
	APIKey      string `envconfig:"GEMINI_API_KEY" required:"true"`
	Policy      model.PolicyConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg IngestConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create gemini client")
	}
	embedder := policy.NewGeminiEmbedder(client, cfg.Policy.EmbedModel)

	raw, err := os.ReadFile(cfg.Policy.SourceFile)
	if err != nil {
		logx.Fatal().Str("file", cfg.Policy.SourceFile).Err(err).Msg("cannot read policy source")
	}

	chunks := splitParagraphs(string(raw))
	if len(chunks) == 0 {
		logx.Fatal().Str("file", cfg.Policy.SourceFile).Msg("policy source contains no paragraphs")
	}
	logx.Info().Int("chunks", len(chunks)).Msg("chunked policy source")

	// The collection is rebuilt from scratch so re-ingesting after a
	// policy edit never leaves stale passages behind.
	collection := &policy.Collection{Name: cfg.Policy.Collection}
	for idx, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk, policy.TaskRetrievalDocument)
		if err != nil {
			logx.Warn().Int("chunk", idx).Err(err).Msg("embedding failed, skipping chunk")
			continue
		}
		collection.Add(policy.Document{
			ID:   fmt.Sprintf("policy_%04d", idx),
			Text: chunk,
			Metadata: map[string]any{
				"source":      cfg.Policy.SourceFile,
				"chunk_index": idx,
				"char_length": len(chunk),
			},
			Embedding: vec,
		})
		logx.Debug().Int("chunk", idx).Int("chars", len(chunk)).Msg("embedded chunk")
	}

	if len(collection.Documents) == 0 {
		logx.Fatal().Msg("no chunks could be embedded, collection not written")
	}
	if err := collection.Save(cfg.Policy.StoreDir); err != nil {
		logx.Fatal().Err(err).Msg("failed to write collection")
	}

	logx.Info().
		Int("documents", len(collection.Documents)).
		Str("collection", cfg.Policy.Collection).
		Str("dir", cfg.Policy.StoreDir).
		Msg("policy ingestion complete")
}

// splitParagraphs chunks the source by blank-line-delimited paragraphs,
// which preserves meaning better than fixed-size character windows.
func splitParagraphs(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	parts := strings.Split(raw, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
