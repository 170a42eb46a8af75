package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmc-meeting/ai-service/internal/agent/model"
	errx "github.com/cmc-meeting/ai-service/internal/core/error"
	logx "github.com/cmc-meeting/ai-service/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Store caches conversation history per session token. A failure of the
// underlying Redis never fails the conversational turn: Load degrades to an
// empty history and Save becomes a no-op. The store may be constructed with
// a nil client when Redis was unreachable at startup.
type Store struct {
	rdb   redis.Cmdable
	limit int
	ttl   time.Duration
}

func NewStore(rdb redis.Cmdable, limit int, ttl time.Duration) *Store {
	return &Store{rdb: rdb, limit: limit, ttl: ttl}
}

func (s *Store) historyKey(token string) string {
	return fmt.Sprintf("chat_history:%s", token)
}

// Load returns the stored history for the token, oldest first. Missing key,
// corrupt payload and Redis errors all yield an empty history.
func (s *Store) Load(ctx context.Context, token string) []model.Turn {
	if s.rdb == nil {
		return nil
	}
	key := s.historyKey(token)

	data, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("failed to load chat history")
		}
		return nil
	}

	var turns []model.Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("corrupt chat history, starting fresh")
		return nil
	}

	// Skip entries without text so a fresh model context only ever sees
	// plain conversation turns.
	out := turns[:0]
	for _, t := range turns {
		if t.Text != "" {
			out = append(out, t)
		}
	}
	return out
}

// Save appends the user and model turns for a completed round, truncates to
// the most recent limit entries and resets the TTL. Write failures are
// swallowed; the session simply loses continuity.
func (s *Store) Save(ctx context.Context, token, userText, modelText string) {
	if s.rdb == nil {
		return
	}
	key := s.historyKey(token)

	turns := s.Load(ctx, token)
	turns = append(turns,
		model.Turn{Role: model.RoleUser, Text: userText},
		model.Turn{Role: model.RoleModel, Text: modelText},
	)
	if s.limit > 0 && len(turns) > s.limit {
		turns = turns[len(turns)-s.limit:]
	}

	b, err := json.Marshal(turns)
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to marshal chat history")
		return
	}

	if err := s.rdb.Set(ctx, key, b, s.ttl).Err(); err != nil {
		logx.Warn().Err(errx.WrapRedis(err)).Str("key", key).Msg("failed to save chat history")
	}
}
