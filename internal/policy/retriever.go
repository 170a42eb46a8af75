package policy

import (
	"context"
	"fmt"
	"strings"

	logx "github.com/cmc-meeting/ai-service/pkg/logger"
)

// Fixed sentences the model can relay verbatim.
const (
	UnavailableMessage = "Policy search service is unavailable."
	NotFoundMessage    = "No relevant policy found."
)

const passageSeparator = "\n---\n"

// Retriever answers policy questions from the pre-embedded collection. It
// never returns an error: a retriever whose collection failed to load at
// startup acts as a null object that reports unavailability.
type Retriever struct {
	collection *Collection
	embedder   Embedder
	topK       int
}

func NewRetriever(collection *Collection, embedder Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = 2
	}
	return &Retriever{collection: collection, embedder: embedder, topK: topK}
}

// Search embeds the query and returns the best-matching passages as free
// text framed for direct inclusion in model context.
func (r *Retriever) Search(ctx context.Context, query string) string {
	if r.collection == nil || r.embedder == nil {
		return UnavailableMessage
	}

	vec, err := r.embedder.Embed(ctx, query, TaskRetrievalQuery)
	if err != nil {
		logx.Warn().Err(err).Msg("policy query embedding failed")
		return fmt.Sprintf("Error searching policy: %v", err)
	}

	docs := r.collection.Query(vec, r.topK)
	if len(docs) == 0 {
		return NotFoundMessage
	}

	passages := make([]string, 0, len(docs))
	for _, d := range docs {
		passages = append(passages, d.Text)
	}
	return "Relevant policy documents:\n" + strings.Join(passages, passageSeparator)
}
