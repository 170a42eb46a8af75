package policy

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// Document is one embedded policy chunk.
type Document struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding"`
}

// Collection is a small persistent vector collection: all documents live in
// one JSON file under the store directory and queries are brute-force
// cosine similarity. The policy corpus is a handful of paragraphs, which
// keeps this well inside what a linear scan can serve.
type Collection struct {
	Name      string     `json:"name"`
	Documents []Document `json:"documents"`
}

func collectionPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// LoadCollection reads a previously ingested collection from disk.
func LoadCollection(dir, name string) (*Collection, error) {
	b, err := os.ReadFile(collectionPath(dir, name))
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", name, err)
	}
	var c Collection
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", name, err)
	}
	return &c, nil
}

// Save writes the collection back to its store directory, creating the
// directory when needed.
func (c *Collection) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", c.Name, err)
	}
	if err := os.WriteFile(collectionPath(dir, c.Name), b, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", c.Name, err)
	}
	return nil
}

// Add appends a document to the collection.
func (c *Collection) Add(doc Document) {
	c.Documents = append(c.Documents, doc)
}

// Query returns the k documents closest to the query vector by cosine
// similarity, best match first.
func (c *Collection) Query(vec []float32, k int) []Document {
	type scored struct {
		doc   Document
		score float64
	}

	ranked := make([]scored, 0, len(c.Documents))
	for _, d := range c.Documents {
		ranked = append(ranked, scored{doc: d, score: cosine(vec, d.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Document, 0, k)
	for _, s := range ranked[:k] {
		out = append(out, s.doc)
	}
	return out
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return -1
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
