package retrieval

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
)

// Index is a flat, exhaustively searched vector index over text chunks.
// Vectors[i] is the embedding of Chunks[i].
type Index struct {
	Dimension int         `json:"dimension"`
	Chunks    []string    `json:"chunks"`
	Vectors   [][]float32 `json:"vectors"`
}

var _ model.RetrievalIndex = (*Index)(nil)

// NewIndex validates that chunks and vectors line up and share one dimension.
func NewIndex(chunks []string, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("index has %d chunks but %d vectors", len(chunks), len(vectors))
	}
	idx := &Index{Chunks: chunks, Vectors: vectors}
	if len(vectors) > 0 {
		idx.Dimension = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != idx.Dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), idx.Dimension)
		}
	}
	return idx, nil
}

// Load reads an index file written by Save.
func Load(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", path, err)
	}
	return NewIndex(idx.Chunks, idx.Vectors)
}

// Save writes the index as JSON.
func (x *Index) Save(path string) error {
	raw, err := json.Marshal(x)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Search returns the k chunks nearest to vector by squared L2 distance,
// closest first. Equal distances keep chunk order.
func (x *Index) Search(ctx context.Context, vector []float32, k int) ([]model.SearchHit, error) {
	if len(vector) != x.Dimension {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(vector), x.Dimension)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, len(x.Vectors))
	for i, v := range x.Vectors {
		hits[i] = model.SearchHit{ChunkIndex: i, Distance: squaredL2(vector, v)}
	}
	slices.SortStableFunc(hits, func(a, b model.SearchHit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if k < len(hits) {
		hits = hits[:max(k, 0)]
	}
	return hits, nil
}

// Chunk returns the text of chunk i.
func (x *Index) Chunk(i int) (string, bool) {
	if i < 0 || i >= len(x.Chunks) {
		return "", false
	}
	return x.Chunks[i], true
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
