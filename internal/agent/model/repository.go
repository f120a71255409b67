package model

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// CatalogStore performs a bulk read of every menu item.
type CatalogStore interface {
	LoadCatalog(ctx context.Context) ([]CatalogRecord, error)
}

// CatalogWriter stores precomputed item embeddings back into the catalog.
type CatalogWriter interface {
	SaveEmbedding(ctx context.Context, itemNumber int, name string, vector []float32) error
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator is the completion black box. *gemini.ChatModel satisfies it.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// SearchHit is one ranked result from the knowledge index.
type SearchHit struct {
	ChunkIndex int
	Distance   float64
}

// RetrievalIndex searches a precomputed text-chunk corpus.
type RetrievalIndex interface {
	Search(ctx context.Context, vector []float32, k int) ([]SearchHit, error)
	Chunk(i int) (string, bool)
}

// OrderSink receives confirmed orders.
type OrderSink interface {
	Submit(ctx context.Context, sessionID string, doc OrderDocument) error
}
