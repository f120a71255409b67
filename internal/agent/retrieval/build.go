package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// BatchEmbedder embeds many texts at once, preserving order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// KnowledgeBase is the source document for the question-answering index.
type KnowledgeBase struct {
	RestaurantInfo json.RawMessage   `json:"restaurantInfo"`
	MenuItems      []json.RawMessage `json:"menuItems"`
}

// LoadKnowledgeBase reads a knowledge-base JSON file.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	var kb KnowledgeBase
	if err := json.Unmarshal(raw, &kb); err != nil {
		return nil, fmt.Errorf("decode knowledge base %s: %w", path, err)
	}
	if len(kb.RestaurantInfo) == 0 {
		return nil, fmt.Errorf("knowledge base %s has no restaurantInfo", path)
	}
	return &kb, nil
}

// Chunks renders one restaurant chunk followed by one chunk per menu item.
// Objects are compacted but keep their key order.
func (kb *KnowledgeBase) Chunks() ([]string, error) {
	chunks := make([]string, 0, 1+len(kb.MenuItems))
	info, err := compact(kb.RestaurantInfo)
	if err != nil {
		return nil, fmt.Errorf("restaurantInfo: %w", err)
	}
	chunks = append(chunks, "Restaurant Info: "+info)
	for i, item := range kb.MenuItems {
		text, err := compact(item)
		if err != nil {
			return nil, fmt.Errorf("menuItems[%d]: %w", i, err)
		}
		chunks = append(chunks, "Menu Item: "+text)
	}
	return chunks, nil
}

// Build chunks the knowledge base and embeds every chunk.
func Build(ctx context.Context, kb *KnowledgeBase, embedder BatchEmbedder) (*Index, error) {
	chunks, err := kb.Chunks()
	if err != nil {
		return nil, err
	}
	logx.Info().Str("component", "index_builder").Int("chunks", len(chunks)).Msg("embedding knowledge chunks")

	vectors, err := embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	return NewIndex(chunks, vectors)
}

func compact(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
