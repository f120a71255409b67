package embedding

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
)

// Task types understood by the Gemini embedding endpoint.
const (
	TaskQuery    = "RETRIEVAL_QUERY"
	TaskDocument = "RETRIEVAL_DOCUMENT"
)

const (
	// maxBatch is the number of texts sent in one EmbedContent call.
	maxBatch = 100
	// maxInflight bounds concurrent batch calls.
	maxInflight = 4
)

// GenAIEmbedder generates embeddings using Google's Gemini API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
	task   string
}

// NewGenAIEmbedder embeds with model on client. Use TaskQuery for customer
// phrases and questions, TaskDocument for catalog items and knowledge chunks.
func NewGenAIEmbedder(client *genai.Client, model, task string) *GenAIEmbedder {
	if model == "" {
		model = "gemini-embedding-001"
	}
	if task == "" {
		task = TaskQuery
	}
	return &GenAIEmbedder{client: client, model: model, task: task}
}

// Embed generates an embedding for a single text.
func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errx.WrapEmbedding(fmt.Errorf("empty text"))
	}
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in order, sending at most maxBatch texts per call.
func (e *GenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return inBatches(ctx, texts, maxBatch, maxInflight, e.embed)
}

func (e *GenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: e.task})
	if err != nil {
		return nil, errx.WrapEmbedding(err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, errx.WrapEmbedding(errx.ErrNoEmbedding)
	}

	out := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, errx.WrapEmbedding(errx.ErrNoEmbedding)
		}
		out[i] = emb.Values
	}
	return out, nil
}

// inBatches splits texts into batches of size, runs up to limit of them at
// once and reassembles the vectors in input order. The first error cancels
// the rest.
func inBatches(ctx context.Context, texts []string, size, limit int, fn func(context.Context, []string) ([][]float32, error)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, len(texts))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		eg.Go(func() error {
			vectors, err := fn(egCtx, texts[start:end])
			if err != nil {
				return err
			}
			if len(vectors) != end-start {
				return errx.WrapEmbedding(errx.ErrNoEmbedding)
			}
			copy(out[start:end], vectors)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
