package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/prompts"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// DefaultTopK is the number of knowledge chunks retrieved per question.
const DefaultTopK = 3

// Answerer answers free-text questions from the knowledge index.
type Answerer struct {
	embedder model.Embedder
	index    model.RetrievalIndex
	llm      model.Generator
	topK     int
}

func NewAnswerer(embedder model.Embedder, index model.RetrievalIndex, llm model.Generator, topK int) *Answerer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Answerer{embedder: embedder, index: index, llm: llm, topK: topK}
}

// Answer embeds the question, retrieves the nearest chunks and asks the model
// to answer from that context only.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("empty question")
	}
	vec, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return "", err
	}
	if len(vec) == 0 {
		return "", errx.WrapEmbedding(errx.ErrNoEmbedding)
	}
	hits, err := a.index.Search(ctx, vec, a.topK)
	if err != nil {
		return "", errx.WrapRetrieval(err)
	}

	chunks := make([]string, 0, len(hits))
	for _, h := range hits {
		if c, ok := a.index.Chunk(h.ChunkIndex); ok {
			chunks = append(chunks, c)
		}
	}
	contextText := strings.Join(chunks, "\n")
	logx.Debug().Str("component", "answerer").Int("chunks", len(chunks)).Msg("retrieved context")

	msgs, err := prompts.RenderAnswer(ctx, contextText, question)
	if err != nil {
		return "", err
	}
	out, err := a.llm.Generate(ctx, msgs)
	if err != nil {
		return "", errx.WrapLLM(err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", errx.WrapLLM(fmt.Errorf("empty answer"))
	}
	return strings.TrimSpace(out.Content), nil
}

// Answer treats the turn's transcript as a knowledge question. Any failure is
// answered with a fixed apology instead of failing the turn.
func (e *Engine) Answer(ctx context.Context, ev *model.HookEvent) (*model.HookResponse, error) {
	attrs := ev.Attributes()
	if e.answerer == nil {
		logx.Warn().Str("component", "answerer").Msg("no knowledge index configured")
		return closeDialog(ev, attrs, model.StateFulfilled, msgLookupFailed), nil
	}
	answer, err := e.answerer.Answer(ctx, ev.InputTranscript)
	if err != nil {
		logx.Error().Err(err).Str("component", "answerer").Str("session_id", ev.SessionID).Msg("question answering failed")
		return closeDialog(ev, attrs, model.StateFulfilled, msgLookupFailed), nil
	}
	return closeDialog(ev, attrs, model.StateFulfilled, answer), nil
}
