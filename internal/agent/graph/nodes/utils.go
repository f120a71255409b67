package nodes

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// meteredGenerator prices every completion and adds it to the turn state
// when called inside a graph run.
type meteredGenerator struct {
	inner     model.Generator
	modelName string
}

// NewMeteredGenerator wraps a completion model with usage cost accounting.
func NewMeteredGenerator(inner model.Generator, modelName string) model.Generator {
	return &meteredGenerator{inner: inner, modelName: modelName}
}

func (m *meteredGenerator) Generate(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	out, err := m.inner.Generate(ctx, in, opts...)
	if err != nil {
		logx.Warn().Err(err).Str("component", "llm").Str("model", m.modelName).Msg("completion failed")
		return nil, err
	}
	recordUsage(ctx, m.modelName, out)
	return out, nil
}

// recordUsage logs and accumulates the cost of one completion. Outside a
// graph run there is no turn state and only the log and metric are written.
func recordUsage(ctx context.Context, modelName string, out *schema.Message) {
	if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	cost := model.ComputeCost(modelName, out.ResponseMeta.Usage)
	metrics.LLMCostUSD.WithLabelValues(modelName).Add(cost.TotalUSD)

	var sessionID string
	_ = compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
		state.LLMCalls++
		state.CostUSD += cost.TotalUSD
		sessionID = state.SessionID
		return nil
	})

	logx.Debug().
		Str("session_id", sessionID).
		Str("model", modelName).
		Int("prompt_tokens", cost.PromptTokens).
		Int("completion_tokens", cost.CompletionTokens).
		Int("total_tokens", cost.TotalTokens).
		Float64("input_cost_usd", cost.InputUSD).
		Float64("output_cost_usd", cost.OutputUSD).
		Float64("total_cost_usd", cost.TotalUSD).
		Msg("LLM usage")
}
