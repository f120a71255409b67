package dialog

import (
	"context"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/parsers"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/prompts"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// Classifier labels utterances the host could not route itself.
type Classifier struct {
	llm model.Generator
}

func NewClassifier(llm model.Generator) *Classifier {
	return &Classifier{llm: llm}
}

// Classify never fails: any error or unexpected answer is UNSURE.
func (c *Classifier) Classify(ctx context.Context, utterance string) model.UserIntent {
	log := logx.Component("classifier")
	if strings.TrimSpace(utterance) == "" {
		return model.UserIntentUnsure
	}
	msgs, err := prompts.RenderClassifier(ctx, utterance)
	if err != nil {
		log.Error().Err(err).Msg("render classifier prompt")
		return model.UserIntentUnsure
	}
	out, err := c.llm.Generate(ctx, msgs, einomodel.WithTemperature(0))
	if err != nil || out == nil {
		log.Warn().Err(err).Msg("classification call failed")
		return model.UserIntentUnsure
	}
	label := parsers.ParseIntentLabel(out.Content)
	log.Debug().Str("utterance", utterance).Str("label", string(label)).Msg("utterance classified")
	return label
}

// Classify labels the utterance, or UNSURE when no classifier is configured.
func (e *Engine) Classify(ctx context.Context, utterance string) model.UserIntent {
	if e.classifier == nil {
		return model.UserIntentUnsure
	}
	return e.classifier.Classify(ctx, utterance)
}
