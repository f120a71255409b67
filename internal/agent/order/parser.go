package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/parsers"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/prompts"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// Parser turns free text into structured requests through the completion model.
type Parser struct {
	llm model.Generator
}

func NewParser(llm model.Generator) *Parser {
	return &Parser{llm: llm}
}

// ParseOrderText decomposes an utterance into item requests. A failed model
// call or a malformed response yields an empty list; callers treat that as
// "nothing recognized" rather than as a failure.
func (p *Parser) ParseOrderText(ctx context.Context, text string) []model.LineRequest {
	log := logx.Component("order_parser")

	msgs, err := prompts.RenderOrderParser(ctx, text)
	if err != nil {
		log.Error().Err(err).Msg("render order prompt")
		return nil
	}
	out, err := p.llm.Generate(ctx, msgs)
	if err != nil {
		log.Error().Err(err).Msg("order extraction call failed")
		return nil
	}
	if out == nil {
		log.Warn().Msg("order extraction returned no message")
		return nil
	}

	parsed, err := parsers.DecodeOrder(out.Content)
	if err != nil {
		var m *parsers.MalformedError
		if errors.As(err, &m) {
			log.Warn().Str("reason", m.Reason).Str("snippet", m.Snippet).Msg("order extraction response malformed")
		} else {
			log.Error().Err(err).Msg("decode order response")
		}
		return nil
	}
	log.Debug().Int("items", len(parsed.Items)).Msg("order text parsed")
	return parsed.Items
}

// ParseChanges extracts add/remove/update edits for an unconfirmed order.
// Unlike order parsing, a failed call or malformed response is an error so the
// caller can ask the customer to rephrase.
func (p *Parser) ParseChanges(ctx context.Context, doc *model.OrderDocument, request string) ([]model.OrderChange, error) {
	msgs, err := prompts.RenderModification(ctx, doc, request)
	if err != nil {
		return nil, err
	}
	out, err := p.llm.Generate(ctx, msgs)
	if err != nil {
		return nil, errx.WrapLLM(err)
	}
	if out == nil {
		return nil, errx.WrapLLM(fmt.Errorf("empty modification response"))
	}
	changes, err := parsers.DecodeChanges(out.Content)
	if err != nil {
		return nil, err
	}
	logx.Debug().Str("component", "order_parser").Int("changes", len(changes)).Msg("modification parsed")
	return changes, nil
}
