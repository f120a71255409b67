package prompts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
)

var (
	//go:embed template/modification.txt
	modificationPrompt string

	//go:embed template/classifier.txt
	classifierPrompt string

	//go:embed template/answer.txt
	answerPrompt string
)

// RenderModification renders the change-extraction prompt for an unconfirmed order.
func RenderModification(ctx context.Context, doc *model.OrderDocument, request string) ([]*schema.Message, error) {
	items := []model.OrderLineItem{}
	if doc != nil && doc.Items != nil {
		items = doc.Items
	}
	current, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("modification prompt: encode order: %w", err)
	}
	return renderUser(ctx, "modification", modificationPrompt, map[string]any{
		"CurrentOrder": string(current),
		"Request":      request,
	})
}

// RenderClassifier renders the one-word intent classification prompt.
func RenderClassifier(ctx context.Context, utterance string) ([]*schema.Message, error) {
	return renderUser(ctx, "classifier", classifierPrompt, map[string]any{"Utterance": utterance})
}

// RenderAnswer renders the grounded question-answering prompt.
func RenderAnswer(ctx context.Context, contextText, question string) ([]*schema.Message, error) {
	return renderUser(ctx, "answer", answerPrompt, map[string]any{
		"Context":  contextText,
		"Question": question,
	})
}

// renderUser formats a single user-message template through the Eino prompt
// component so prompt callbacks fire.
func renderUser(ctx context.Context, name, text string, vars map[string]any) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(schema.GoTemplate, schema.UserMessage(text))
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("%s prompt render: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("%s prompt render: empty result", name)
	}
	return msgs, nil
}
