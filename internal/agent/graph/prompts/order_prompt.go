package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/order_parser.txt
var orderParserSystemPrompt string

type fewShot struct {
	user      string
	assistant string
}

// orderExamples pin the response contract, including variant wording kept in
// the item name and an explicitly supplied option.
var orderExamples = []fewShot{
	{
		user:      "I want two green dragon rolls and one nestea.",
		assistant: `{"order_items": [{"item_name": "green dragon roll", "quantity": 2}, {"item_name": "nestea", "quantity": 1}]}`,
	},
	{
		user:      "One Sashimi, Sushi & Maki Combo B and three seaweed salads.",
		assistant: `{"order_items": [{"item_name": "Sashimi, Sushi & Maki Combo", "quantity": 1, "options": {"Combo Choice": "B"}}, {"item_name": "Seaweed Salad", "quantity": 3}]}`,
	},
	{
		user:      "I'd like beef gyoza and a coke.",
		assistant: `{"order_items": [{"item_name": "beef gyoza", "quantity": 1}, {"item_name": "coke", "quantity": 1}]}`,
	},
}

// RenderOrderParser builds the order-extraction conversation: system
// instruction, fixed few-shot pairs, then the customer's utterance.
func RenderOrderParser(ctx context.Context, utterance string) ([]*schema.Message, error) {
	templates := make([]schema.MessagesTemplate, 0, len(orderExamples)*2+2)
	templates = append(templates, schema.SystemMessage(orderParserSystemPrompt))
	for _, ex := range orderExamples {
		templates = append(templates,
			schema.UserMessage(ex.user),
			schema.AssistantMessage(ex.assistant, nil),
		)
	}
	templates = append(templates, schema.UserMessage(`Customer said: "{{.Utterance}}". Respond with JSON only.`))

	tpl := prompt.FromMessages(schema.GoTemplate, templates...)
	msgs, err := tpl.Format(ctx, map[string]any{"Utterance": utterance})
	if err != nil {
		return nil, fmt.Errorf("order prompt render: %w", err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("order prompt render: empty result")
	}
	return msgs, nil
}
