package prompts

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
)

func TestRenderOrderParser(t *testing.T) {
	msgs, err := RenderOrderParser(context.Background(), "two {{rolls}} please")
	require.NoError(t, err)
	require.Len(t, msgs, 2+len(orderExamples)*2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "order_items")
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Contains(t, msgs[4].Content, `"Combo Choice": "B"`)

	last := msgs[len(msgs)-1]
	assert.Equal(t, schema.User, last.Role)
	assert.Equal(t, `Customer said: "two {{rolls}} please". Respond with JSON only.`, last.Content)
}

func TestRenderModification(t *testing.T) {
	doc := &model.OrderDocument{Items: []model.OrderLineItem{{ItemName: "Coke", Key: "coke", Quantity: 1}}}
	msgs, err := RenderModification(context.Background(), doc, "swap the coke for a sprite")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, `"item_name":"Coke"`)
	assert.Contains(t, msgs[0].Content, `Customer request: "swap the coke for a sprite"`)

	msgs, err = RenderModification(context.Background(), nil, "add miso")
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, "Current order: []")
}

func TestRenderClassifierAndAnswer(t *testing.T) {
	msgs, err := RenderClassifier(context.Background(), "what time do you close?")
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, `Customer input: "what time do you close?"`)
	assert.Contains(t, msgs[0].Content, "FAREWELL")

	msgs, err = RenderAnswer(context.Background(), "Restaurant Info: open 11-22", "when do you open?")
	require.NoError(t, err)
	assert.Contains(t, msgs[0].Content, "Restaurant Info: open 11-22")
	assert.Contains(t, msgs[0].Content, "Question: when do you open?")
}
