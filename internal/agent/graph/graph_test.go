package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/dialog"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/nodes"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/menu"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/order"
)

type labelLLM struct {
	label string
	order string
}

func (l labelLLM) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	last := in[len(in)-1].Content
	if strings.Contains(last, "Customer input:") {
		return schema.AssistantMessage(l.label, nil), nil
	}
	return &schema.Message{
		Role:         schema.Assistant,
		Content:      l.order,
		ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120}},
	}, nil
}

type catalogFunc func() (*menu.Snapshot, error)

func (f catalogFunc) Get(context.Context, bool) (*menu.Snapshot, error) { return f() }

type nilEmbedder struct{}

func (nilEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, nil }

func newTestRunner(t *testing.T, llm model.Generator, catalog dialog.CatalogSource) Runner {
	t.Helper()
	gen := nodes.NewMeteredGenerator(llm, "gemini-2.5-flash-lite")
	engine, err := dialog.NewEngine(dialog.Config{
		Catalog:    catalog,
		Parser:     order.NewParser(gen),
		Builder:    order.NewBuilder(menu.NewResolver(nilEmbedder{}), 0, 0),
		Classifier: dialog.NewClassifier(gen),
		Pick:       func(int) int { return 1 },
	})
	require.NoError(t, err)
	runner, err := NewRunner(context.Background(), engine)
	require.NoError(t, err)
	return runner
}

func okCatalog() (*menu.Snapshot, error) {
	return menu.BuildSnapshot([]model.CatalogRecord{
		{Name: "Coke", Category: "Drinks", Price: 2.5, ItemNumber: 2},
	}, time.Now()), nil
}

func TestRunnerDialogTurn(t *testing.T) {
	runner := newTestRunner(t, labelLLM{order: `{"order_items":[{"item_name":"coke","quantity":3}]}`}, catalogFunc(okCatalog))
	ev := &model.HookEvent{
		SessionID:        "g-1",
		InvocationSource: model.SourceDialog,
		SessionState: model.SessionState{Intent: model.Intent{
			Name:  model.IntentOrderFood,
			Slots: map[string]*model.Slot{model.SlotOrderQuery: model.NewTextSlot("three cokes")},
		}},
	}

	resp := runner.Invoke(context.Background(), ev)
	require.NotNil(t, resp)
	assert.Equal(t, model.ActionConfirmIntent, resp.Action())
	assert.Equal(t, "Okay, I have: 3 Coke. Is that correct?", resp.Messages[0].Content)
}

func TestRunnerFallbackFarewell(t *testing.T) {
	runner := newTestRunner(t, labelLLM{label: "farewell."}, catalogFunc(okCatalog))
	ev := &model.HookEvent{
		SessionID:        "g-2",
		InvocationSource: model.SourceDialog,
		InputTranscript:  "bye!",
		SessionState: model.SessionState{
			Intent:            model.Intent{Name: model.IntentFallback},
			SessionAttributes: map[string]string{"a": "b"},
		},
	}

	resp := runner.Invoke(context.Background(), ev)
	assert.Equal(t, model.ActionClose, resp.Action())
	assert.Equal(t, model.StateFulfilled, resp.SessionState.Intent.State)
	assert.Empty(t, resp.SessionState.SessionAttributes)
}

func TestRunnerGreeting(t *testing.T) {
	runner := newTestRunner(t, labelLLM{}, catalogFunc(okCatalog))
	resp := runner.Invoke(context.Background(), &model.HookEvent{
		SessionState: model.SessionState{Intent: model.Intent{Name: model.IntentGreeting}},
	})
	assert.Equal(t, model.ActionElicitSlot, resp.Action())
	assert.Equal(t, model.IntentOrderFood, resp.SessionState.Intent.Name)
}

func TestRunnerConvertsErrorsToFailedClose(t *testing.T) {
	failing := catalogFunc(func() (*menu.Snapshot, error) { return nil, errors.New("store down") })
	runner := newTestRunner(t, labelLLM{}, failing)
	attrs, err := model.Session{
		Order:         &model.OrderDocument{Items: []model.OrderLineItem{{ItemName: "Coke", Key: "coke", Quantity: 1, Category: "Drinks"}}},
		ParseComplete: true,
	}.Encode()
	require.NoError(t, err)

	ev := &model.HookEvent{
		SessionID:        "g-3",
		InvocationSource: model.SourceDialog,
		SessionState: model.SessionState{
			Intent:            model.Intent{Name: model.IntentOrderFood},
			SessionAttributes: attrs,
		},
	}
	resp := runner.Invoke(context.Background(), ev)
	assert.Equal(t, model.ActionClose, resp.Action())
	assert.Equal(t, model.StateFailed, resp.SessionState.Intent.State)
	assert.Equal(t, "Sorry, something went wrong on our side. Please try again in a moment.", resp.Messages[0].Content)
	assert.Equal(t, attrs, resp.SessionState.SessionAttributes)
}

func TestRunnerUnknownSource(t *testing.T) {
	runner := newTestRunner(t, labelLLM{}, catalogFunc(okCatalog))
	resp := runner.Invoke(context.Background(), &model.HookEvent{
		InvocationSource: "Somewhere",
		SessionState:     model.SessionState{Intent: model.Intent{Name: model.IntentOrderFood}},
	})
	assert.Equal(t, model.StateFailed, resp.SessionState.Intent.State)
	assert.Equal(t, "Sorry, I couldn't handle your request.", resp.Messages[0].Content)
}

func TestRouteConditionDefaultsToFail(t *testing.T) {
	cond := nodes.NewRouteCondition()
	got, err := cond(context.Background(), model.RoutedTurn{Route: "nowhere"})
	require.NoError(t, err)
	assert.Equal(t, nodes.NodeFail, got)

	got, err = cond(context.Background(), model.RoutedTurn{Route: model.RouteAnswer})
	require.NoError(t, err)
	assert.Equal(t, nodes.NodeAnswer, got)
}

func TestMeteredGeneratorOutsideGraph(t *testing.T) {
	gen := nodes.NewMeteredGenerator(labelLLM{order: "{}"}, "gemini-2.5-flash")
	out, err := gen.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "{}", out.Content)
}
