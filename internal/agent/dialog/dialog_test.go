package dialog

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

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/menu"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/order"
)

// scriptedLLM answers by prompt kind, recognized from the final user message.
type scriptedLLM struct {
	order, changes, intent, answer string
	err                            error
	calls                          map[string]int
}

func (s *scriptedLLM) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	last := in[len(in)-1].Content
	kind := "answer"
	switch {
	case strings.Contains(last, "Customer said:"):
		kind = "order"
	case strings.Contains(last, "Customer request:"):
		kind = "changes"
	case strings.Contains(last, "Customer input:"):
		kind = "intent"
	}
	s.calls[kind]++
	if s.err != nil {
		return nil, s.err
	}
	reply := map[string]string{"order": s.order, "changes": s.changes, "intent": s.intent, "answer": s.answer}[kind]
	return schema.AssistantMessage(reply, nil), nil
}

type staticCatalog struct {
	snap *menu.Snapshot
	err  error
}

func (c staticCatalog) Get(context.Context, bool) (*menu.Snapshot, error) {
	return c.snap, c.err
}

type noEmbedder struct{}

func (noEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, nil }

type recordingSink struct {
	got map[string]model.OrderDocument
	err error
}

func (r *recordingSink) Submit(_ context.Context, sessionID string, doc model.OrderDocument) error {
	if r.err != nil {
		return r.err
	}
	if r.got == nil {
		r.got = map[string]model.OrderDocument{}
	}
	r.got[sessionID] = doc
	return nil
}

func testCatalog() *menu.Snapshot {
	return menu.BuildSnapshot([]model.CatalogRecord{
		{Name: "Green Dragon Roll", Category: "Rolls", Price: 14, ItemNumber: 1},
		{Name: "Coke", Category: "Drinks", Price: 2.5, ItemNumber: 2},
		{Name: "Miso Soup", Category: "Soups", Price: 3, ItemNumber: 5},
		{
			Name: "Gyoza", Category: "Appetizers", Price: 6.5, ItemNumber: 3,
			Options: []model.OptionRecord{{Name: "Protein", Required: true, Choices: []model.ChoiceRecord{{Name: "beef"}, {Name: "vegetable"}}}},
		},
	}, time.Now())
}

type fixture struct {
	engine *Engine
	llm    *scriptedLLM
	sink   *recordingSink
}

func newFixture(t *testing.T, llm *scriptedLLM, catalog CatalogSource) fixture {
	t.Helper()
	if catalog == nil {
		catalog = staticCatalog{snap: testCatalog()}
	}
	sink := &recordingSink{}
	engine, err := NewEngine(Config{
		Catalog:    catalog,
		Parser:     order.NewParser(llm),
		Builder:    order.NewBuilder(menu.NewResolver(noEmbedder{}), menu.DefaultCutoff, menu.DefaultCutoff),
		Classifier: NewClassifier(llm),
		Sink:       sink,
		Pick:       func(int) int { return 0 },
	})
	require.NoError(t, err)
	return fixture{engine: engine, llm: llm, sink: sink}
}

func orderEvent(attrs map[string]string, slots map[string]string) *model.HookEvent {
	s := map[string]*model.Slot{
		model.SlotOrderQuery:   nil,
		model.SlotDrinkQuery:   nil,
		model.SlotOptionChoice: nil,
	}
	for k, v := range slots {
		s[k] = model.NewTextSlot(v)
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &model.HookEvent{
		SessionID:        "sess-1",
		InvocationSource: model.SourceDialog,
		SessionState: model.SessionState{
			Intent:            model.Intent{Name: model.IntentOrderFood, Slots: s, ConfirmationState: model.ConfirmationNone},
			SessionAttributes: attrs,
		},
	}
}

func sessionOf(t *testing.T, resp *model.HookResponse) model.Session {
	t.Helper()
	sess, err := model.DecodeSession(resp.SessionState.SessionAttributes)
	require.NoError(t, err)
	return sess
}

func message(resp *model.HookResponse) string {
	if len(resp.Messages) == 0 {
		return ""
	}
	return resp.Messages[0].Content
}

func TestScenarioMixedOrderGoesStraightToConfirmation(t *testing.T) {
	f := newFixture(t, &scriptedLLM{
		order: `{"order_items":[{"item_name":"green dragon roll","quantity":2},{"item_name":"coke","quantity":1}]}`,
	}, nil)

	resp, err := f.engine.HandleDialog(context.Background(), orderEvent(nil, map[string]string{
		model.SlotOrderQuery: "two green dragon rolls and one coke",
	}))
	require.NoError(t, err)

	assert.Equal(t, model.ActionConfirmIntent, resp.Action())
	assert.Equal(t, "Okay, I have: 2 Green Dragon Roll, 1 Coke. Is that correct?", message(resp))

	sess := sessionOf(t, resp)
	require.NotNil(t, sess.Order)
	require.Len(t, sess.Order.Items, 2)
	assert.Equal(t, 2, sess.Order.Items[0].Quantity)
	assert.Equal(t, "green dragon roll", sess.Order.Items[0].Key)
	assert.Equal(t, 1, sess.Order.Items[1].Quantity)
	assert.Equal(t, "coke", sess.Order.Items[1].Key)
	assert.True(t, sess.ParseComplete)
}

func TestScenarioRequiredOptionThenDrinkThenConfirm(t *testing.T) {
	f := newFixture(t, &scriptedLLM{order: `{"order_items":[{"item_name":"gyoza","quantity":1}]}`}, nil)
	ctx := context.Background()

	resp, err := f.engine.HandleDialog(ctx, orderEvent(nil, map[string]string{model.SlotOrderQuery: "gyoza"}))
	require.NoError(t, err)
	assert.Equal(t, model.ActionElicitSlot, resp.Action())
	assert.Equal(t, model.SlotOptionChoice, resp.SessionState.DialogAction.SlotToElicit)
	assert.Equal(t, "For your Gyoza, which Protein would you like? Choices are: beef, vegetable.", message(resp))

	sess := sessionOf(t, resp)
	require.NotNil(t, sess.Configuring)
	assert.Equal(t, "gyoza", sess.Configuring.Key)
	assert.Equal(t, "Protein", sess.PendingOption)

	resp, err = f.engine.HandleDialog(ctx, orderEvent(resp.SessionState.SessionAttributes, map[string]string{
		model.SlotOrderQuery:   "gyoza",
		model.SlotOptionChoice: "beef",
	}))
	require.NoError(t, err)
	assert.Equal(t, model.SlotDrinkQuery, resp.SessionState.DialogAction.SlotToElicit)
	assert.Equal(t, "I've got your food order. Would you like anything to drink?", message(resp))
	sess = sessionOf(t, resp)
	assert.Nil(t, sess.Configuring)
	assert.Empty(t, sess.PendingOption)

	resp, err = f.engine.HandleDialog(ctx, orderEvent(resp.SessionState.SessionAttributes, map[string]string{
		model.SlotOrderQuery: "gyoza",
		model.SlotDrinkQuery: "no thanks",
	}))
	require.NoError(t, err)
	assert.Equal(t, model.ActionConfirmIntent, resp.Action())
	assert.Equal(t, "Okay, I have: 1 Gyoza (beef). Is that correct?", message(resp))
	assert.True(t, sessionOf(t, resp).DrinkTurnDone)

	assert.Equal(t, 1, f.llm.calls["order"], "order text is parsed once")
}

func TestDrinkTurnAppendsResolvedDrink(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, nil)
	attrs, err := model.Session{
		Order:         &model.OrderDocument{Items: []model.OrderLineItem{{ItemName: "Miso Soup", Key: "miso soup", Quantity: 1, Category: "Soups"}}},
		ParseComplete: true,
	}.Encode()
	require.NoError(t, err)

	resp, err := f.engine.HandleDialog(context.Background(), orderEvent(attrs, map[string]string{
		model.SlotOrderQuery: "miso soup",
		model.SlotDrinkQuery: "Coke",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Okay, I have: 1 Miso Soup, 1 Coke. Is that correct?", message(resp))
}

func TestScenarioDeniedResetsSession(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, nil)
	attrs, err := model.Session{
		Order:         &model.OrderDocument{Items: []model.OrderLineItem{{ItemName: "Coke", Key: "coke", Quantity: 1, Category: "Drinks"}}},
		ParseComplete: true,
		Extra:         map[string]string{"table": "4"},
	}.Encode()
	require.NoError(t, err)

	ev := orderEvent(attrs, map[string]string{model.SlotOrderQuery: "a coke"})
	ev.SessionState.Intent.ConfirmationState = model.ConfirmationDenied

	resp, err := f.engine.HandleDialog(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, model.ActionElicitSlot, resp.Action())
	assert.Equal(t, model.SlotOrderQuery, resp.SessionState.DialogAction.SlotToElicit)
	assert.Empty(t, resp.SessionState.SessionAttributes)
	assert.Nil(t, resp.SessionState.Intent.Slots[model.SlotOrderQuery])
	assert.Equal(t, "Okay, let's start over. What would you like to order?", message(resp))

	assert.NotNil(t, ev.SessionState.Intent.Slots[model.SlotOrderQuery], "event is not mutated")
}

func TestConfirmedDelegates(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, nil)
	ev := orderEvent(map[string]string{model.AttrParseComplete: "true"}, nil)
	ev.SessionState.Intent.ConfirmationState = model.ConfirmationConfirmed

	resp, err := f.engine.HandleDialog(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, model.ActionDelegate, resp.Action())
	assert.Equal(t, "true", resp.SessionState.SessionAttributes[model.AttrParseComplete])
	assert.Empty(t, resp.Messages)
}

func TestPromptsForOrderWhenNothingYet(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, nil)
	resp, err := f.engine.HandleDialog(context.Background(), orderEvent(nil, nil))
	require.NoError(t, err)
	assert.Equal(t, model.SlotOrderQuery, resp.SessionState.DialogAction.SlotToElicit)
	assert.Equal(t, "Sure, what would you like to order?", message(resp))
}

func TestUnresolvedItemIsClarifiedThenReparsed(t *testing.T) {
	llm := &scriptedLLM{order: `{"order_items":[{"item_name":"coke","quantity":1},{"item_name":"unicorn roll","quantity":1}]}`}
	f := newFixture(t, llm, nil)
	ctx := context.Background()

	resp, err := f.engine.HandleDialog(ctx, orderEvent(nil, map[string]string{model.SlotOrderQuery: "a coke and a unicorn roll"}))
	require.NoError(t, err)
	assert.Equal(t, model.SlotOrderQuery, resp.SessionState.DialogAction.SlotToElicit)
	assert.Equal(t, "I couldn't find 'unicorn roll' on the menu. Could you clarify that part of your order?", message(resp))
	sess := sessionOf(t, resp)
	assert.False(t, sess.ParseComplete)
	require.Len(t, sess.Order.Items, 1)

	llm.order = `{"order_items":[{"item_name":"green dragon roll","quantity":1}]}`
	resp, err = f.engine.HandleDialog(ctx, orderEvent(resp.SessionState.SessionAttributes, map[string]string{
		model.SlotOrderQuery: "I meant the green dragon roll",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Okay, I have: 1 Coke, 1 Green Dragon Roll. Is that correct?", message(resp))
}

func TestNothingRecognizedAsksAgain(t *testing.T) {
	f := newFixture(t, &scriptedLLM{order: "I am not sure what you mean"}, nil)
	resp, err := f.engine.HandleDialog(context.Background(), orderEvent(nil, map[string]string{model.SlotOrderQuery: "hmm"}))
	require.NoError(t, err)
	assert.Equal(t, model.SlotOrderQuery, resp.SessionState.DialogAction.SlotToElicit)
	assert.False(t, sessionOf(t, resp).ParseComplete)
}

func TestFallbackOrderWithoutMenuItemsResets(t *testing.T) {
	f := newFixture(t, &scriptedLLM{order: `{"order_items":[{"item_name":"a taxi","quantity":1}]}`}, nil)
	ev := orderEvent(map[string]string{model.AttrFallbackOrder: "true"}, map[string]string{model.SlotOrderQuery: "call me a taxi"})

	resp, err := f.engine.HandleDialog(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, model.ActionElicitSlot, resp.Action())
	assert.Empty(t, resp.SessionState.SessionAttributes)
	assert.Contains(t, message(resp), "I can only take food and drink orders")
}

func TestCatalogFailureWhileParsingClosesFailed(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, staticCatalog{err: errors.New("store down")})
	resp, err := f.engine.HandleDialog(context.Background(), orderEvent(nil, map[string]string{model.SlotOrderQuery: "coke"}))
	require.NoError(t, err)
	assert.Equal(t, model.ActionClose, resp.Action())
	assert.Equal(t, model.StateFailed, resp.SessionState.Intent.State)
	assert.Equal(t, "I had trouble understanding that. Could you please try again?", message(resp))
}

func TestCorruptSessionResets(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, nil)
	resp, err := f.engine.HandleDialog(context.Background(), orderEvent(map[string]string{model.AttrParsedOrder: "{broken"}, nil))
	require.NoError(t, err)
	assert.Equal(t, model.ActionElicitSlot, resp.Action())
	assert.Empty(t, resp.SessionState.SessionAttributes)
}
