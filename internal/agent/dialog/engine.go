package dialog

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/menu"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/order"
)

// CatalogSource hands out the current catalog snapshot. *menu.Cache satisfies it.
type CatalogSource interface {
	Get(ctx context.Context, forceRefresh bool) (*menu.Snapshot, error)
}

// Config wires the engine's collaborators. Answerer, Classifier and Sink are
// optional; without them the matching entry points degrade to fixed replies.
type Config struct {
	Catalog    CatalogSource
	Parser     *order.Parser
	Builder    *order.Builder
	Answerer   *Answerer
	Classifier *Classifier
	Sink       model.OrderSink
	// Pick returns a value in [0, n). Defaults to math/rand.
	Pick func(n int) int
}

// Engine runs one host turn at a time. It keeps no per-session state: every
// response is derived from the incoming event alone.
type Engine struct {
	catalog    CatalogSource
	parser     *order.Parser
	builder    *order.Builder
	answerer   *Answerer
	classifier *Classifier
	sink       model.OrderSink
	pick       func(n int) int
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog source is nil")
	}
	if cfg.Parser == nil || cfg.Builder == nil {
		return nil, fmt.Errorf("order parser and builder are required")
	}
	pick := cfg.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return &Engine{
		catalog:    cfg.Catalog,
		parser:     cfg.Parser,
		builder:    cfg.Builder,
		answerer:   cfg.Answerer,
		classifier: cfg.Classifier,
		sink:       cfg.Sink,
		pick:       pick,
	}, nil
}

// Greet answers GreetingIntent by starting a fresh order.
func (e *Engine) Greet(_ context.Context, ev *model.HookEvent) (*model.HookResponse, error) {
	intent := model.Intent{
		Name:  model.IntentOrderFood,
		Slots: emptyOrderSlots(),
		State: model.StateInProgress,
	}
	action := &model.DialogAction{Type: model.ActionElicitSlot, SlotToElicit: model.SlotOrderQuery}
	return respond(action, intent, map[string]string{}, greetings[e.pick(len(greetings))]), nil
}

// Farewell closes the conversation and forgets the session.
func (e *Engine) Farewell(_ context.Context, ev *model.HookEvent) (*model.HookResponse, error) {
	return closeDialog(ev, map[string]string{}, model.StateFulfilled, msgFarewell), nil
}

// Unsure resets and points the customer at what the assistant can do.
func (e *Engine) Unsure(_ context.Context, ev *model.HookEvent) (*model.HookResponse, error) {
	return resetAndElicit(ev, model.SlotOrderQuery, msgUnsure), nil
}
