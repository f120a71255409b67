package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/menu"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/order"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// HandleDialog runs the order state machine for a DialogCodeHook turn.
func (e *Engine) HandleDialog(ctx context.Context, ev *model.HookEvent) (*model.HookResponse, error) {
	switch ev.SessionState.Intent.ConfirmationState {
	case model.ConfirmationConfirmed:
		return delegate(ev, ev.Attributes()), nil
	case model.ConfirmationDenied:
		return resetAndElicit(ev, model.SlotOrderQuery, msgStartOver), nil
	}

	sess, err := model.DecodeSession(ev.Attributes())
	if err != nil {
		logx.Warn().Err(err).Str("component", "dialog").Str("session_id", ev.SessionID).Msg("corrupt session attributes, resetting")
		return resetAndElicit(ev, model.SlotOrderQuery, msgLostTrack), nil
	}
	return e.continueDialog(ctx, ev, sess)
}

// continueDialog is the shared tail of the dialog and modification entry points.
func (e *Engine) continueDialog(ctx context.Context, ev *model.HookEvent, sess model.Session) (*model.HookResponse, error) {
	log := logx.Component("dialog").With().Str("session_id", ev.SessionID).Logger()

	if sess.Configuring != nil && sess.PendingOption != "" {
		if choice := ev.SlotText(model.SlotOptionChoice); choice != "" {
			applyOptionChoice(sess.Order, sess.Configuring.Key, sess.PendingOption, choice)
			log.Debug().Str("item", sess.Configuring.ItemName).Str("option", sess.PendingOption).Str("choice", choice).Msg("option applied")
			sess.ClearPending()
			if ev.SessionState.Intent.Slots != nil {
				ev.SessionState.Intent.Slots[model.SlotOptionChoice] = nil
			}
		}
	}

	orderText := ev.SlotText(model.SlotOrderQuery)
	if orderText == "" && sess.Order == nil {
		return elicitSlot(ev, sess, model.SlotOrderQuery, msgAskOrder)
	}

	if orderText != "" && !sess.ParseComplete {
		if resp, err := e.parseInto(ctx, ev, &sess, orderText); resp != nil || err != nil {
			return resp, err
		}
	}

	if !sess.Order.Empty() {
		snap, err := e.catalog.Get(ctx, false)
		if err != nil {
			return nil, err
		}
		if resp, err := e.validate(ev, &sess, snap); resp != nil || err != nil {
			return resp, err
		}
	}

	if drink := ev.SlotText(model.SlotDrinkQuery); drink != "" && !sess.DrinkTurnDone {
		if err := e.applyDrink(ctx, &sess, drink); err != nil {
			return nil, err
		}
	}

	if sess.Order.Empty() {
		sess.Order = nil
		sess.ParseComplete = false
		return elicitSlot(ev, sess, model.SlotOrderQuery, msgEmptyOrder)
	}
	return confirmIntent(ev, sess, fmt.Sprintf(msgConfirmOrder, sess.Order.Summary()))
}

// parseInto runs parse, resolve and option extraction for fresh order text and
// appends the resulting lines. A non-nil response ends the turn early.
func (e *Engine) parseInto(ctx context.Context, ev *model.HookEvent, sess *model.Session, text string) (*model.HookResponse, error) {
	log := logx.Component("dialog").With().Str("session_id", ev.SessionID).Logger()

	snap, err := e.catalog.Get(ctx, false)
	if err != nil {
		log.Error().Err(err).Msg("catalog unavailable while parsing order")
		return closeDialog(ev, ev.Attributes(), model.StateFailed, msgParseTrouble), nil
	}

	requests := e.parser.ParseOrderText(ctx, text)
	lines := make([]model.OrderLineItem, 0, len(requests))
	resolved := 0
	for _, req := range requests {
		line := e.builder.BuildLine(ctx, req, snap)
		if line.Resolved() {
			resolved++
		}
		lines = append(lines, line)
	}
	log.Info().Int("requested", len(requests)).Int("resolved", resolved).Msg("order text processed")

	if sess.FallbackOrder {
		sess.FallbackOrder = false
		if resolved == 0 {
			log.Info().Msg("fallback-routed utterance matched no menu items, resetting")
			return resetAndElicit(ev, model.SlotOrderQuery, msgFallbackNoItems), nil
		}
	}

	if len(lines) == 0 && sess.Order.Empty() {
		return elicitSlot(ev, *sess, model.SlotOrderQuery, msgNothingFound)
	}

	if sess.Order == nil {
		sess.Order = &model.OrderDocument{}
	}
	sess.Order.Append(lines...)
	sess.ParseComplete = true
	return nil, nil
}

// validate asks the next outstanding question, if any: clarify an unknown
// item, pick a required option, then offer a drink.
func (e *Engine) validate(ev *model.HookEvent, sess *model.Session, snap *menu.Snapshot) (*model.HookResponse, error) {
	if i := sess.Order.FirstUnresolved(); i >= 0 {
		name := sess.Order.Items[i].ItemName
		// the clarification arrives as new order text and is parsed on its own
		sess.Order.RemoveAt(i)
		sess.ParseComplete = false
		return elicitSlot(ev, *sess, model.SlotOrderQuery, fmt.Sprintf(msgClarifyItem, name))
	}

	for _, item := range sess.Order.Items {
		entry, ok := snap.Entry(item.Key)
		if !ok {
			continue
		}
		if g := menu.MissingRequired(item, entry); g != nil {
			pending := item.Clone()
			sess.Configuring = &pending
			sess.PendingOption = g.Name
			return elicitSlot(ev, *sess, model.SlotOptionChoice,
				fmt.Sprintf(msgChooseOption, item.ItemName, g.Name, strings.Join(g.Choices, ", ")))
		}
	}

	if sess.Order.HasFood() && !sess.Order.HasDrink() && !sess.DrinkTurnDone && ev.SlotText(model.SlotDrinkQuery) == "" {
		return elicitSlot(ev, *sess, model.SlotDrinkQuery, msgDrinkUpsell)
	}
	return nil, nil
}

// applyDrink handles the answer to the drink offer. The turn is marked done
// whatever the answer, so the offer is never repeated.
func (e *Engine) applyDrink(ctx context.Context, sess *model.Session, text string) error {
	sess.DrinkTurnDone = true
	if order.IsDrinkRefusal(text) {
		return nil
	}
	snap, err := e.catalog.Get(ctx, false)
	if err != nil {
		return err
	}
	line, ok := e.builder.BuildDrink(ctx, text, snap)
	if !ok {
		return nil
	}
	if sess.Order == nil {
		sess.Order = &model.OrderDocument{}
	}
	sess.Order.Append(line)
	return nil
}

// applyOptionChoice records the choice on the first line with the key that has
// no value for the option yet, or the first line with the key otherwise.
func applyOptionChoice(doc *model.OrderDocument, key, option, value string) {
	if doc == nil {
		return
	}
	target := -1
	for i, it := range doc.Items {
		if it.Key != key {
			continue
		}
		if _, set := it.Options.Get(option); !set {
			target = i
			break
		}
		if target < 0 {
			target = i
		}
	}
	if target < 0 {
		return
	}
	doc.Items[target].Options = doc.Items[target].Options.Set(option, value)
}
