package dialog

import (
	"context"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// Modify applies a free-text change request to the unconfirmed order and then
// resumes the normal dialog so new items are validated like any other. The
// follow-up is answered under OrderFoodIntent so the request is applied once.
func (e *Engine) Modify(ctx context.Context, ev *model.HookEvent) (*model.HookResponse, error) {
	log := logx.Component("modification").With().Str("session_id", ev.SessionID).Logger()

	switch ev.SessionState.Intent.ConfirmationState {
	case model.ConfirmationConfirmed:
		return delegate(ev, ev.Attributes()), nil
	case model.ConfirmationDenied:
		return resetAndElicit(ev, model.SlotOrderQuery, msgStartOver), nil
	}

	sess, err := model.DecodeSession(ev.Attributes())
	if err != nil {
		log.Warn().Err(err).Msg("corrupt session attributes, resetting")
		return resetAndElicit(ev, model.SlotOrderQuery, msgLostTrack), nil
	}
	if sess.Order == nil {
		return elicitSlot(ev, sess, model.SlotOrderQuery, msgNoOrderYet)
	}

	request := modificationText(ev)
	if request == "" {
		return elicitSlot(ev, sess, model.SlotModificationRequest, msgAskChange)
	}

	changes, err := e.parser.ParseChanges(ctx, sess.Order, request)
	if err != nil {
		log.Warn().Err(err).Str("request", request).Msg("could not parse modification")
		return elicitSlot(ev, sess, model.SlotModificationRequest, msgRephraseChange)
	}

	snap, err := e.catalog.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	report := e.builder.ApplyChanges(ctx, sess.Order, changes, snap)
	log.Info().
		Int("changes", len(changes)).
		Int("applied", report.Applied).
		Strs("skipped", report.Skipped).
		Msg("modification applied")

	return e.continueDialog(ctx, asOrderTurn(ev), sess)
}

// asOrderTurn copies the event onto OrderFoodIntent without the change request.
func asOrderTurn(ev *model.HookEvent) *model.HookEvent {
	out := ev.Clone()
	out.SessionState.Intent.Name = model.IntentOrderFood
	out.SessionState.Intent.ConfirmationState = model.ConfirmationNone
	delete(out.SessionState.Intent.Slots, model.SlotModificationRequest)
	return out
}

// modificationText prefers the dedicated slot and falls back to the raw transcript.
func modificationText(ev *model.HookEvent) string {
	if ev.SessionState.Intent.Name == model.IntentModifyOrder {
		if text := ev.SlotText(model.SlotModificationRequest); text != "" {
			return text
		}
	}
	return ev.InputTranscript
}
