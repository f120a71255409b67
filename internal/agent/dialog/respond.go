package dialog

import (
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// Response builders. Each one copies the incoming intent so the event is never
// aliased by the response.

func encodeSession(sess model.Session) (map[string]string, error) {
	attrs, err := sess.Encode()
	if err != nil {
		logx.Error().Err(err).Str("component", "dialog").Msg("encode session")
		return nil, err
	}
	return attrs, nil
}

func respond(action *model.DialogAction, intent model.Intent, attrs map[string]string, msg string) *model.HookResponse {
	if attrs == nil {
		attrs = map[string]string{}
	}
	resp := &model.HookResponse{
		SessionState: model.SessionState{
			DialogAction:      action,
			Intent:            intent,
			SessionAttributes: attrs,
		},
	}
	if msg != "" {
		resp.Messages = []model.Message{model.PlainText(msg)}
	}
	return resp
}

func elicitSlot(ev *model.HookEvent, sess model.Session, slot, msg string) (*model.HookResponse, error) {
	attrs, err := encodeSession(sess)
	if err != nil {
		return nil, err
	}
	action := &model.DialogAction{Type: model.ActionElicitSlot, SlotToElicit: slot}
	return respond(action, ev.SessionState.Intent.Clone(), attrs, msg), nil
}

// resetAndElicit drops every session attribute and the order slots before asking again.
func resetAndElicit(ev *model.HookEvent, slot, msg string) *model.HookResponse {
	intent := ev.SessionState.Intent.Clone()
	intent.Slots = emptyOrderSlots()
	intent.ConfirmationState = model.ConfirmationNone
	action := &model.DialogAction{Type: model.ActionElicitSlot, SlotToElicit: slot}
	return respond(action, intent, map[string]string{}, msg)
}

func confirmIntent(ev *model.HookEvent, sess model.Session, msg string) (*model.HookResponse, error) {
	attrs, err := encodeSession(sess)
	if err != nil {
		return nil, err
	}
	return respond(&model.DialogAction{Type: model.ActionConfirmIntent}, ev.SessionState.Intent.Clone(), attrs, msg), nil
}

func delegate(ev *model.HookEvent, attrs map[string]string) *model.HookResponse {
	return respond(&model.DialogAction{Type: model.ActionDelegate}, ev.SessionState.Intent.Clone(), copyAttrs(attrs), "")
}

func closeDialog(ev *model.HookEvent, attrs map[string]string, state model.FulfillmentState, msg string) *model.HookResponse {
	intent := ev.SessionState.Intent.Clone()
	intent.State = state
	return respond(&model.DialogAction{Type: model.ActionClose}, intent, copyAttrs(attrs), msg)
}

// FailedResponse closes the turn with a fixed apology and a Failed state.
// It is the boundary answer for any unexpected error.
func FailedResponse(ev *model.HookEvent) *model.HookResponse {
	if ev == nil {
		ev = &model.HookEvent{}
	}
	return closeDialog(ev, ev.Attributes(), model.StateFailed, msgUnexpectedFailed)
}

// CannotHandle closes a turn the router has no entry point for.
func CannotHandle(ev *model.HookEvent) *model.HookResponse {
	return closeDialog(ev, ev.Attributes(), model.StateFailed, msgCannotHandle)
}

func emptyOrderSlots() map[string]*model.Slot {
	return map[string]*model.Slot{
		model.SlotOrderQuery:   nil,
		model.SlotDrinkQuery:   nil,
		model.SlotOptionChoice: nil,
	}
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
