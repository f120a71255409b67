package dialog

import (
	"context"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// Route picks the entry point for a turn. FallbackIntent turns are classified
// first; an ORDER label rewrites a private copy of the event into an OrderFood
// turn with the transcript as order text and the fallback flag set.
func (e *Engine) Route(ctx context.Context, ev *model.HookEvent) model.RoutedTurn {
	turn := model.RoutedTurn{Event: ev.Clone()}
	log := logx.Component("router").With().Str("session_id", ev.SessionID).Str("intent", ev.SessionState.Intent.Name).Logger()

	switch ev.SessionState.Intent.Name {
	case model.IntentFallback:
		turn.Intent = e.Classify(ctx, ev.InputTranscript)
		switch turn.Intent {
		case model.UserIntentQuestion:
			turn.Route = model.RouteAnswer
		case model.UserIntentOrder:
			asFallbackOrder(turn.Event)
			turn.Route = model.RouteDialog
		case model.UserIntentModification:
			turn.Route = model.RouteModify
		case model.UserIntentFarewell:
			turn.Route = model.RouteFarewell
		default:
			turn.Route = model.RouteUnsure
		}
		log.Debug().Str("label", string(turn.Intent)).Str("route", string(turn.Route)).Msg("fallback classified")
		return turn
	case model.IntentGreeting:
		turn.Route = model.RouteGreeting
		return turn
	case model.IntentModifyOrder:
		if ev.InvocationSource == model.SourceFulfillment {
			turn.Route = model.RouteFulfill
		} else {
			turn.Route = model.RouteModify
		}
		return turn
	}

	switch ev.InvocationSource {
	case model.SourceDialog:
		turn.Route = model.RouteDialog
	case model.SourceFulfillment:
		turn.Route = model.RouteFulfill
	default:
		log.Warn().Str("source", string(ev.InvocationSource)).Msg("unknown invocation source")
		turn.Route = model.RouteFail
	}
	return turn
}

func asFallbackOrder(ev *model.HookEvent) {
	ev.SessionState.SessionAttributes[model.AttrFallbackOrder] = "true"
	ev.SessionState.Intent.Name = model.IntentOrderFood
	if ev.SessionState.Intent.Slots == nil {
		ev.SessionState.Intent.Slots = map[string]*model.Slot{}
	}
	ev.SessionState.Intent.Slots[model.SlotOrderQuery] = model.NewTextSlot(ev.InputTranscript)
}

// Handle dispatches a routed turn to its entry point.
func (e *Engine) Handle(ctx context.Context, turn model.RoutedTurn) (*model.HookResponse, error) {
	ev := turn.Event
	switch turn.Route {
	case model.RouteDialog:
		return e.HandleDialog(ctx, ev)
	case model.RouteFulfill:
		return e.Fulfill(ctx, ev)
	case model.RouteModify:
		return e.Modify(ctx, ev)
	case model.RouteAnswer:
		return e.Answer(ctx, ev)
	case model.RouteGreeting:
		return e.Greet(ctx, ev)
	case model.RouteFarewell:
		return e.Farewell(ctx, ev)
	case model.RouteUnsure:
		return e.Unsure(ctx, ev)
	default:
		return CannotHandle(ev), nil
	}
}
