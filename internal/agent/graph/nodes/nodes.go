package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/dialog"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

const (
	NodeRouter   = "router"
	NodeDialog   = "dialog"
	NodeFulfill  = "fulfill"
	NodeModify   = "modify"
	NodeAnswer   = "answer"
	NodeGreeting = "greeting"
	NodeFarewell = "farewell"
	NodeUnsure   = "unsure"
	NodeFail     = "fail"
)

// RouteNodes maps every route to the node that handles it.
var RouteNodes = map[model.Route]string{
	model.RouteDialog:   NodeDialog,
	model.RouteFulfill:  NodeFulfill,
	model.RouteModify:   NodeModify,
	model.RouteAnswer:   NodeAnswer,
	model.RouteGreeting: NodeGreeting,
	model.RouteFarewell: NodeFarewell,
	model.RouteUnsure:   NodeUnsure,
	model.RouteFail:     NodeFail,
}

// NewRouterPreHandler seeds the turn state from the incoming event.
func NewRouterPreHandler() func(context.Context, *model.HookEvent, *model.TurnState) (*model.HookEvent, error) {
	return func(ctx context.Context, in *model.HookEvent, s *model.TurnState) (*model.HookEvent, error) {
		if in == nil {
			return nil, fmt.Errorf("nil hook event")
		}
		s.SessionID = in.SessionID
		s.LLMCalls = 0
		s.CostUSD = 0
		return in, nil
	}
}

// NewRouterNode classifies the turn and picks its entry point.
func NewRouterNode(engine *dialog.Engine) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, ev *model.HookEvent) (model.RoutedTurn, error) {
		return engine.Route(ctx, ev), nil
	})
}

// NewRouterPostHandler records the chosen route in the turn state.
func NewRouterPostHandler() func(context.Context, model.RoutedTurn, *model.TurnState) (model.RoutedTurn, error) {
	return func(ctx context.Context, turn model.RoutedTurn, s *model.TurnState) (model.RoutedTurn, error) {
		s.Route = turn.Route
		return turn, nil
	}
}

// NewRouteCondition sends the routed turn to its entry-point node.
func NewRouteCondition() func(context.Context, model.RoutedTurn) (string, error) {
	return func(ctx context.Context, turn model.RoutedTurn) (string, error) {
		if node, ok := RouteNodes[turn.Route]; ok {
			return node, nil
		}
		return NodeFail, nil
	}
}

// NewEntryNode runs one entry point of the engine and records turn metrics.
func NewEntryNode(engine *dialog.Engine) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, turn model.RoutedTurn) (*model.HookResponse, error) {
		start := time.Now()
		resp, err := engine.Handle(ctx, turn)
		metrics.TurnDuration.WithLabelValues(string(turn.Route)).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.TurnsTotal.WithLabelValues(string(turn.Route), "error").Inc()
			return nil, err
		}
		metrics.TurnsTotal.WithLabelValues(string(turn.Route), string(resp.Action())).Inc()
		return resp, nil
	})
}

// NewEntryPostHandler logs the turn outcome with the accumulated LLM cost.
func NewEntryPostHandler() func(context.Context, *model.HookResponse, *model.TurnState) (*model.HookResponse, error) {
	return func(ctx context.Context, out *model.HookResponse, s *model.TurnState) (*model.HookResponse, error) {
		logx.Debug().
			Str("session_id", s.SessionID).
			Str("route", string(s.Route)).
			Str("action", string(out.Action())).
			Int("llm_calls", s.LLMCalls).
			Float64("total_cost_usd", s.CostUSD).
			Msg("turn handled")
		return out, nil
	}
}
