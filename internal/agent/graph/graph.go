package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/dialog"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/nodes"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/graph/observers"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// Runner executes one hook turn. It never returns an error: every failure is
// turned into a Close(Failed) response with a fixed apology.
type Runner interface {
	Invoke(ctx context.Context, ev *model.HookEvent) *model.HookResponse
}

// GraphBuilder handles the construction of the turn routing graph
type GraphBuilder struct {
	engine *dialog.Engine
	graph  *compose.Graph[*model.HookEvent, *model.HookResponse]
}

// maxRunSteps bounds a turn: the router and one entry point, with headroom.
const maxRunSteps = 10

type graphRunner struct {
	runnable compose.Runnable[*model.HookEvent, *model.HookResponse]
}

func (r *graphRunner) Invoke(ctx context.Context, ev *model.HookEvent) (resp *model.HookResponse) {
	log := logx.Component("hook")
	if ev != nil {
		log = log.With().Str("session_id", ev.SessionID).Logger()
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("turn panicked")
			resp = dialog.FailedResponse(ev)
		}
	}()

	out, err := r.runnable.Invoke(ctx, ev, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		log.Error().Err(err).Int("status", errx.StatusOf(err)).Msg("turn failed")
		return dialog.FailedResponse(ev)
	}
	if out == nil {
		log.Error().Msg("turn produced no response")
		return dialog.FailedResponse(ev)
	}
	return out
}

// NewRunner compiles the routing graph around engine.
func NewRunner(ctx context.Context, engine *dialog.Engine) (Runner, error) {
	runnable, err := BuildGraph(ctx, engine)
	if err != nil {
		return nil, err
	}
	logx.Debug().Msg("Hook graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled routing graph: a router node
// followed by a branch to exactly one entry-point node per turn.
func BuildGraph(ctx context.Context, engine *dialog.Engine) (compose.Runnable[*model.HookEvent, *model.HookResponse], error) {
	if engine == nil {
		return nil, fmt.Errorf("dialog engine is nil")
	}

	builder := &GraphBuilder{
		engine: engine,
		graph: compose.NewGraph[*model.HookEvent, *model.HookResponse](
			compose.WithGenLocalState(func(ctx context.Context) *model.TurnState {
				return &model.TurnState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}
	return builder.compile(ctx)
}

// addNodes adds the router and one entry-point node per route
func (b *GraphBuilder) addNodes() error {
	if err := b.graph.AddLambdaNode(nodes.NodeRouter,
		nodes.NewRouterNode(b.engine),
		compose.WithStatePreHandler(nodes.NewRouterPreHandler()),
		compose.WithStatePostHandler(nodes.NewRouterPostHandler()),
	); err != nil {
		return fmt.Errorf("add router node: %w", err)
	}

	for _, name := range entryNodes() {
		if err := b.graph.AddLambdaNode(name,
			nodes.NewEntryNode(b.engine),
			compose.WithStatePostHandler(nodes.NewEntryPostHandler()),
		); err != nil {
			return fmt.Errorf("add %s node: %w", name, err)
		}
	}
	return nil
}

// addEdges connects START to the router and every entry point to END
func (b *GraphBuilder) addEdges() error {
	if err := b.graph.AddEdge(compose.START, nodes.NodeRouter); err != nil {
		return fmt.Errorf("add start edge: %w", err)
	}
	for _, name := range entryNodes() {
		if err := b.graph.AddEdge(name, compose.END); err != nil {
			return fmt.Errorf("add %s end edge: %w", name, err)
		}
	}
	return nil
}

// addBranches creates the route branch after the router
func (b *GraphBuilder) addBranches() error {
	ends := make(map[string]bool, len(nodes.RouteNodes))
	for _, name := range entryNodes() {
		ends[name] = true
	}
	routeBranch := compose.NewGraphBranch(nodes.NewRouteCondition(), ends)
	if err := b.graph.AddBranch(nodes.NodeRouter, routeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding route branch")
		return fmt.Errorf("error adding route branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.HookEvent, *model.HookResponse], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxRunSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

func entryNodes() []string {
	return []string{
		nodes.NodeDialog,
		nodes.NodeFulfill,
		nodes.NodeModify,
		nodes.NodeAnswer,
		nodes.NodeGreeting,
		nodes.NodeFarewell,
		nodes.NodeUnsure,
		nodes.NodeFail,
	}
}
