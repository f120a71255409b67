package model

// Route names the entry point a turn is dispatched to.
type Route string

const (
	RouteDialog   Route = "dialog"
	RouteFulfill  Route = "fulfill"
	RouteModify   Route = "modify"
	RouteAnswer   Route = "answer"
	RouteGreeting Route = "greeting"
	RouteFarewell Route = "farewell"
	RouteUnsure   Route = "unsure"
	RouteFail     Route = "fail"
)

// UserIntent is the classifier label for a free-form utterance.
type UserIntent string

const (
	UserIntentQuestion     UserIntent = "QUESTION"
	UserIntentOrder        UserIntent = "ORDER"
	UserIntentModification UserIntent = "MODIFICATION"
	UserIntentFarewell     UserIntent = "FAREWELL"
	UserIntentUnsure       UserIntent = "UNSURE"
)

// RoutedTurn is the router output consumed by every entry-point node.
// Event is a private copy; nodes may edit it.
type RoutedTurn struct {
	Event  *HookEvent
	Route  Route
	Intent UserIntent
}

// TurnState is the graph-local state of one hook turn. Nodes reach it
// through compose.ProcessState.
type TurnState struct {
	SessionID string
	Route     Route
	LLMCalls  int
	CostUSD   float64
}
