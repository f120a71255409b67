package model

import "strings"

// Host intents and slots the engine knows about.
const (
	IntentOrderFood   = "OrderFood"
	IntentFallback    = "FallbackIntent"
	IntentGreeting    = "GreetingIntent"
	IntentModifyOrder = "ModifyOrderIntent"

	SlotOrderQuery          = "OrderQuery"
	SlotDrinkQuery          = "DrinkQuery"
	SlotOptionChoice        = "OptionChoice"
	SlotModificationRequest = "ModificationRequest"
)

type InvocationSource string

const (
	SourceDialog      InvocationSource = "DialogCodeHook"
	SourceFulfillment InvocationSource = "FulfillmentCodeHook"
)

type ConfirmationState string

const (
	ConfirmationNone      ConfirmationState = "None"
	ConfirmationConfirmed ConfirmationState = "Confirmed"
	ConfirmationDenied    ConfirmationState = "Denied"
)

type DialogActionType string

const (
	ActionElicitSlot    DialogActionType = "ElicitSlot"
	ActionConfirmIntent DialogActionType = "ConfirmIntent"
	ActionDelegate      DialogActionType = "Delegate"
	ActionClose         DialogActionType = "Close"
)

type FulfillmentState string

const (
	StateFulfilled  FulfillmentState = "Fulfilled"
	StateFailed     FulfillmentState = "Failed"
	StateInProgress FulfillmentState = "InProgress"
)

const ContentTypePlainText = "PlainText"

// SlotValue carries what the host recognized for one slot.
type SlotValue struct {
	OriginalValue    string   `json:"originalValue,omitempty"`
	InterpretedValue string   `json:"interpretedValue,omitempty"`
	ResolvedValues   []string `json:"resolvedValues,omitempty"`
}

type Slot struct {
	Value *SlotValue `json:"value,omitempty"`
	Shape string     `json:"shape,omitempty"`
}

// Text returns the interpreted value, falling back to the original value.
func (s *Slot) Text() string {
	if s == nil || s.Value == nil {
		return ""
	}
	if v := strings.TrimSpace(s.Value.InterpretedValue); v != "" {
		return v
	}
	return strings.TrimSpace(s.Value.OriginalValue)
}

// NewTextSlot builds a scalar slot whose original and interpreted values are text.
func NewTextSlot(text string) *Slot {
	return &Slot{
		Value: &SlotValue{OriginalValue: text, InterpretedValue: text, ResolvedValues: []string{}},
		Shape: "Scalar",
	}
}

type Intent struct {
	Name              string            `json:"name"`
	Slots             map[string]*Slot  `json:"slots,omitempty"`
	ConfirmationState ConfirmationState `json:"confirmationState,omitempty"`
	State             FulfillmentState  `json:"state,omitempty"`
}

// Clone copies the intent and its slot map so responses never alias the event.
func (i Intent) Clone() Intent {
	if i.Slots != nil {
		slots := make(map[string]*Slot, len(i.Slots))
		for k, v := range i.Slots {
			slots[k] = v
		}
		i.Slots = slots
	}
	return i
}

type DialogAction struct {
	Type         DialogActionType `json:"type"`
	SlotToElicit string           `json:"slotToElicit,omitempty"`
}

// SessionState is the host-owned per-session envelope exchanged every turn.
type SessionState struct {
	DialogAction      *DialogAction     `json:"dialogAction,omitempty"`
	Intent            Intent            `json:"intent"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
}

// HookEvent is the inbound per-turn contract.
type HookEvent struct {
	SessionID        string           `json:"sessionId"`
	InvocationSource InvocationSource `json:"invocationSource"`
	InputTranscript  string           `json:"inputTranscript"`
	SessionState     SessionState     `json:"sessionState"`
}

// SlotText returns the text of the named slot or "".
func (e *HookEvent) SlotText(name string) string {
	if e == nil || e.SessionState.Intent.Slots == nil {
		return ""
	}
	return e.SessionState.Intent.Slots[name].Text()
}

// Attributes returns the session attributes, never nil.
func (e *HookEvent) Attributes() map[string]string {
	if e == nil || e.SessionState.SessionAttributes == nil {
		return map[string]string{}
	}
	return e.SessionState.SessionAttributes
}

// Clone copies the event deeply enough that attribute and slot edits do not leak back.
func (e *HookEvent) Clone() *HookEvent {
	out := *e
	out.SessionState.Intent = e.SessionState.Intent.Clone()
	attrs := make(map[string]string, len(e.SessionState.SessionAttributes))
	for k, v := range e.SessionState.SessionAttributes {
		attrs[k] = v
	}
	out.SessionState.SessionAttributes = attrs
	return &out
}

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// PlainText builds a plain-text display message.
func PlainText(content string) Message {
	return Message{ContentType: ContentTypePlainText, Content: content}
}

// HookResponse is the outbound per-turn contract.
type HookResponse struct {
	SessionState SessionState `json:"sessionState"`
	Messages     []Message    `json:"messages,omitempty"`
}

// Action returns the dialog action type of the response.
func (r *HookResponse) Action() DialogActionType {
	if r == nil || r.SessionState.DialogAction == nil {
		return ""
	}
	return r.SessionState.DialogAction.Type
}
