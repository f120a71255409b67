package model

// LineRequest is one item extracted from an utterance before menu resolution.
type LineRequest struct {
	Phrase   string
	Quantity int
	Options  OptionChoices
}

// ParsedOrder is the validated result of decoding an order-extraction response.
type ParsedOrder struct {
	Items []LineRequest
}

type ChangeAction string

const (
	ChangeAdd    ChangeAction = "add"
	ChangeRemove ChangeAction = "remove"
	ChangeUpdate ChangeAction = "update"
)

// OrderChange is one edit requested against an unconfirmed order.
// FromItem and ToItem are only set for updates.
type OrderChange struct {
	Action   ChangeAction
	ItemName string
	Quantity int
	FromItem string
	ToItem   string
}
