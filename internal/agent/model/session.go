package model

import (
	"encoding/json"
	"fmt"
)

// Reserved session attribute keys. Everything else passes through untouched.
const (
	AttrParsedOrder       = "parsedOrder"
	AttrItemToConfigure   = "currentItemToConfigure"
	AttrOptionToConfigure = "optionToConfigure"
	AttrParseComplete     = "initialParseComplete"
	AttrFallbackOrder     = "is_fallback_order"
	AttrDrinkTurnComplete = "drinkTurnComplete"
	attrTrue              = "true"
)

var reservedAttrs = map[string]struct{}{
	AttrParsedOrder:       {},
	AttrItemToConfigure:   {},
	AttrOptionToConfigure: {},
	AttrParseComplete:     {},
	AttrFallbackOrder:     {},
	AttrDrinkTurnComplete: {},
}

// Session is the typed view of the host session attributes.
// It is decoded at the start of a turn and encoded into the response.
type Session struct {
	Order         *OrderDocument
	Configuring   *OrderLineItem
	PendingOption string
	ParseComplete bool
	FallbackOrder bool
	DrinkTurnDone bool

	// Extra holds non-reserved attributes owned by the host.
	Extra map[string]string
}

// ClearPending drops the option-elicitation markers.
func (s *Session) ClearPending() {
	s.Configuring = nil
	s.PendingOption = ""
}

// DecodeSession parses host attributes. A malformed reserved value is an error.
func DecodeSession(attrs map[string]string) (Session, error) {
	var s Session
	for k, v := range attrs {
		if _, ok := reservedAttrs[k]; ok {
			continue
		}
		if s.Extra == nil {
			s.Extra = make(map[string]string)
		}
		s.Extra[k] = v
	}

	if raw := attrs[AttrParsedOrder]; raw != "" {
		var doc OrderDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return Session{}, fmt.Errorf("decode %s: %w", AttrParsedOrder, err)
		}
		s.Order = &doc
	}
	if raw := attrs[AttrItemToConfigure]; raw != "" {
		var item OrderLineItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return Session{}, fmt.Errorf("decode %s: %w", AttrItemToConfigure, err)
		}
		s.Configuring = &item
	}
	s.PendingOption = attrs[AttrOptionToConfigure]
	s.ParseComplete = attrs[AttrParseComplete] == attrTrue
	s.FallbackOrder = attrs[AttrFallbackOrder] == attrTrue
	s.DrinkTurnDone = attrs[AttrDrinkTurnComplete] == attrTrue
	return s, nil
}

// Encode renders the session back into flat host attributes.
func (s Session) Encode() (map[string]string, error) {
	attrs := make(map[string]string, len(s.Extra)+len(reservedAttrs))
	for k, v := range s.Extra {
		attrs[k] = v
	}
	if s.Order != nil {
		b, err := json.Marshal(s.Order)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", AttrParsedOrder, err)
		}
		attrs[AttrParsedOrder] = string(b)
	}
	if s.Configuring != nil {
		b, err := json.Marshal(s.Configuring)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", AttrItemToConfigure, err)
		}
		attrs[AttrItemToConfigure] = string(b)
	}
	if s.PendingOption != "" {
		attrs[AttrOptionToConfigure] = s.PendingOption
	}
	if s.ParseComplete {
		attrs[AttrParseComplete] = attrTrue
	}
	if s.FallbackOrder {
		attrs[AttrFallbackOrder] = attrTrue
	}
	if s.DrinkTurnDone {
		attrs[AttrDrinkTurnComplete] = attrTrue
	}
	return attrs, nil
}
