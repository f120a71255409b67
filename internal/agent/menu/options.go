package menu

import (
	"strings"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
)

// DetectOptionsInPhrase finds option choices spoken as part of the item phrase,
// e.g. "beef gyoza". A choice counts when it appears as whole words. At most
// one choice is recorded per group, the first in declaration order.
func DetectOptionsInPhrase(phrase string, entry *model.CatalogEntry) model.OptionChoices {
	if entry == nil {
		return nil
	}
	padded := " " + Normalize(phrase) + " "
	var detected model.OptionChoices
	for _, g := range entry.Options {
		for _, choice := range g.Choices {
			if choice != "" && strings.Contains(padded, " "+choice+" ") {
				detected = detected.Set(g.Name, choice)
				break
			}
		}
	}
	return detected
}

// ReconcileOptions re-keys supplied options under the matching group's display
// name. A key matches a group when the normalized forms are equal or one
// contains the other. Unmatched pairs pass through unchanged.
func ReconcileOptions(supplied model.OptionChoices, entry *model.CatalogEntry) model.OptionChoices {
	var out model.OptionChoices
	for _, opt := range supplied {
		name := opt.Name
		if g := findGroup(opt.Name, entry); g != nil {
			name = g.Name
		}
		out = out.Set(name, opt.Value)
	}
	return out
}

// ResolveOptions merges in-phrase detections with supplied options.
// Supplied values win over detected ones for the same group.
func ResolveOptions(phrase string, supplied model.OptionChoices, entry *model.CatalogEntry) model.OptionChoices {
	return DetectOptionsInPhrase(phrase, entry).Merge(ReconcileOptions(supplied, entry))
}

// MissingRequired returns the first required group the line has no choice for,
// in declaration order, or nil when every required group is satisfied.
func MissingRequired(item model.OrderLineItem, entry *model.CatalogEntry) *model.OptionGroup {
	if entry == nil {
		return nil
	}
	for i := range entry.Options {
		g := entry.Options[i]
		if !g.Required {
			continue
		}
		if !hasChoiceFor(item.Options, g) {
			return &g
		}
	}
	return nil
}

func hasChoiceFor(opts model.OptionChoices, g model.OptionGroup) bool {
	for _, o := range opts {
		if o.Name == g.Name || Normalize(o.Name) == g.Key {
			return true
		}
	}
	return false
}

func findGroup(name string, entry *model.CatalogEntry) *model.OptionGroup {
	if entry == nil {
		return nil
	}
	key := Normalize(name)
	if key == "" {
		return nil
	}
	for i := range entry.Options {
		if entry.Options[i].Key == key {
			return &entry.Options[i]
		}
	}
	for i := range entry.Options {
		g := &entry.Options[i]
		if strings.Contains(g.Key, key) || strings.Contains(key, g.Key) {
			return g
		}
	}
	return nil
}
