package model

import (
	"strconv"
	"strings"
)

// OptionChoice is one chosen value under an option group's display name.
type OptionChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OptionChoices keeps option choices in insertion order with unique names.
type OptionChoices []OptionChoice

// Get returns the value stored under name.
func (o OptionChoices) Get(name string) (string, bool) {
	for _, c := range o {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Set replaces the value stored under name or appends a new choice.
func (o OptionChoices) Set(name, value string) OptionChoices {
	for i := range o {
		if o[i].Name == name {
			o[i].Value = value
			return o
		}
	}
	return append(o, OptionChoice{Name: name, Value: value})
}

// Merge returns a copy of o overlaid with every choice in other.
func (o OptionChoices) Merge(other OptionChoices) OptionChoices {
	out := o.Clone()
	for _, c := range other {
		out = out.Set(c.Name, c.Value)
	}
	return out
}

func (o OptionChoices) Clone() OptionChoices {
	if o == nil {
		return nil
	}
	out := make(OptionChoices, len(o))
	copy(out, o)
	return out
}

// UniqueValues returns the distinct values in insertion order.
func (o OptionChoices) UniqueValues() []string {
	seen := make(map[string]struct{}, len(o))
	values := make([]string, 0, len(o))
	for _, c := range o {
		if _, ok := seen[c.Value]; ok {
			continue
		}
		seen[c.Value] = struct{}{}
		values = append(values, c.Value)
	}
	return values
}

// OrderLineItem is one entry of an order. An empty Key means the phrase was not
// resolved against the catalog. Category, Price and ItemNumber are frozen at match time.
type OrderLineItem struct {
	ItemName   string        `json:"item_name"`
	Key        string        `json:"normalized_key,omitempty"`
	Quantity   int           `json:"quantity"`
	Options    OptionChoices `json:"options,omitempty"`
	Category   string        `json:"category,omitempty"`
	Price      float64       `json:"price,omitempty"`
	ItemNumber int           `json:"item_number,omitempty"`
}

// Resolved reports whether the line references a catalog entry.
func (l OrderLineItem) Resolved() bool {
	return l.Key != ""
}

// IsDrink reports whether the line was matched to a beverage.
func (l OrderLineItem) IsDrink() bool {
	return l.Category != "" && IsDrinkCategory(l.Category)
}

// IsFood reports whether the line was matched to a non-beverage entry.
func (l OrderLineItem) IsFood() bool {
	return l.Category != "" && !IsDrinkCategory(l.Category)
}

func (l OrderLineItem) Clone() OrderLineItem {
	l.Options = l.Options.Clone()
	return l
}

// OrderDocument is the ordered list of line items carried across turns.
type OrderDocument struct {
	Items []OrderLineItem `json:"order_items"`
}

func (d *OrderDocument) Empty() bool {
	return d == nil || len(d.Items) == 0
}

// FirstUnresolved returns the index of the first unresolved line, or -1.
func (d *OrderDocument) FirstUnresolved() int {
	for i, it := range d.Items {
		if !it.Resolved() {
			return i
		}
	}
	return -1
}

func (d *OrderDocument) HasFood() bool {
	for _, it := range d.Items {
		if it.IsFood() {
			return true
		}
	}
	return false
}

func (d *OrderDocument) HasDrink() bool {
	for _, it := range d.Items {
		if it.IsDrink() {
			return true
		}
	}
	return false
}

func (d *OrderDocument) Append(items ...OrderLineItem) {
	d.Items = append(d.Items, items...)
}

// RemoveAt drops the line at index i, preserving order.
func (d *OrderDocument) RemoveAt(i int) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
}

// Clone returns a deep copy safe to mutate independently.
func (d *OrderDocument) Clone() *OrderDocument {
	if d == nil {
		return nil
	}
	out := &OrderDocument{Items: make([]OrderLineItem, len(d.Items))}
	for i, it := range d.Items {
		out.Items[i] = it.Clone()
	}
	return out
}

// Summary renders "<qty> <name> (<values>)" parts joined by ", ".
func (d *OrderDocument) Summary() string {
	parts := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		part := strconv.Itoa(it.Quantity) + " " + it.ItemName
		if values := it.Options.UniqueValues(); len(values) > 0 {
			part += " (" + strings.Join(values, ", ") + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// ShortSummary renders "<qty> <name>" parts without options.
func (d *OrderDocument) ShortSummary() string {
	parts := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		parts = append(parts, strconv.Itoa(it.Quantity)+" "+it.ItemName)
	}
	return strings.Join(parts, ", ")
}
