package model

import "strings"

// ChoiceRecord is one selectable value of an option as stored in the catalog.
type ChoiceRecord struct {
	Name string `json:"name" yaml:"name"`
}

// OptionRecord is an option group as stored in the catalog.
type OptionRecord struct {
	Name     string         `json:"name" yaml:"name"`
	Choices  []ChoiceRecord `json:"items" yaml:"items"`
	Required bool           `json:"required" yaml:"required"`
}

// CatalogRecord is the raw shape returned by a catalog store bulk read.
type CatalogRecord struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string         `json:"category" yaml:"category"`
	Price       float64        `json:"price" yaml:"price"`
	ItemNumber  int            `json:"item_number" yaml:"item_number"`
	Options     []OptionRecord `json:"options,omitempty" yaml:"options,omitempty"`
	Embedding   []float32      `json:"embedding,omitempty" yaml:"embedding,omitempty"`
}

// OptionGroup is a normalized set of mutually exclusive choices attached to one entry.
type OptionGroup struct {
	Name     string   // display name
	Key      string   // normalized name
	Choices  []string // normalized, declaration order
	Required bool
}

// CatalogEntry is one sellable item keyed by its normalized name.
type CatalogEntry struct {
	Key         string
	Name        string
	Description string
	Category    string
	Price       float64
	ItemNumber  int
	Options     []OptionGroup
	Embedding   []float32
}

// IsDrinkCategory reports whether a category name denotes beverages.
func IsDrinkCategory(category string) bool {
	c := strings.ToLower(category)
	return strings.Contains(c, "drink") || strings.Contains(c, "beverage")
}
