package order

import (
	"context"
	"strings"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/menu"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// drinkRefusals are drink-turn answers that mean "no drink".
var drinkRefusals = map[string]struct{}{
	"no":           {},
	"none":         {},
	"no thanks":    {},
	"no thank you": {},
	"not today":    {},
	"nothing":      {},
	"nope":         {},
}

// IsDrinkRefusal reports whether a drink-turn answer declines the offer.
func IsDrinkRefusal(text string) bool {
	n := strings.Trim(menu.Normalize(text), ".!,")
	_, ok := drinkRefusals[n]
	return ok
}

// Builder resolves requests against a catalog snapshot and produces line items.
type Builder struct {
	resolver    *menu.Resolver
	dishCutoff  float64
	drinkCutoff float64
}

func NewBuilder(resolver *menu.Resolver, dishCutoff, drinkCutoff float64) *Builder {
	if dishCutoff <= 0 {
		dishCutoff = menu.DefaultCutoff
	}
	if drinkCutoff <= 0 {
		drinkCutoff = menu.DefaultCutoff
	}
	return &Builder{resolver: resolver, dishCutoff: dishCutoff, drinkCutoff: drinkCutoff}
}

// BuildLine resolves one request. An unmatched phrase becomes an unresolved
// line that keeps the customer's wording and supplied options.
func (b *Builder) BuildLine(ctx context.Context, req model.LineRequest, snap *menu.Snapshot) model.OrderLineItem {
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	m := b.resolver.Resolve(ctx, req.Phrase, snap, b.dishCutoff)
	entry, ok := snap.Entry(m.Key)
	if !ok {
		return model.OrderLineItem{ItemName: req.Phrase, Quantity: qty, Options: req.Options.Clone()}
	}
	return lineFor(entry, qty, menu.ResolveOptions(req.Phrase, req.Options, entry))
}

// BuildDrink resolves a drink-turn answer into a single line. The second
// result is false when nothing on the menu matched.
func (b *Builder) BuildDrink(ctx context.Context, text string, snap *menu.Snapshot) (model.OrderLineItem, bool) {
	m := b.resolver.Resolve(ctx, text, snap, b.drinkCutoff)
	entry, ok := snap.Entry(m.Key)
	if !ok {
		logx.Info().Str("component", "order_builder").Str("drink", text).Msg("drink not found on menu, skipping")
		return model.OrderLineItem{}, false
	}
	return lineFor(entry, 1, menu.DetectOptionsInPhrase(text, entry)), true
}

func (b *Builder) resolveEntry(ctx context.Context, name string, snap *menu.Snapshot) (*model.CatalogEntry, bool) {
	return snap.Entry(b.resolver.Resolve(ctx, name, snap, b.dishCutoff).Key)
}

// lineFor copies the entry's display name, category, price and number into a
// new line. These stay frozen even if the catalog changes later.
func lineFor(entry *model.CatalogEntry, qty int, opts model.OptionChoices) model.OrderLineItem {
	return model.OrderLineItem{
		ItemName:   entry.Name,
		Key:        entry.Key,
		Quantity:   qty,
		Options:    opts,
		Category:   entry.Category,
		Price:      entry.Price,
		ItemNumber: entry.ItemNumber,
	}
}
