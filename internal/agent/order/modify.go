package order

import (
	"context"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/menu"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// ApplyReport summarizes what a batch of changes did to the order.
type ApplyReport struct {
	Applied int
	// Skipped lists names that did not resolve to a menu item or were not in the order.
	Skipped []string
}

// ApplyChanges edits doc in place. Adds append a resolved line, removes drop
// every line with the resolved key, and updates replace the first line with
// the source key while keeping its quantity. Names that do not resolve leave
// the order untouched.
func (b *Builder) ApplyChanges(ctx context.Context, doc *model.OrderDocument, changes []model.OrderChange, snap *menu.Snapshot) ApplyReport {
	log := logx.Component("order_modifier")
	var report ApplyReport
	skip := func(name string, c model.OrderChange) {
		report.Skipped = append(report.Skipped, name)
		log.Info().Str("action", string(c.Action)).Str("item", name).Msg("change target not resolved, skipping")
	}

	for _, c := range changes {
		switch c.Action {
		case model.ChangeAdd:
			entry, ok := b.resolveEntry(ctx, c.ItemName, snap)
			if !ok {
				skip(c.ItemName, c)
				continue
			}
			qty := c.Quantity
			if qty < 1 {
				qty = 1
			}
			doc.Append(lineFor(entry, qty, menu.DetectOptionsInPhrase(c.ItemName, entry)))
			report.Applied++

		case model.ChangeRemove:
			entry, ok := b.resolveEntry(ctx, c.ItemName, snap)
			if !ok {
				skip(c.ItemName, c)
				continue
			}
			kept := doc.Items[:0]
			for _, it := range doc.Items {
				if it.Key != entry.Key {
					kept = append(kept, it)
				}
			}
			if len(kept) == len(doc.Items) {
				skip(c.ItemName, c)
				continue
			}
			doc.Items = kept
			report.Applied++

		case model.ChangeUpdate:
			from, ok := b.resolveEntry(ctx, c.FromItem, snap)
			if !ok {
				skip(c.FromItem, c)
				continue
			}
			to, ok := b.resolveEntry(ctx, c.ToItem, snap)
			if !ok {
				skip(c.ToItem, c)
				continue
			}
			replaced := false
			for i, it := range doc.Items {
				if it.Key == from.Key {
					doc.Items[i] = lineFor(to, it.Quantity, nil)
					replaced = true
					break
				}
			}
			if !replaced {
				skip(c.FromItem, c)
				continue
			}
			report.Applied++
		}
	}
	return report
}
