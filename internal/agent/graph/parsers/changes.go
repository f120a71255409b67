package parsers

import (
	"encoding/json"
	"strings"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// DecodeChanges validates a modification response of the form
// {"changes": [{"action": ..., "item_name": ..., ...}]}. A missing "changes"
// key means no edits; a non-list value is malformed. Unknown actions and
// incomplete records are skipped.
func DecodeChanges(content string) ([]model.OrderChange, error) {
	top, err := decodeTopObject("changes", content)
	if err != nil {
		return nil, err
	}
	raw, ok := top["changes"]
	if !ok {
		metrics.ParseOutcomesTotal.WithLabelValues("changes", "ok").Inc()
		return nil, nil
	}
	list, ok := decodeList(raw)
	if !ok {
		return nil, malformed("changes", "changes is not a list", content)
	}

	changes := make([]model.OrderChange, 0, len(list))
	for _, r := range list {
		if c, ok := decodeChange(r); ok {
			changes = append(changes, c)
		} else {
			logx.Debug().Str("component", "changes_decoder").Str("record", safeSnippet(string(r))).Msg("skipping change record")
		}
	}
	metrics.ParseOutcomesTotal.WithLabelValues("changes", "ok").Inc()
	return changes, nil
}

func decodeChange(raw json.RawMessage) (model.OrderChange, bool) {
	if !isKind(string(raw), '{') {
		return model.OrderChange{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.OrderChange{}, false
	}

	c := model.OrderChange{
		Action:   model.ChangeAction(strings.ToLower(stringField(fields, "action"))),
		ItemName: stringField(fields, "item_name"),
	}
	switch c.Action {
	case model.ChangeAdd:
		c.Quantity = quantityField(fields, "quantity")
		return c, c.ItemName != ""
	case model.ChangeRemove:
		return c, c.ItemName != ""
	case model.ChangeUpdate:
		c.FromItem = stringField(fields, "from_item")
		c.ToItem = stringField(fields, "to_item")
		if c.FromItem == "" {
			c.FromItem = c.ItemName
		}
		return c, c.FromItem != "" && c.ToItem != ""
	default:
		return model.OrderChange{}, false
	}
}
