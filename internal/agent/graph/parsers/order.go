package parsers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/orderbot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

const orderItemsKey = "order_items"

// DecodeOrder validates an order-extraction response. The object must carry an
// "order_items" list; otherwise a *MalformedError is returned. Individual list
// elements that are not usable items are dropped without failing the decode.
func DecodeOrder(content string) (out model.ParsedOrder, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "order_decoder").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("order decoder panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			out = model.ParsedOrder{}
		}
	}()

	top, err := decodeTopObject("order", content)
	if err != nil {
		return model.ParsedOrder{}, err
	}
	itemsRaw, ok := top[orderItemsKey]
	if !ok {
		return model.ParsedOrder{}, malformed("order", "missing order_items", content)
	}
	list, ok := decodeList(itemsRaw)
	if !ok {
		return model.ParsedOrder{}, malformed("order", "order_items is not a list", content)
	}

	out.Items = make([]model.LineRequest, 0, len(list))
	skipped := 0
	for _, raw := range list {
		line, ok := decodeLine(raw)
		if !ok {
			skipped++
			continue
		}
		out.Items = append(out.Items, line)
	}
	if skipped > 0 {
		logx.Debug().Str("component", "order_decoder").Int("skipped", skipped).Msg("dropped unusable order items")
	}
	metrics.ParseOutcomesTotal.WithLabelValues("order", "ok").Inc()
	return out, nil
}

func decodeLine(raw json.RawMessage) (model.LineRequest, bool) {
	if !isKind(string(raw), '{') {
		return model.LineRequest{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.LineRequest{}, false
	}
	phrase := stringField(fields, "item_name")
	if phrase == "" {
		return model.LineRequest{}, false
	}
	return model.LineRequest{
		Phrase:   phrase,
		Quantity: quantityField(fields, "quantity"),
		Options:  optionsField(fields, "options"),
	}, true
}
