package parsers

import (
	"strings"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
)

var intentLabels = map[model.UserIntent]struct{}{
	model.UserIntentQuestion:     {},
	model.UserIntentOrder:        {},
	model.UserIntentModification: {},
	model.UserIntentFarewell:     {},
}

// ParseIntentLabel maps a one-word classifier answer to a UserIntent.
// Anything outside the label set is UNSURE.
func ParseIntentLabel(content string) model.UserIntent {
	label := strings.ToUpper(strings.Trim(strings.TrimSpace(content), " \t\r\n.!\"'`*"))
	if _, ok := intentLabels[model.UserIntent(label)]; ok {
		metrics.ParseOutcomesTotal.WithLabelValues("intent", "ok").Inc()
		return model.UserIntent(label)
	}
	metrics.ParseOutcomesTotal.WithLabelValues("intent", "unsure").Inc()
	return model.UserIntentUnsure
}
