package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxItems      = 100       // maximum number of list elements to process
	maxPhraseLen  = 256
	maxErrSnippet = 200 // limit error snippet size
)

// MalformedError reports a model response that does not have the expected shape.
// Decoders return it instead of a partial result.
type MalformedError struct {
	Kind    string
	Reason  string
	Snippet string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Kind, e.Reason)
}

func malformed(kind, reason, content string) *MalformedError {
	metrics.ParseOutcomesTotal.WithLabelValues(kind, "malformed").Inc()
	return &MalformedError{Kind: kind, Reason: reason, Snippet: safeSnippet(content)}
}

func clip(kind, content string) string {
	if len(content) <= maxContentLen {
		return content
	}
	logx.Warn().
		Str("component", "llm_decoder").
		Str("kind", kind).
		Int("max_len", maxContentLen).
		Int("orig_len", len(content)).
		Msg("content truncated due to size limit")
	return content[:maxContentLen]
}

// decodeTopObject extracts the embedded JSON object and splits it into raw fields.
func decodeTopObject(kind, content string) (map[string]json.RawMessage, error) {
	raw, ok := ExtractJSONObject(clip(kind, content))
	if !ok {
		return nil, malformed(kind, "no json object found", content)
	}
	if !isKind(raw, '{') {
		return nil, malformed(kind, "top level is not an object", content)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, malformed(kind, "top level is not an object", content)
	}
	return top, nil
}

// decodeList splits a raw JSON array into its elements. Anything else is rejected.
func decodeList(raw json.RawMessage) ([]json.RawMessage, bool) {
	if !isKind(string(raw), '[') {
		return nil, false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	if len(list) > maxItems {
		list = list[:maxItems]
	}
	return list, true
}

func isKind(raw string, open byte) bool {
	raw = strings.TrimSpace(raw)
	return raw != "" && raw[0] == open
}

// stringField returns a trimmed string value, or "" for any other JSON type.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	s = strings.TrimSpace(s)
	if !utf8.ValidString(s) || len(s) > maxPhraseLen {
		return ""
	}
	return s
}

// quantityField accepts a number or a numeric string. Missing, invalid or
// non-positive values default to 1.
func quantityField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 1
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 1
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 1
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f > math.MaxInt32 {
		return 1
	}
	return int(f)
}

// optionsField decodes an options object keeping key order. Non-scalar values
// and non-object payloads are ignored.
func optionsField(fields map[string]json.RawMessage, key string) model.OptionChoices {
	raw, ok := fields[key]
	if !ok || !isKind(string(raw), '{') {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var opts model.OptionChoices
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return opts
		}
		name, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return opts
		}
		name = strings.TrimSpace(name)
		value := scalarText(v)
		if name == "" || value == "" {
			continue
		}
		opts = opts.Set(name, value)
	}
	return opts
}

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// --- helpers ---

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
