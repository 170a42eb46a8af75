package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Arguments is a coerced, plain-Go view of a tool call's arguments. By the
// time a handler sees it, every value is a native scalar, list or map and
// the caller's auth token has been injected.
type Arguments map[string]any

// tokenField is always injected by the loop and never accepted from the
// model.
const tokenField = "token"

const recurrenceField = "recurrence"

// Fields that are semantically integers no matter how the model encoded
// them on the wire.
var intFields = map[string]struct{}{
	"room_id":    {},
	"meeting_id": {},
	"capacity":   {},
	"duration":   {},
	"interval":   {},
}

// Fields that are lists of integer identifiers.
var intListFields = map[string]struct{}{
	"participant_ids": {},
	"device_ids":      {},
}

// Coerce applies the per-field coercion table to raw model arguments and
// injects the auth token. Unknown fields pass through unchanged; a
// model-supplied token is discarded. A malformed id list is an error rather
// than a silently shortened list, so the model can see what it got wrong and
// retry. Coercion is idempotent: applying it to already-coerced arguments
// yields the same result.
func Coerce(raw map[string]any, token string) (Arguments, error) {
	out := make(Arguments, len(raw)+1)
	for key, value := range raw {
		if key == tokenField {
			continue
		}
		if _, ok := intFields[key]; ok {
			if n, ok := toInt(value); ok {
				out[key] = n
			} else {
				out[key] = value
			}
			continue
		}
		if _, ok := intListFields[key]; ok {
			list, err := toIntList(value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			out[key] = list
			continue
		}
		if key == recurrenceField {
			out[key] = flattenRecurrence(value)
			continue
		}
		out[key] = value
	}
	out[tokenField] = token
	return out, nil
}

// flattenRecurrence turns the model's composite recurrence value into a
// plain map, with the nested daysOfWeek independently flattened into an
// ordered list of strings.
func flattenRecurrence(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	if days, ok := m["daysOfWeek"]; ok {
		out["daysOfWeek"] = toStringList(days)
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

func toIntList(v any) ([]int, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []int:
		return list, nil
	case []any:
		out := make([]int, 0, len(list))
		for _, item := range list {
			n, ok := toInt(item)
			if !ok {
				return nil, fmt.Errorf("cannot convert %v to an integer id", item)
			}
			out = append(out, n)
		}
		return out, nil
	case []float64:
		out := make([]int, 0, len(list))
		for _, f := range list {
			out = append(out, int(f))
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list of integer ids, got %T", v)
}

func toStringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

// ================ Accessors ================

func (a Arguments) Token() string {
	s, _ := a[tokenField].(string)
	return s
}

func (a Arguments) String(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a Arguments) Int(key string) int {
	n, _ := toInt(a[key])
	return n
}

func (a Arguments) IntList(key string) []int {
	list, _ := toIntList(a[key])
	return list
}

func (a Arguments) Map(key string) map[string]any {
	m, _ := a[key].(map[string]any)
	return m
}
