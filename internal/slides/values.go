package slides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Text tolerant scalar. Strings, numbers and booleans decode to their text;
// objects decode to their name/title/label; arrays of scalars are joined.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	case '{':
		m, err := object(b)
		if err != nil {
			return err
		}
		*t = pick(m, "name", "title", "label", "value")
	case '[':
		var items []Text
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it != "" {
				parts = append(parts, string(it))
			}
		}
		*t = Text(strings.Join(parts, ", "))
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Flag tolerant boolean: true, "true", "yes", 1
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var t Text
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	switch strings.ToLower(string(t)) {
	case "true", "yes", "y", "1":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Field labelled scalar value, e.g. {"Man Hours", "12000"}
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ignoredSummaryKeys bookkeeping columns never shown on a slide
var ignoredSummaryKeys = map[string]bool{
	"id":         true,
	"projectId":  true,
	"project_id": true,
	"createdAt":  true,
	"updatedAt":  true,
	"created_at": true,
	"updated_at": true,
	"createdBy":  true,
	"updatedBy":  true,
}

// summaryFields top-level scalar fields of a JSON object, in the order the
// decoder sees them. Nested objects and lists are skipped. A bare scalar
// (e.g. a free-text note) yields a single "Notes" field; an array yields nil.
func summaryFields(raw json.RawMessage) []Field {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '[' {
		return nil
	}
	if raw[0] != '{' {
		var t Text
		if err := t.UnmarshalJSON(raw); err != nil || t == "" {
			return nil
		}
		return []Field{{Key: "notes", Label: "Notes", Value: string(t)}}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var out []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return out
		}
		value = bytes.TrimSpace(value)
		if ignoredSummaryKeys[key] || len(value) == 0 || value[0] == '{' || value[0] == '[' {
			continue
		}
		var t Text
		if err := t.UnmarshalJSON(value); err != nil || t == "" {
			continue
		}
		out = append(out, Field{Key: key, Label: Humanize(key), Value: string(t)})
	}
	return out
}

// Humanize "manHours" / "man_hours" -> "Man Hours"
func Humanize(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}

func object(b []byte) (map[string]json.RawMessage, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// pick first non-empty text among keys
func pick(m map[string]json.RawMessage, keys ...string) Text {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var t Text
		if err := t.UnmarshalJSON(raw); err == nil && t != "" {
			return t
		}
	}
	return ""
}

func pickFlag(m map[string]json.RawMessage, keys ...string) (Flag, bool) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var f Flag
		if err := f.UnmarshalJSON(raw); err == nil {
			return f, true
		}
	}
	return false, false
}

// isTruthy non-null and not false, 0 or ""
func isTruthy(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	switch string(t) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// arrayLen length of a JSON array, -1 if raw is not an array
func arrayLen(raw json.RawMessage) int {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || t[0] != '[' {
		return -1
	}
	var items []json.RawMessage
	if err := json.Unmarshal(t, &items); err != nil {
		return -1
	}
	return len(items)
}

// listElements the elements of raw, which is either the array itself or an
// object carrying the array under one of keys. Anything else yields nil.
func listElements(raw json.RawMessage, keys ...string) []json.RawMessage {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return nil
	}
	if t[0] == '{' {
		m, err := object(t)
		if err != nil {
			return nil
		}
		t = nil
		for _, k := range keys {
			if inner, ok := m[k]; ok && arrayLen(inner) >= 0 {
				t = bytes.TrimSpace(inner)
				break
			}
		}
		if t == nil {
			return nil
		}
	}
	if t[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(t, &items); err != nil {
		return nil
	}
	return items
}

// decodeList decodes the list found by listElements element by element.
// Elements that do not decode as T (null, scalars, wrong shapes) are skipped.
func decodeList[T any](raw json.RawMessage, keys ...string) []T {
	var out []T
	for _, el := range listElements(raw, keys...) {
		var v T
		if err := json.Unmarshal(el, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
