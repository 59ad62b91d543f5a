// Package fieldpath resolves dot-separated paths like "style.tone" or
// "items.1" against a decoded document.
package fieldpath

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/toonvert/internal/errors"
	"github.com/mcncl/toonvert/internal/models"
)

// Result is the outcome of resolving a path. Found is false when the path
// names a missing key or descends into a scalar; that is distinct from a
// found JSON null, even though both render as the empty string.
type Result struct {
	Value models.JSONValue
	Found bool
}

// Resolve walks root along the dot-separated path. Each segment is an object
// key, or an array index when the current value is an array and the segment
// is all digits. A missing key or a non-traversable value yields a not-found
// Result; an out-of-range index is an error.
func Resolve(root models.JSONValue, path string) (Result, error) {
	cur := root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case models.JSONObject:
			v, ok := node[seg]
			if !ok {
				return Result{}, nil
			}
			cur = v
		case models.JSONArray:
			if !isDigits(seg) {
				return Result{}, nil
			}
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return Result{}, errors.NewExtractError(fmt.Sprintf("invalid array index %q", seg), err)
			}
			if idx >= len(node) {
				return Result{}, errors.NewExtractError(
					fmt.Sprintf("index %d out of range for array of length %d", idx, len(node)), nil)
			}
			cur = node[idx]
		default:
			return Result{}, nil
		}
	}
	return Result{Value: cur, Found: true}, nil
}

// Render converts a resolution result into the tool's output text: compact
// JSON for objects and arrays, the plain string form for scalars, and the
// empty string for not-found results and JSON null.
func Render(res Result) (string, error) {
	if !res.Found || res.Value == nil {
		return "", nil
	}
	switch v := res.Value.(type) {
	case models.JSONObject, models.JSONArray:
		return CompactJSON(res.Value)
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case json.Number:
		return v.String(), nil
	case string:
		return v, nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// CompactJSON renders a value as single-line JSON with a space after ':' and
// ',' and keys in sorted order. This matches the output format existing
// callers scrape, so the separators are part of the contract.
func CompactJSON(v models.JSONValue) (string, error) {
	var sb strings.Builder
	if err := writeCompact(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeCompact(sb *strings.Builder, v models.JSONValue) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if val {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case json.Number:
		sb.WriteString(val.String())
	case string:
		b, err := marshalString(val)
		if err != nil {
			return err
		}
		sb.Write(b)
	case models.JSONObject:
		sb.WriteByte('{')
		for i, key := range sortedKeys(val) {
			if i > 0 {
				sb.WriteString(", ")
			}
			kb, err := marshalString(key)
			if err != nil {
				return err
			}
			sb.Write(kb)
			sb.WriteString(": ")
			if err := writeCompact(sb, val[key]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case models.JSONArray:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteString(", ")
			}
			if err := writeCompact(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	default:
		return fmt.Errorf("cannot render value of type %T", v)
	}
	return nil
}

// marshalString renders a JSON string literal without the HTML escaping
// json.Marshal applies by default.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func sortedKeys(obj models.JSONObject) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
