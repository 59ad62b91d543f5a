package toon

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type encoder struct {
	indent    int
	delimiter string
	lines     []string
}

func newEncoder(indent int, delimiter string) *encoder {
	return &encoder{indent: indent, delimiter: delimiter}
}

// encode renders a normalized value as TOON text. The returned text has no
// trailing newline; an empty object renders as the empty string.
func (e *encoder) encode(v interface{}) (string, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		if err := e.writeObject(val, 0); err != nil {
			return "", err
		}
	case []interface{}:
		if err := e.writeArray("", val, 0); err != nil {
			return "", err
		}
	default:
		lit, err := e.scalar(val)
		if err != nil {
			return "", err
		}
		e.lines = append(e.lines, lit)
	}
	return strings.Join(e.lines, "\n"), nil
}

func (e *encoder) pad(depth int) string {
	return strings.Repeat(" ", depth*e.indent)
}

// writeObject emits the fields of an object at the given depth, keys sorted
// for deterministic output.
func (e *encoder) writeObject(obj map[string]interface{}, depth int) error {
	for _, key := range sortedKeys(obj) {
		if err := e.writeField(key, obj[key], depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeField(key string, v interface{}, depth int) error {
	prefix := e.pad(depth) + encodeKey(key)
	switch val := v.(type) {
	case map[string]interface{}:
		// An empty object is a bare "key:" line with no children.
		e.lines = append(e.lines, prefix+":")
		if len(val) > 0 {
			return e.writeObject(val, depth+1)
		}
		return nil
	case []interface{}:
		return e.writeArray(key, val, depth)
	default:
		lit, err := e.scalar(val)
		if err != nil {
			return err
		}
		e.lines = append(e.lines, prefix+": "+lit)
		return nil
	}
}

// writeArray emits an array with its length marker. key is empty for keyless
// headers (root arrays and arrays nested in list items). The layout is chosen
// per element shape: inline for all-scalar arrays, tabular for uniform flat
// objects, list form otherwise.
func (e *encoder) writeArray(key string, arr []interface{}, depth int) error {
	head := e.pad(depth)
	if key != "" {
		head += encodeKey(key)
	}
	n := len(arr)

	if allScalars(arr) {
		cells := make([]string, n)
		for i, item := range arr {
			lit, err := e.scalar(item)
			if err != nil {
				return err
			}
			cells[i] = lit
		}
		line := fmt.Sprintf("%s[%d]:", head, n)
		if n > 0 {
			line += " " + strings.Join(cells, e.delimiter)
		}
		e.lines = append(e.lines, line)
		return nil
	}

	if fields, ok := tabularFields(arr); ok {
		heads := make([]string, len(fields))
		for i, f := range fields {
			heads[i] = encodeFieldName(f, e.delimiter)
		}
		e.lines = append(e.lines, fmt.Sprintf("%s[%d]{%s}:", head, n, strings.Join(heads, e.delimiter)))
		for _, item := range arr {
			obj := item.(map[string]interface{})
			cells := make([]string, len(fields))
			for i, f := range fields {
				lit, err := e.scalar(obj[f])
				if err != nil {
					return err
				}
				cells[i] = lit
			}
			e.lines = append(e.lines, e.pad(depth+1)+strings.Join(cells, e.delimiter))
		}
		return nil
	}

	e.lines = append(e.lines, fmt.Sprintf("%s[%d]:", head, n))
	for _, item := range arr {
		if err := e.writeListItem(item, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// writeListItem emits one "- " item. Containers render into a sub-encoder at
// relative depth zero and are re-anchored under the dash, so an item's content
// column is always two columns past the dash regardless of indent width.
func (e *encoder) writeListItem(v interface{}, depth int) error {
	base := e.pad(depth)

	sub := newEncoder(e.indent, e.delimiter)
	switch val := v.(type) {
	case map[string]interface{}:
		if len(val) == 0 {
			e.lines = append(e.lines, base+"-")
			return nil
		}
		if err := sub.writeObject(val, 0); err != nil {
			return err
		}
	case []interface{}:
		if err := sub.writeArray("", val, 0); err != nil {
			return err
		}
	default:
		lit, err := e.scalar(val)
		if err != nil {
			return err
		}
		e.lines = append(e.lines, base+"- "+lit)
		return nil
	}

	for i, line := range sub.lines {
		if i == 0 {
			e.lines = append(e.lines, base+"- "+line)
		} else {
			e.lines = append(e.lines, base+"  "+line)
		}
	}
	return nil
}

// scalar renders a leaf value as a TOON literal.
func (e *encoder) scalar(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case json.Number:
		return val.String(), nil
	case string:
		if needsQuote(val, e.delimiter) {
			return quoteString(val), nil
		}
		return val, nil
	default:
		return "", fmt.Errorf("toon: cannot encode value of type %T", v)
	}
}

var bareKeyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

func encodeKey(k string) string {
	if bareKeyRe.MatchString(k) {
		return k
	}
	return quoteString(k)
}

// encodeFieldName is like encodeKey but also quotes names that would split on
// the row delimiter inside a tabular header.
func encodeFieldName(f, delimiter string) string {
	if bareKeyRe.MatchString(f) && !strings.Contains(f, delimiter) {
		return f
	}
	return quoteString(f)
}

// needsQuote reports whether a string cannot be written bare: it would be
// misread as another literal, collide with structural syntax, or split on the
// delimiter.
func needsQuote(s, delimiter string) bool {
	if s == "" {
		return true
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	switch s {
	case "true", "false", "null", "-":
		return true
	}
	if isJSONNumber(s) {
		return true
	}
	if strings.HasPrefix(s, "- ") {
		return true
	}
	switch s[0] {
	case '"', '[', '{':
		return true
	}
	for _, r := range s {
		if r == ':' || r == '"' || r < 0x20 || r == 0x7f {
			return true
		}
	}
	return strings.Contains(s, delimiter)
}

// quoteString renders s as a JSON string literal, which is exactly the quoted
// form TOON uses.
func quoteString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

var jsonNumberRe = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func isJSONNumber(s string) bool {
	return jsonNumberRe.MatchString(s)
}

func allScalars(arr []interface{}) bool {
	for _, item := range arr {
		switch item.(type) {
		case map[string]interface{}, []interface{}:
			return false
		}
	}
	return true
}

// tabularFields reports whether every element of arr is an object with the
// same non-empty key set and only scalar values, returning the shared field
// names in sorted order.
func tabularFields(arr []interface{}) ([]string, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	first, ok := arr[0].(map[string]interface{})
	if !ok || len(first) == 0 {
		return nil, false
	}
	fields := sortedKeys(first)
	for _, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok || len(obj) != len(fields) {
			return nil, false
		}
		for _, f := range fields {
			v, present := obj[f]
			if !present {
				return nil, false
			}
			switch v.(type) {
			case map[string]interface{}, []interface{}:
				return nil, false
			}
		}
	}
	return fields, true
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
