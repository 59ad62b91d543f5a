package toon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError describes a TOON parse failure at a specific input line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("toon: line %d: %s", e.Line, e.Msg)
}

// line is one non-blank input line with its indentation stripped off. A block
// is a run of lines sharing the column of its first line; children sit at any
// deeper column, so list-item content (anchored two columns past the dash)
// parses the same way as indent-multiple nesting.
type line struct {
	num  int // 1-based position in the input
	col  int // count of leading spaces
	text string
}

type decoder struct {
	strict    bool
	delimiter string
	lines     []line
	pos       int
}

func (d *decoder) errf(num int, format string, args ...interface{}) error {
	return &SyntaxError{Line: num, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) decode(data string) (interface{}, error) {
	if err := d.scan(data); err != nil {
		return nil, err
	}
	if len(d.lines) == 0 {
		return map[string]interface{}{}, nil
	}
	if d.lines[0].col != 0 {
		return nil, d.errf(d.lines[0].num, "unexpected indentation at top level")
	}
	v, err := d.parseBlock(0)
	if err != nil {
		return nil, err
	}
	if d.pos < len(d.lines) {
		return nil, d.errf(d.lines[d.pos].num, "unexpected trailing content")
	}
	return v, nil
}

// scan splits the input into indentation-classified lines, skipping blanks.
func (d *decoder) scan(data string) error {
	for i, raw := range strings.Split(data, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		col := 0
		for col < len(raw) && raw[col] == ' ' {
			col++
		}
		if raw[col] == '\t' {
			return d.errf(i+1, "tab in indentation")
		}
		d.lines = append(d.lines, line{num: i + 1, col: col, text: raw[col:]})
	}
	return nil
}

// parseBlock parses the value whose first line sits at the given column:
// a keyless array header, an object, or a single scalar line.
func (d *decoder) parseBlock(col int) (interface{}, error) {
	ln := d.lines[d.pos]
	if ln.text[0] == '[' {
		d.pos++
		return d.parseArray(ln.text, ln)
	}
	if _, _, _, ok := splitKeyLine(ln.text); ok {
		return d.parseObject(col)
	}
	d.pos++
	return d.parseScalar(ln.text, ln.num)
}

func (d *decoder) parseObject(col int) (interface{}, error) {
	obj := map[string]interface{}{}
	for d.pos < len(d.lines) {
		ln := d.lines[d.pos]
		if ln.col < col {
			break
		}
		if ln.col > col {
			return nil, d.errf(ln.num, "unexpected indentation")
		}
		key, rest, isArr, ok := splitKeyLine(ln.text)
		if !ok {
			return nil, d.errf(ln.num, "expected a key")
		}
		if _, dup := obj[key]; dup && d.strict {
			return nil, d.errf(ln.num, "duplicate key %q", key)
		}
		d.pos++
		var v interface{}
		var err error
		switch {
		case isArr:
			v, err = d.parseArray(rest, ln)
		case rest == "":
			v, err = d.parseChild(ln)
		default:
			v, err = d.parseScalar(rest, ln.num)
		}
		if err != nil {
			return nil, err
		}
		obj[key] = v
	}
	return obj, nil
}

// parseChild handles a bare "key:" line: an empty object, or a nested block
// indented past the key.
func (d *decoder) parseChild(parent line) (interface{}, error) {
	if d.pos >= len(d.lines) || d.lines[d.pos].col <= parent.col {
		return map[string]interface{}{}, nil
	}
	return d.parseBlock(d.lines[d.pos].col)
}

// parseArray parses an array whose header line has already been consumed.
// header is the text from '[' onward: "[N]" ["{fields}"] ":" [" " inline].
func (d *decoder) parseArray(header string, ln line) (interface{}, error) {
	end := strings.IndexByte(header, ']')
	if end < 0 {
		return nil, d.errf(ln.num, "unterminated array length marker")
	}
	n := -1
	if countText := header[1:end]; countText != "" {
		parsed, err := strconv.Atoi(countText)
		if err != nil || parsed < 0 {
			return nil, d.errf(ln.num, "invalid array length %q", countText)
		}
		n = parsed
	} else if d.strict {
		return nil, d.errf(ln.num, "missing array length")
	}
	rest := header[end+1:]

	var fields []string
	if strings.HasPrefix(rest, "{") {
		closing := indexUnquoted(rest, '}')
		if closing < 0 {
			return nil, d.errf(ln.num, "unterminated tabular header")
		}
		var err error
		fields, err = d.parseFieldNames(rest[1:closing], ln.num)
		if err != nil {
			return nil, err
		}
		rest = rest[closing+1:]
	}

	if !strings.HasPrefix(rest, ":") {
		return nil, d.errf(ln.num, "expected ':' after array header")
	}
	rest = rest[1:]
	inline := ""
	if rest != "" {
		if rest[0] != ' ' {
			return nil, d.errf(ln.num, "expected space after ':'")
		}
		inline = rest[1:]
	}

	if fields != nil {
		if strings.TrimSpace(inline) != "" {
			return nil, d.errf(ln.num, "tabular array cannot carry an inline value")
		}
		return d.parseTabular(fields, n, ln)
	}
	if strings.TrimSpace(inline) != "" {
		return d.parseInline(inline, n, ln)
	}
	if d.pos < len(d.lines) && d.lines[d.pos].col > ln.col {
		return d.parseList(n, ln)
	}
	if d.strict && n > 0 {
		return nil, d.errf(ln.num, "array declares %d elements but has none", n)
	}
	return []interface{}{}, nil
}

func (d *decoder) parseInline(inline string, n int, ln line) (interface{}, error) {
	cells, err := splitCells(inline, d.delimiter)
	if err != nil {
		return nil, d.errf(ln.num, "%s", err)
	}
	items := make([]interface{}, 0, len(cells))
	for _, cell := range cells {
		v, err := d.parseScalar(strings.TrimSpace(cell), ln.num)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if d.strict && n >= 0 && len(items) != n {
		return nil, d.errf(ln.num, "array declares %d elements but has %d", n, len(items))
	}
	return items, nil
}

func (d *decoder) parseTabular(fields []string, n int, header line) (interface{}, error) {
	items := []interface{}{}
	rowCol := -1
	for d.pos < len(d.lines) && d.lines[d.pos].col > header.col {
		ln := d.lines[d.pos]
		if rowCol < 0 {
			rowCol = ln.col
		} else if ln.col != rowCol {
			return nil, d.errf(ln.num, "misaligned tabular row")
		}
		cells, err := splitCells(ln.text, d.delimiter)
		if err != nil {
			return nil, d.errf(ln.num, "%s", err)
		}
		if d.strict && len(cells) != len(fields) {
			return nil, d.errf(ln.num, "row has %d values, header declares %d", len(cells), len(fields))
		}
		obj := make(map[string]interface{}, len(fields))
		for i, f := range fields {
			if i >= len(cells) {
				break
			}
			v, err := d.parseScalar(strings.TrimSpace(cells[i]), ln.num)
			if err != nil {
				return nil, err
			}
			obj[f] = v
		}
		items = append(items, obj)
		d.pos++
	}
	if d.strict && n >= 0 && len(items) != n {
		return nil, d.errf(header.num, "array declares %d elements but has %d", n, len(items))
	}
	return items, nil
}

func (d *decoder) parseList(n int, header line) (interface{}, error) {
	items := []interface{}{}
	itemCol := d.lines[d.pos].col
	for d.pos < len(d.lines) && d.lines[d.pos].col > header.col {
		ln := d.lines[d.pos]
		if ln.col != itemCol {
			return nil, d.errf(ln.num, "misaligned list item")
		}
		if ln.text == "-" || ln.text == "- " {
			d.pos++
			items = append(items, map[string]interface{}{})
			continue
		}
		if !strings.HasPrefix(ln.text, "- ") {
			return nil, d.errf(ln.num, "expected list item")
		}
		rest := ln.text[2:]
		contentCol := itemCol + 2

		var v interface{}
		var err error
		switch {
		case rest[0] == '[':
			// keyless nested array; its rows/items sit deeper than the dash
			hdr := line{num: ln.num, col: contentCol, text: rest}
			d.pos++
			v, err = d.parseArray(rest, hdr)
		case isKeyLine(rest):
			// object item: re-anchor the first field at the content column
			// and parse the item as an ordinary object block
			d.lines[d.pos] = line{num: ln.num, col: contentCol, text: rest}
			v, err = d.parseObject(contentCol)
		default:
			d.pos++
			v, err = d.parseScalar(rest, ln.num)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if d.strict && n >= 0 && len(items) != n {
		return nil, d.errf(header.num, "array declares %d elements but has %d", n, len(items))
	}
	return items, nil
}

func (d *decoder) parseFieldNames(content string, num int) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, d.errf(num, "empty tabular header")
	}
	cells, err := splitCells(content, d.delimiter)
	if err != nil {
		return nil, d.errf(num, "%s", err)
	}
	fields := make([]string, 0, len(cells))
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			return nil, d.errf(num, "empty field name in tabular header")
		}
		if cell[0] == '"' {
			var f string
			if err := json.Unmarshal([]byte(cell), &f); err != nil {
				return nil, d.errf(num, "invalid field name %s", cell)
			}
			fields = append(fields, f)
			continue
		}
		fields = append(fields, cell)
	}
	return fields, nil
}

func (d *decoder) parseScalar(s string, num int) (interface{}, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	case "":
		return "", nil
	}
	if s[0] == '"' {
		var out string
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, d.errf(num, "invalid string literal %s", s)
		}
		return out, nil
	}
	if isJSONNumber(s) {
		return json.Number(s), nil
	}
	return s, nil
}

// splitKeyLine splits "key: value", "key:" or "key[...]..." into its key and
// remainder. ok is false when the line does not start with a key, in which
// case it is a scalar line (or malformed, which the caller decides).
func splitKeyLine(text string) (key, rest string, isArray, ok bool) {
	if text == "" {
		return "", "", false, false
	}
	var i int
	if text[0] == '"' {
		end := quotedEnd(text)
		if end < 0 {
			return "", "", false, false
		}
		if err := json.Unmarshal([]byte(text[:end]), &key); err != nil {
			return "", "", false, false
		}
		i = end
	} else {
		i = strings.IndexAny(text, ":[")
		if i <= 0 {
			return "", "", false, false
		}
		key = text[:i]
		if !bareKeyRe.MatchString(key) {
			return "", "", false, false
		}
	}
	if i >= len(text) {
		return "", "", false, false
	}
	switch text[i] {
	case '[':
		return key, text[i:], true, true
	case ':':
		rest = text[i+1:]
		if rest == "" {
			return key, "", false, true
		}
		if rest[0] != ' ' {
			return "", "", false, false
		}
		return key, rest[1:], false, true
	}
	return "", "", false, false
}

func isKeyLine(text string) bool {
	_, _, _, ok := splitKeyLine(text)
	return ok
}

// quotedEnd returns the index just past the closing quote of the string
// literal at the start of s, or -1 if it never closes.
func quotedEnd(s string) int {
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			return i + 1
		}
	}
	return -1
}

// splitCells splits a delimited row, keeping quoted strings intact.
func splitCells(s, delim string) ([]string, error) {
	var cells []string
	var cur strings.Builder
	inStr := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			cur.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inStr = false
			}
			continue
		}
		if c == '"' {
			inStr = true
			cur.WriteByte(c)
			continue
		}
		if strings.HasPrefix(s[i:], delim) {
			cells = append(cells, cur.String())
			cur.Reset()
			i += len(delim) - 1
			continue
		}
		cur.WriteByte(c)
	}
	if inStr {
		return nil, fmt.Errorf("unterminated string literal")
	}
	cells = append(cells, cur.String())
	return cells, nil
}

// indexUnquoted finds the first occurrence of target outside string literals.
func indexUnquoted(s string, target byte) int {
	inStr := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inStr = false
			}
			continue
		}
		if c == '"' {
			inStr = true
			continue
		}
		if c == target {
			return i
		}
	}
	return -1
}
