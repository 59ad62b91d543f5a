package fieldpath

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mcncl/toonvert/internal/errors"
	"github.com/mcncl/toonvert/internal/models"
	"github.com/mcncl/toonvert/internal/parser"
)

// document parses a JSON literal into normalized model types.
func document(t *testing.T, s string) models.JSONValue {
	t.Helper()
	doc, err := parser.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return doc.Root
}

func TestResolve(t *testing.T) {
	root := document(t, `{
		"style": {"tone": "epic"},
		"items": ["x", "y"],
		"a": 1,
		"nullable": null
	}`)

	tests := []struct {
		name      string
		path      string
		wantValue models.JSONValue
		wantFound bool
	}{
		{"nested key", "style.tone", "epic", true},
		{"whole subtree", "style", models.JSONObject{"tone": "epic"}, true},
		{"array index", "items.1", "y", true},
		{"missing key", "missing", nil, false},
		{"key under scalar", "a.b", nil, false},
		{"non-numeric segment against array", "items.first", nil, false},
		{"negative-looking segment against array", "items.-1", nil, false},
		{"found null", "nullable", nil, true},
		{"missing then deeper", "missing.x.y", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(root, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, res.Found)
			assert.Equal(t, tt.wantValue, res.Value)
		})
	}
}

func TestResolve_IndexOutOfRange(t *testing.T) {
	root := document(t, `{"items": ["x", "y"]}`)

	_, err := Resolve(root, "items.2")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeExtract, appErr.Type)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"string", Result{Value: "epic", Found: true}, "epic"},
		{"number keeps lexeme", Result{Value: json.Number("1.50"), Found: true}, "1.50"},
		{"bool true", Result{Value: true, Found: true}, "true"},
		{"bool false", Result{Value: false, Found: true}, "false"},
		{"null renders empty", Result{Value: nil, Found: true}, ""},
		{"not found renders empty", Result{}, ""},
		{
			"object renders compact JSON",
			Result{Value: models.JSONObject{"b": json.Number("1"), "c": json.Number("2")}, Found: true},
			`{"b": 1, "c": 2}`,
		},
		{
			"array renders compact JSON",
			Result{Value: models.JSONArray{"x", json.Number("2"), nil}, Found: true},
			`["x", 2, null]`,
		},
		{
			"nested composite",
			Result{
				Value: models.JSONObject{"a": models.JSONArray{models.JSONObject{"k": "v"}}},
				Found: true,
			},
			`{"a": [{"k": "v"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.res)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCompactJSON_SortsKeysAndSkipsHTMLEscaping(t *testing.T) {
	out, err := CompactJSON(models.JSONObject{
		"z":   json.Number("1"),
		"a":   json.Number("2"),
		"url": "https://example.com/?a=1&b=2",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a": 2, "url": "https://example.com/?a=1&b=2", "z": 1}`, out)
}
