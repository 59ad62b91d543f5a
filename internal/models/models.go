package models

// JSONValue is a generic type to represent any JSON-compatible value.
// This can be a string, json.Number, boolean, nil, JSONObject, or JSONArray.
type JSONValue interface{}

// JSONObject represents a JSON object, which is a map of strings to JSONValues.
type JSONObject map[string]JSONValue

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// Format identifies the textual serialization a Document was decoded from.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOON Format = "toon"
)

// Document holds a decoded value tree together with the format it came from.
// Both the JSON parser and the TOON decoder produce Documents whose Root is
// built from the model types above, so code downstream of decoding never has
// to care which serialization the data arrived in.
type Document struct {
	Root   JSONValue
	Source Format
}
