package toon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// normalizeValue converts an arbitrary Go value into the canonical decoded
// shape the encoder works on: nil, bool, string, json.Number,
// []interface{} and map[string]interface{}. Numbers are carried as
// json.Number so their lexeme is preserved end to end.
func normalizeValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil, bool, string, json.Number:
		return val, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			nv, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			nv, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case int:
		return json.Number(strconv.FormatInt(int64(val), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(val), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(val), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(val, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(val, 10)), nil
	case float32:
		return floatNumber(float64(val))
	case float64:
		return floatNumber(val)
	}

	// Named map/slice types (and anything else JSON-marshalable, such as
	// structs) go through reflection or a JSON round trip.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("toon: cannot encode map with %s keys", rv.Type().Key())
		}
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			nv, err := normalizeValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = nv
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			nv, err := normalizeValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return normalizeValue(rv.Elem().Interface())
	}

	return jsonRoundTrip(v)
}

// floatNumber formats a float the way encoding/json would, rejecting NaN and
// infinities the same way.
func floatNumber(f float64) (interface{}, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("toon: cannot encode number: %w", err)
	}
	return json.Number(b), nil
}

// jsonRoundTrip normalizes struct-like values by marshaling to JSON and
// decoding back with UseNumber.
func jsonRoundTrip(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("toon: unsupported value of type %T: %w", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("toon: unsupported value of type %T: %w", v, err)
	}
	return normalizeValue(out)
}
