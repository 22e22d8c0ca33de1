package output

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Sanitize recursively replaces NaN and infinite floats with zero so the
// value can be JSON encoded. Structs become maps keyed by their JSON names.
func Sanitize(data any) any {
	switch v := data.(type) {
	case nil:
		return nil
	case float64:
		return finite(v)
	case float32:
		return float32(finite(float64(v)))
	case []float64:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = finite(f)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = Sanitize(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = Sanitize(val)
		}
		return out
	case json.Marshaler:
		return v
	default:
		return sanitizeWithReflection(data)
	}
}

func finite(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

func sanitizeWithReflection(data any) any {
	val := reflect.ValueOf(data)
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}

	switch val.Kind() {
	case reflect.Struct:
		out := make(map[string]any)
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := val.Field(i)
			if !field.CanInterface() {
				continue
			}

			name := typ.Field(i).Name
			tag := typ.Field(i).Tag.Get("json")
			if tag == "-" {
				continue
			}
			if parts := strings.Split(tag, ","); parts[0] != "" {
				name = parts[0]
			}
			out[name] = Sanitize(field.Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			return []any{}
		}
		out := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			out[i] = Sanitize(val.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, val.Len())
		for _, key := range val.MapKeys() {
			out[fmt.Sprintf("%v", key.Interface())] = Sanitize(val.MapIndex(key).Interface())
		}
		return out
	case reflect.Float32, reflect.Float64:
		return finite(val.Float())
	default:
		return val.Interface()
	}
}
