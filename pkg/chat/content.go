package chat

import (
	"encoding/json"
	"strconv"
	"strings"
)

// EnsureStringContent coerces any decoded JSON value into a string. It is
// total: nil becomes "", primitives keep their string form, arrays are the
// concatenation of their recursively coerced elements, and anything else is
// JSON-serialized.
func EnsureStringContent(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case []any:
		var sb strings.Builder
		for _, item := range val {
			sb.WriteString(EnsureStringContent(item))
		}
		return sb.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
