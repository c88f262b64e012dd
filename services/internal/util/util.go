// services/internal/util/util.go
package util

import "encoding/json"

// DecodeJSON decodes src into dst. src may be raw JSON ([]byte or string)
// or an already-decoded value such as a bus payload map.
func DecodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case json.RawMessage:
		return json.Unmarshal(v, dst)
	case *T:
		*dst = *v
		return nil
	case T:
		*dst = v
		return nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}

func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
