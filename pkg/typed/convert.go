package typed

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Helpers for Field.Set implementations. Stores decode documents through
// JSON or BSON, so a value rarely comes back as the exact Go type it was
// written with: numbers arrive as float64 or int64, timestamps as RFC 3339
// strings or time.Time.

// AsString coerces a raw stored value to a string.
func AsString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

// AsInt coerces a raw stored value to an int. Fractional floats are rejected.
func AsInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n.String())
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

// AsTime coerces a raw stored value to a time.Time. Strings must be RFC 3339.
func AsTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp: %v", err)
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("expected timestamp, got %T", v)
}

// Remarshal converts a raw stored value into a typed one via a JSON round
// trip. Useful for nested structures such as lists of embedded documents.
func Remarshal(raw any, into any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, into)
}
