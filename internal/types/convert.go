package types

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// TimeLayout is how date/time values are rendered before pattern matching.
const TimeLayout = "2006-01-02 15:04:05"

// ToText renders a sampled value as text for pattern matching.
// It returns false for NULL.
func ToText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case time.Time:
		return x.Format(TimeLayout), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case bool:
		return strconv.FormatBool(x), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

// Materialize converts a driver value into a plain Go value.
// Byte slices become strings and large-object readers are drained,
// so no driver handle outlives the connection that produced it.
func Materialize(v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return string(x), nil
	case io.Reader:
		data, err := io.ReadAll(x)
		if err != nil {
			return fmt.Sprint(x), fmt.Errorf("failed to read large object: %w", err)
		}
		return string(data), nil
	default:
		return v, nil
	}
}
