package definition

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// CoerceNumber converts submitted values into float64. Strings are trimmed and
// parsed; empty strings, NaN and infinities are rejected.
func CoerceNumber(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	var out float64
	switch v := value.(type) {
	case float64:
		out = v
	case float32:
		out = float64(v)
	case int:
		out = float64(v)
	case int64:
		out = float64(v)
	case int32:
		out = float64(v)
	case uint:
		out = float64(v)
	case uint64:
		out = float64(v)
	case uint32:
		out = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		out = f
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		out = f
	default:
		return 0, false
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, false
	}
	return out, true
}

// CoerceBool accepts booleans and the strings strconv.ParseBool understands,
// plus "on"/"off" as sent by HTML checkboxes.
func CoerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(v))
		switch trimmed {
		case "on", "yes":
			return true, true
		case "off", "no":
			return false, true
		}
		parsed, err := strconv.ParseBool(trimmed)
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// CoerceDate parses ISO-8601 strings, passes time.Time through, and treats
// numbers as Unix epoch milliseconds.
func CoerceDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v, true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		ms, ok := CoerceNumber(value)
		if !ok {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)).UTC(), true
	}
}

// CoerceString renders value as a string for loose comparisons.
func CoerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}

// Matches evaluates op against the current value of a target field. The
// comparison follows the type of want: nil checks for absence, booleans and
// numbers coerce current before comparing, anything else compares as strings.
func Matches(op Operator, current, want any) bool {
	equal := LooseEqual(current, want)
	if op == OperatorNotEquals {
		return !equal
	}
	return equal
}

// LooseEqual compares a submitted value against a declared one (condition
// value, option value) using the declared value's type.
func LooseEqual(current, want any) bool {
	switch w := want.(type) {
	case nil:
		return isAbsent(current)
	case bool:
		got, ok := CoerceBool(current)
		return ok && got == w
	case string:
		if isAbsent(current) {
			return w == ""
		}
		return CoerceString(current) == w
	default:
		if wantNum, ok := CoerceNumber(want); ok {
			got, ok := CoerceNumber(current)
			return ok && got == wantNum
		}
		return CoerceString(current) == CoerceString(want)
	}
}

func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}
