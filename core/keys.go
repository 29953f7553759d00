package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// KeyString renders a primary key value in canonical string form so that the
// JSON number 1, the string "1" and int64(1) address the same entity.
func KeyString(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		trimmed := strings.TrimSpace(typed)
		return trimmed, trimmed != ""
	case json.Number:
		return numberKey(typed)
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return "", false
		}
		if typed == math.Trunc(typed) && math.Abs(typed) < 1<<53 {
			return strconv.FormatInt(int64(typed), 10), true
		}
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case float32:
		return KeyString(float64(typed))
	case int:
		return strconv.Itoa(typed), true
	case int32:
		return strconv.FormatInt(int64(typed), 10), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case uint:
		return strconv.FormatUint(uint64(typed), 10), true
	case uint32:
		return strconv.FormatUint(uint64(typed), 10), true
	case uint64:
		return strconv.FormatUint(typed, 10), true
	case fmt.Stringer:
		return KeyString(typed.String())
	default:
		return "", false
	}
}

// numberKey keeps integer literals digit for digit and folds integral
// fractions such as 1.0 into their integer form.
func numberKey(number json.Number) (string, bool) {
	literal := strings.TrimSpace(number.String())
	if literal == "" {
		return "", false
	}
	if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return literal, true
	}
	if _, err := strconv.ParseUint(literal, 10, 64); err == nil {
		return literal, true
	}
	if value, err := strconv.ParseFloat(literal, 64); err == nil {
		return KeyString(value)
	}
	return literal, true
}
