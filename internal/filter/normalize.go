// Package filter turns loosely typed recipe search criteria into a canonical
// parameter set for the recipe catalog and applies the bounds the catalog
// cannot be trusted with.
package filter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NormalizeNumber parses a user supplied bound. Strings are trimmed first.
// It reports false for nil, empty, NaN, infinite and non-numeric input so an
// absent bound is never confused with zero.
func NormalizeNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		return parseNumber(v)
	case Bound:
		return parseNumber(string(v))
	case json.Number:
		return parseNumber(v.String())
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case *float64:
		if v == nil {
			return 0, false
		}
		f = *v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Bound is one side of a range as the user typed it.
type Bound string

// UnmarshalJSON accepts a JSON string, number or null.
func (b *Bound) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*b = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*b = Bound(str)
		return nil
	}
	*b = Bound(s)
	return nil
}

// Value returns the normalized bound.
func (b Bound) Value() (float64, bool) {
	return NormalizeNumber(string(b))
}

// Num formats f as a Bound.
func Num(f float64) Bound {
	return Bound(strconv.FormatFloat(f, 'f', -1, 64))
}
