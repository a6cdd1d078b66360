package dsl

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	json "github.com/goccy/go-json"
)

// numberLike covers json.Number from encoding/json and goccy/go-json.
type numberLike interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

const maxExactInt = 1 << 63

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case numberLike:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	}
	return 0, false
}

func uintToInt(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= maxExactInt || f < -maxExactInt {
		return 0, false
	}
	return int64(f), true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case numberLike:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	if u, ok := v.(uint64); ok {
		return float64(u), true
	}
	return 0, false
}

func isNumber(v any) bool {
	_, ok := asFloat(v)
	return ok
}

// asSlice returns v as []any when it is any Go slice or array (except []byte).
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []byte, string, nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMap returns v as map[string]any when it is any Go map keyed by strings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// normalizeJSON converts v into the canonical raw representation: integral
// numbers as int64, other numbers as float64, []any and map[string]any.
func normalizeJSON(v any) (any, bool) {
	switch x := v.(type) {
	case nil, bool, string:
		return x, true
	case *Model:
		return x, x != nil
	}
	if i, ok := asInt(v); ok {
		return i, true
	}
	if f, ok := asFloat(v); ok {
		return f, true
	}
	if s, ok := asSlice(v); ok {
		out := make([]any, len(s))
		for i, e := range s {
			n, ok := normalizeJSON(e)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	}
	if m, ok := asMap(v); ok {
		out := make(map[string]any, len(m))
		for k, e := range m {
			n, ok := normalizeJSON(e)
			if !ok {
				return nil, false
			}
			out[k] = n
		}
		return out, true
	}
	return nil, false
}

// jsonType names the JSON type of a raw value.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case *Model:
		return "object"
	}
	if isNumber(v) {
		return "number"
	}
	if _, ok := asSlice(v); ok {
		return "array"
	}
	if _, ok := asMap(v); ok {
		return "object"
	}
	return "unknown"
}

const maxValueText = 64

// formatValue renders a value for messages as compact JSON.
func formatValue(v any) string {
	if m, ok := v.(*Model); ok {
		v = m.ToPlainMapping()
	}
	b, err := json.MarshalNoEscape(v)
	s := string(b)
	if err != nil {
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > maxValueText {
		s = s[:maxValueText-3] + "..."
	}
	return s
}

func formatLiterals(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatValue(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// closest returns the candidate nearest to name when it is within edit
// distance 2 and closer than the name's own length.
func closest(name string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if d < bestDist && d < len(name) {
			best, bestDist = c, d
		}
	}
	return best
}

func didYouMean(name string, candidates []string) string {
	if c := closest(name, candidates); c != "" {
		return "did you mean " + strconv.Quote(c) + "?"
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valuesEqual compares normalized values; models compare with Equal.
func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case *Model:
		y, ok := b.(*Model)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valuesEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !valuesEqual(xv, yv) {
				return false
			}
		}
		return true
	case float64:
		if y, ok := b.(float64); ok {
			return x == y || (math.IsNaN(x) && math.IsNaN(y))
		}
		return false
	}
	return a == b
}

// cloneValue deep-copies containers; models are immutable and shared.
func cloneValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	}
	return v
}
