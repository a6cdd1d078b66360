package spec

import (
	"context"
	"fmt"
	"strconv"

	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
)

// MaxRank is the largest rank TensorStore supports.
const MaxRank = 32

// RankField is the constraint of every "rank" member.
var RankField = g.Int().Range(0, MaxRank).Describe("number of dimensions")

// Bound is an index bound: an integer, "-inf"/"+inf", or [n] for an implicit
// bound.
var Bound = g.Union(g.Int(), g.Enum("-inf", "+inf"), g.Tuple(g.Int()))

var domainArrays = []string{"inclusive_min", "exclusive_max", "inclusive_max", "shape", "labels", "implicit_lower_bounds", "implicit_upper_bounds"}

// IndexDomainObject is a rectangular index domain with optional labels.
var IndexDomainObject = g.Object("index_domain").
	Field("rank", RankField).
	Field("inclusive_min", g.Array(Bound)).
	Field("exclusive_max", g.Array(Bound)).
	Field("inclusive_max", g.Array(Bound)).
	Field("shape", g.Array(g.Int().NonNegative())).
	Field("labels", g.Array(g.String())).
	Field("implicit_lower_bounds", g.Array(g.Bool())).
	Field("implicit_upper_bounds", g.Array(g.Bool())).
	Refine("consistent rank", g.ConsistentLength("rank", domainArrays...)).
	Refine("single upper bound", g.MutuallyExclusive("exclusive_max", "inclusive_max")).
	Refine("bounds match shape", boundsMatchShape("inclusive_min", "exclusive_max", "inclusive_max", "shape")).
	Refine("unique labels", uniqueLabels("labels")).
	MustBuild()

// DomainRank returns the rank an index domain model implies.
func DomainRank(m *g.Model) (int, bool) { return EffectiveRank(m, "rank", domainArrays...) }

// EffectiveRank returns the integer field rankField when set, otherwise the
// length of the first set array field.
func EffectiveRank(m *g.Model, rankField string, arrays ...string) (int, bool) {
	if m == nil {
		return 0, false
	}
	if r, ok := m.Int(rankField); ok {
		return int(r), true
	}
	for _, a := range arrays {
		if l := m.Len(a); l >= 0 {
			return l, true
		}
	}
	return 0, false
}

func boundValue(v any) (int64, bool) {
	switch b := v.(type) {
	case int64:
		return b, true
	case []any:
		if len(b) == 1 {
			n, ok := b[0].(int64)
			return n, ok
		}
	}
	return 0, false
}

func arrayField(m *g.Model, name string) []any {
	v, _ := m.Get(name)
	arr, _ := v.([]any)
	return arr
}

// boundsMatchShape checks, per dimension with finite bounds, that the upper
// bound is not below the lower bound and that the extent equals shape.
func boundsMatchShape(minField, exclusiveField, inclusiveField, shapeField string) g.RefineFunc {
	return func(_ context.Context, m *g.Model) tsspec.Issues {
		lo := arrayField(m, minField)
		shape := arrayField(m, shapeField)
		var iss tsspec.Issues
		check := func(upperField string, upper []any, inclusive bool) {
			for i := range upper {
				if i >= len(lo) {
					break
				}
				l, okL := boundValue(lo[i])
				u, okU := boundValue(upper[i])
				if !okL || !okU {
					continue
				}
				extent := u - l
				if inclusive {
					extent++
				}
				ptr := tsspec.JoinPointer(tsspec.JoinPointer("", upperField), strconv.Itoa(i))
				if extent < 0 {
					iss = append(iss, g.Inconsistent(ptr, fmt.Sprintf("%s[%d] = %d is below %s[%d] = %d", upperField, i, u, minField, i, l), u))
					continue
				}
				if i < len(shape) {
					if s, ok := shape[i].(int64); ok && s != extent {
						sp := tsspec.JoinPointer(tsspec.JoinPointer("", shapeField), strconv.Itoa(i))
						iss = append(iss, g.Inconsistent(sp, fmt.Sprintf("%s[%d] = %d but bounds span %d", shapeField, i, s, extent), s))
					}
				}
			}
		}
		check(exclusiveField, arrayField(m, exclusiveField), false)
		check(inclusiveField, arrayField(m, inclusiveField), true)
		return iss
	}
}

// uniqueLabels rejects repeated non-empty dimension labels.
func uniqueLabels(field string) g.RefineFunc {
	return func(_ context.Context, m *g.Model) tsspec.Issues {
		labels, _ := m.Strings(field)
		seen := map[string]int{}
		var iss tsspec.Issues
		for i, l := range labels {
			if l == "" {
				continue
			}
			if j, dup := seen[l]; dup {
				ptr := tsspec.JoinPointer(tsspec.JoinPointer("", field), strconv.Itoa(i))
				iss = append(iss, g.Inconsistent(ptr, fmt.Sprintf("label %q repeats %s[%d]", l, field, j), l))
				continue
			}
			seen[l] = i
		}
		return iss
	}
}
