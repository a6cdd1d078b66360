package spec

import (
	"context"
	"fmt"
	"strconv"

	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
)

var finiteOrInfinite = g.Union(g.Int(), g.Enum("-inf", "+inf"))

// OutputIndexMapObject maps one output dimension. With neither input_dimension nor
// index_array it is a constant map yielding offset.
var OutputIndexMapObject = g.Object("output_index_map").
	Field("offset", g.Int()).Default(0).
	Field("stride", g.Int().Check("nonzero", nonZero)).Default(1).
	Field("input_dimension", g.Int().NonNegative()).
	Field("index_array", g.Array(g.Any())).
	Field("index_array_bounds", g.Array(finiteOrInfinite).Len(2)).
	Refine("single source", g.MutuallyExclusive("input_dimension", "index_array")).
	Refine("bounds need index array", func(_ context.Context, m *g.Model) tsspec.Issues {
		if m.Has("index_array_bounds") && !m.Has("index_array") {
			return tsspec.Issues{g.Inconsistent("/index_array_bounds", "index_array_bounds requires index_array", nil)}
		}
		return nil
	}).
	MustBuild()

func nonZero(v any) tsspec.Issues {
	if v.(int64) == 0 {
		return tsspec.Issues{g.Violation(tsspec.CodeInvalidFormat, "non-zero integer", v)}
	}
	return nil
}

var transformInputArrays = []string{"input_inclusive_min", "input_exclusive_max", "input_inclusive_max", "input_shape", "input_labels", "implicit_lower_bounds", "implicit_upper_bounds"}

// IndexTransformObject maps an input index domain onto output dimensions.
var IndexTransformObject = g.Object("index_transform").
	Field("input_rank", RankField).
	Field("input_inclusive_min", g.Array(Bound)).
	Field("input_exclusive_max", g.Array(Bound)).
	Field("input_inclusive_max", g.Array(Bound)).
	Field("input_shape", g.Array(g.Int().NonNegative())).
	Field("input_labels", g.Array(g.String())).
	Field("implicit_lower_bounds", g.Array(g.Bool())).
	Field("implicit_upper_bounds", g.Array(g.Bool())).
	Field("output", g.Array(g.Nested(OutputIndexMapObject))).
	Refine("consistent input rank", g.ConsistentLength("input_rank", transformInputArrays...)).
	Refine("single upper bound", g.MutuallyExclusive("input_exclusive_max", "input_inclusive_max")).
	Refine("bounds match shape", boundsMatchShape("input_inclusive_min", "input_exclusive_max", "input_inclusive_max", "input_shape")).
	Refine("unique labels", uniqueLabels("input_labels")).
	Refine("input dimensions in range", inputDimensionsInRange).
	MustBuild()

// InputRank returns the input rank a transform model implies.
func InputRank(m *g.Model) (int, bool) {
	return EffectiveRank(m, "input_rank", transformInputArrays...)
}

// OutputRank returns the number of output maps, when given.
func OutputRank(m *g.Model) (int, bool) {
	if m == nil || m.Len("output") < 0 {
		return 0, false
	}
	return m.Len("output"), true
}

func inputDimensionsInRange(_ context.Context, m *g.Model) tsspec.Issues {
	rank, ok := InputRank(m)
	if !ok {
		return nil
	}
	var iss tsspec.Issues
	for i, out := range m.Subs("output") {
		d, ok := out.Int("input_dimension")
		if !ok || d < int64(rank) {
			continue
		}
		ptr := "/output/" + strconv.Itoa(i) + "/input_dimension"
		iss = append(iss, g.Inconsistent(ptr, fmt.Sprintf("input_dimension %d is out of range for input rank %d", d, rank), d))
	}
	return iss
}
