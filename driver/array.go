package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/dtype"
	"github.com/reoring/tsspec/spec"
)

// Array is the in-memory "array" driver.
var Array = register(Capabilities{
	Driver:      "array",
	Description: "in-memory array given inline as a nested list",
	DataTypes:   dtype.All.Strings(),
}, g.Object("array").Extend(Base).
	Field("array", g.Any().Check("rectangular", rectangular)).Describe("nested list or scalar").Required().
	Field("dtype", dtype.Field).Required().
	Field("data_copy_concurrency", spec.ConcurrencyResource).Default("data_copy_concurrency").
	Refine("array present", func(_ context.Context, m *g.Model) tsspec.Issues {
		if !m.Has("array") {
			it := g.Violation(tsspec.CodeInvalidType, "nested list or scalar", nil)
			it.Path = "/array"
			return tsspec.Issues{it}
		}
		return nil
	}).
	Refine("rank agreement", rankAgreement(arrayRank)).
	MustBuild())

func rectangular(v any) tsspec.Issues {
	if _, at, err := arrayShape(v, ""); err != nil {
		it := g.Violation(tsspec.CodeInvalidFormat, "non-empty rectangular nested list", v)
		if at != "" {
			it.Path = at
		}
		it.Cause = err
		it.Hint = err.Error()
		return tsspec.Issues{it}
	}
	return nil
}

// ArrayShape returns the shape of a rectangular nested list. Scalars have
// an empty shape.
func ArrayShape(v any) ([]int, error) {
	shape, _, err := arrayShape(v, "")
	return shape, err
}

// arrayShape also reports the pointer of the first irregular sub-list.
func arrayShape(v any, at string) ([]int, string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, "", nil
	}
	if len(arr) == 0 {
		return nil, at, errors.New("empty list")
	}
	first, where, err := arrayShape(arr[0], at+"/0")
	if err != nil {
		return nil, where, err
	}
	_, firstIsList := arr[0].([]any)
	for i := 1; i < len(arr); i++ {
		ptr := at + "/" + strconv.Itoa(i)
		if _, isList := arr[i].([]any); isList != firstIsList {
			return nil, ptr, fmt.Errorf("element %d does not match the nesting of element 0", i)
		}
		s, where, err := arrayShape(arr[i], ptr)
		if err != nil {
			return nil, where, err
		}
		if !sameShape(s, first) {
			return nil, ptr, fmt.Errorf("element %d has shape %v, want %v", i, s, first)
		}
	}
	return append([]int{len(arr)}, first...), "", nil
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ArrayDims returns the shape of an array driver model. For complex data
// types the innermost [real, imag] pairs are elements, not a dimension.
func ArrayDims(m *g.Model) ([]int, bool) {
	v, ok := m.Get("array")
	if !ok {
		return nil, false
	}
	shape, err := ArrayShape(v)
	if err != nil {
		return nil, false
	}
	switch dtype.DataType(m.String("dtype")) {
	case dtype.Complex64, dtype.Complex128:
		if len(shape) > 0 && shape[len(shape)-1] == 2 {
			shape = shape[:len(shape)-1]
		}
	}
	return shape, true
}

func arrayRank(m *g.Model) []rankSource {
	shape, ok := ArrayDims(m)
	if !ok {
		return nil
	}
	return []rankSource{{"/array", len(shape)}}
}
