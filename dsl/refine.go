package dsl

import (
	"context"
	"strconv"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/i18n"
)

// SameLength requires every set array field among names to have the length
// of the first set one.
func SameLength(names ...string) RefineFunc {
	return func(_ context.Context, m *Model) tsspec.Issues {
		ref, want := "", -1
		var iss tsspec.Issues
		for _, n := range names {
			l := m.Len(n)
			if l < 0 {
				continue
			}
			if want < 0 {
				ref, want = n, l
				continue
			}
			if l != want {
				iss = append(iss, LengthMismatch(tsspec.JoinPointer("", n), want, ref, l))
			}
		}
		return iss
	}
}

// LengthEquals requires the array fields to have the length held by the
// integer field lenField, when both are set.
func LengthEquals(lenField string, names ...string) RefineFunc {
	return func(_ context.Context, m *Model) tsspec.Issues {
		want, ok := m.Int(lenField)
		if !ok {
			return nil
		}
		var iss tsspec.Issues
		for _, n := range names {
			if l := m.Len(n); l >= 0 && int64(l) != want {
				iss = append(iss, LengthMismatch(tsspec.JoinPointer("", n), int(want), lenField, l))
			}
		}
		return iss
	}
}

// MutuallyExclusive rejects models that set more than one of names.
func MutuallyExclusive(names ...string) RefineFunc {
	return func(_ context.Context, m *Model) tsspec.Issues {
		first := ""
		var iss tsspec.Issues
		for _, n := range names {
			if !m.Has(n) {
				continue
			}
			if first == "" {
				first = n
				continue
			}
			iss = append(iss, Inconsistent(tsspec.JoinPointer("", n), n+" cannot be combined with "+first, m.values[n]))
		}
		return iss
	}
}

// LengthMismatch builds a length_mismatch issue for an array at pointer whose
// length should equal want, as dictated by the field source.
func LengthMismatch(pointer string, want int, source string, got int) tsspec.Issue {
	expected := strconv.Itoa(want) + " (" + source + ")"
	return tsspec.Issue{
		Path:     pointer,
		Code:     tsspec.CodeLengthMismatch,
		Message:  i18n.T(tsspec.CodeLengthMismatch, map[string]string{"expected": expected, "actual": strconv.Itoa(got)}),
		Expected: expected,
		Value:    got,
	}
}

// ConsistentLength requires the array fields to share one length, equal to
// the integer field rankField when that is set.
func ConsistentLength(rankField string, names ...string) RefineFunc {
	same, exact := SameLength(names...), LengthEquals(rankField, names...)
	return func(ctx context.Context, m *Model) tsspec.Issues {
		if _, ok := m.Int(rankField); ok {
			return exact(ctx, m)
		}
		return same(ctx, m)
	}
}
