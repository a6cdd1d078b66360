package dtype_test

import (
	"context"
	"testing"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/dtype"
)

func TestSubsetsAreKnown(t *testing.T) {
	for name, set := range map[string]dtype.Set{"n5": dtype.N5, "zarr3": dtype.Zarr3, "neuroglancer": dtype.Neuroglancer, "tiff": dtype.Tiff} {
		for _, d := range set {
			if !dtype.All.Contains(d) {
				t.Fatalf("%s: %s is not a known data type", name, d)
			}
		}
	}
}

func TestField(t *testing.T) {
	ctx := context.Background()
	if _, err := dtype.Field.Validate(ctx, "float32"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := dtype.Field.Validate(ctx, "float33")
	iss, _ := tsspec.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != tsspec.CodeInvalidEnum {
		t.Fatalf("unexpected issues: %v", iss)
	}
}

func TestZarrTypestr(t *testing.T) {
	cases := map[string]dtype.DataType{"<f4": dtype.Float32, ">u2": dtype.Uint16, "|b1": dtype.Bool, "<c16": dtype.Complex128, "bfloat16": dtype.BFloat16}
	for s, want := range cases {
		got, ok := dtype.FromZarrTypestr(s)
		if !ok || got != want {
			t.Fatalf("%s: got %s %v", s, got, ok)
		}
	}
	for _, bad := range []string{"f4", "<f3", "float32", "<f4 "} {
		if dtype.IsZarrTypestr(bad) {
			t.Fatalf("%q should be rejected", bad)
		}
	}
}

func TestZarrDTypeStructured(t *testing.T) {
	ctx := context.Background()
	ok := []any{[]any{"r", "|u1"}, []any{"xyz", "<f4", []any{3}}}
	if _, err := dtype.ZarrDType.Validate(ctx, ok); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := dtype.ZarrDType.Validate(ctx, []any{[]any{"r"}}); err == nil {
		t.Fatalf("expected structured entry arity error")
	}
	if _, err := dtype.ZarrDType.Validate(ctx, "float32"); err == nil {
		t.Fatalf("expected typestring pattern error")
	}
}

func TestNumeric(t *testing.T) {
	if !dtype.Numeric(dtype.Complex64) || dtype.Numeric(dtype.String) || !dtype.Integer(dtype.Uint64) || dtype.Integer(dtype.Float32) {
		t.Fatalf("unexpected classification")
	}
}
