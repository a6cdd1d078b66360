package dsl_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
)

func newArrays() *g.Category {
	stores := newStores()
	meta := g.Object("metadata").
		Field("shape", g.Array(g.Int().NonNegative())).
		Field("chunks", g.Array(g.Int().Positive())).
		Field("order", g.Enum("C", "F")).Default("C").
		UnknownPassthrough().
		Refine("chunks match shape", g.SameLength("shape", "chunks")).
		MustBuild()
	cat := g.NewCategory("array", "driver")
	cat.Register("zarr", g.Object("zarr").
		Field("kvstore", g.OneOf(stores)).Required().
		Field("path", g.String()).Default("").
		Field("metadata", g.Nested(meta)).
		Field("fill_value", g.Any()).
		MustBuild())
	return cat
}

func TestModel_RoundTrip(t *testing.T) {
	ctx := context.Background()
	cat := newArrays()
	raw := map[string]any{
		"driver":     "zarr",
		"kvstore":    map[string]any{"driver": "memory", "atomic": false},
		"metadata":   map[string]any{"shape": []any{10, 20}, "chunks": []any{5, 5}, "dimension_separator": "/"},
		"fill_value": nil,
	}
	m, err := cat.Resolve(ctx, raw)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	plain := m.ToPlainMapping()
	want := map[string]any{
		"driver":     "zarr",
		"kvstore":    map[string]any{"driver": "memory", "atomic": false},
		"metadata":   map[string]any{"shape": []any{int64(10), int64(20)}, "chunks": []any{int64(5), int64(5)}, "dimension_separator": "/"},
		"fill_value": nil,
	}
	if diff := cmp.Diff(want, plain); diff != "" {
		t.Fatalf("plain mapping mismatch (-want +got):\n%s", diff)
	}
	again, err := cat.Resolve(ctx, plain)
	if err != nil {
		t.Fatalf("re-resolve failed: %v", err)
	}
	if !m.Equal(again) {
		t.Fatalf("round trip changed the model")
	}
}

func TestModel_DefaultsAreFixedPoint(t *testing.T) {
	ctx := context.Background()
	cat := newArrays()
	m, err := cat.Resolve(ctx, map[string]any{"driver": "zarr", "kvstore": map[string]any{"driver": "memory"}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.String("path") != "" || m.Has("metadata") {
		t.Fatalf("unexpected defaults: %v", m.ToPlainMapping())
	}
	full := g.Encode(m, g.IncludeDefaults())
	kv := full["kvstore"].(map[string]any)
	if kv["atomic"] != true || kv["path"] != "" || full["path"] != "" {
		t.Fatalf("IncludeDefaults should emit defaults: %v", full)
	}
	for _, raw := range []map[string]any{m.ToPlainMapping(), full} {
		again, err := cat.Resolve(ctx, raw)
		if err != nil || !again.Equal(m) {
			t.Fatalf("defaults are not a fixed point: %v", err)
		}
	}
}

func TestModel_MarshalJSONOrder(t *testing.T) {
	m, err := newArrays().Resolve(context.Background(), map[string]any{
		"path":    "a",
		"kvstore": map[string]any{"path": "p", "driver": "memory"},
		"driver":  "zarr",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"driver":"zarr","kvstore":{"driver":"memory","path":"p"},"path":"a"}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}

func TestModel_PassthroughExtras(t *testing.T) {
	m, err := newArrays().Resolve(context.Background(), map[string]any{
		"driver":   "zarr",
		"kvstore":  map[string]any{"driver": "memory"},
		"metadata": map[string]any{"custom": map[string]any{"k": 1}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	extra := m.Sub("metadata").Extra()
	if diff := cmp.Diff(map[string]any{"custom": map[string]any{"k": int64(1)}}, extra); diff != "" {
		t.Fatalf("extras mismatch:\n%s", diff)
	}
	if v, ok := m.Path("metadata", "custom"); !ok || v.(map[string]any)["k"] != int64(1) {
		t.Fatalf("Path should reach extras: %v", v)
	}
}

func TestModel_RefineRunsAfterFields(t *testing.T) {
	ctx := context.Background()
	cat := newArrays()
	_, err := cat.Resolve(ctx, map[string]any{
		"driver":   "zarr",
		"kvstore":  map[string]any{"driver": "memory"},
		"metadata": map[string]any{"shape": []any{10, 20}, "chunks": []any{5}},
	})
	it := firstIssue(t, err)
	if it.Code != tsspec.CodeLengthMismatch || it.Path != "/metadata/chunks" {
		t.Fatalf("unexpected issue: %+v", it)
	}

	// a field-level failure suppresses the refinement
	_, err = cat.Resolve(ctx, map[string]any{
		"driver":   "zarr",
		"kvstore":  map[string]any{"driver": "memory"},
		"metadata": map[string]any{"shape": []any{10, 20}, "chunks": []any{0}},
	})
	iss, _ := tsspec.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/metadata/chunks/0" {
		t.Fatalf("unexpected issues: %v", iss)
	}
}

func TestModel_ExplicitNullOptional(t *testing.T) {
	o := g.Object("o").
		Field("limit", g.Int()).
		Field("name", g.String()).Default("x").
		MustBuild()
	ctx := context.Background()
	m, err := o.Resolve(ctx, map[string]any{"limit": nil})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !m.IsSet("limit") || m.Has("limit") {
		t.Fatalf("explicit null should be set but empty")
	}
	if diff := cmp.Diff(map[string]any{"limit": nil}, m.ToPlainMapping()); diff != "" {
		t.Fatalf("explicit null must be re-emitted:\n%s", diff)
	}
	if _, err := o.Resolve(ctx, map[string]any{"name": nil}); err == nil {
		t.Fatalf("null for a field with a non-nil default should fail")
	}
}

func TestModel_ExtendAndWithout(t *testing.T) {
	base := g.Object("base").
		Field("a", g.Int()).
		Field("b", g.Int()).
		Field("c", g.Int()).
		MustBuild()
	derived := g.Object("derived").Extend(base).
		Field("b", g.String()).Required().
		Without("c").
		MustBuild()
	names := []string{}
	for _, f := range derived.Fields() {
		names = append(names, f.Name())
	}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Fatalf("fields mismatch:\n%s", diff)
	}
	if f, _ := derived.Field("b"); !f.IsRequired() || f.Constraint().Kind() != g.KindString {
		t.Fatalf("override not applied")
	}
}

func TestModel_Accessors(t *testing.T) {
	o := g.Object("o").
		Field("shape", g.Array(g.Int())).
		Field("labels", g.Array(g.String())).
		Field("scale", g.Number()).
		MustBuild()
	m, err := o.Resolve(context.Background(), map[string]any{"shape": []any{1, 2}, "labels": []any{"x", "y"}, "scale": 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s, _ := m.Ints("shape"); len(s) != 2 || s[1] != 2 {
		t.Fatalf("Ints: %v", s)
	}
	if l, _ := m.Strings("labels"); len(l) != 2 || l[0] != "x" {
		t.Fatalf("Strings: %v", l)
	}
	if f, _ := m.Float("scale"); f != 2 {
		t.Fatalf("Float: %v", f)
	}
	if _, ok := m.Get("nope"); ok {
		t.Fatalf("Get should reject undeclared names")
	}
	v, _ := m.Get("shape")
	v.([]any)[0] = int64(99)
	if s, _ := m.Ints("shape"); s[0] != 1 {
		t.Fatalf("Get must not expose internal state")
	}
}
