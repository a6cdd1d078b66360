package tensorstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/tensorstore"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func zarrSpec() map[string]any {
	return map[string]any{
		"driver":  "zarr",
		"kvstore": "file:///tmp/data",
		"metadata": map[string]any{
			"shape":  []any{100, 200},
			"chunks": []any{10, 20},
			"dtype":  "<f4",
		},
	}
}

func TestValidate(t *testing.T) {
	m, err := tensorstore.Validate(context.Background(), zarrSpec())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Tag() != "zarr" || m.Sub("kvstore").Tag() != "file" {
		t.Fatalf("unexpected model: %v", m.ToPlainMapping())
	}
	s := tensorstore.Info(m)
	if s.DType != "float32" || s.Rank == nil || *s.Rank != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	_, err := tensorstore.Validate(context.Background(), map[string]any{"driver": "zar"})
	if !errors.Is(err, tsspec.ErrUnknownVariant) {
		t.Fatalf("want ErrUnknownVariant, got %v", err)
	}
}

func TestResolve_Categories(t *testing.T) {
	ctx := context.Background()
	if names := tensorstore.Categories(); len(names) < 3 {
		t.Fatalf("unexpected categories: %v", names)
	}
	m, err := tensorstore.Resolve(ctx, "kvstore", "s3://bucket/key")
	if err != nil || m.Tag() != "s3" {
		t.Fatalf("kvstore resolve: %v %v", m, err)
	}
	_, err = tensorstore.Resolve(ctx, "nope", map[string]any{})
	var uce *g.UnknownCategoryError
	if !errors.As(err, &uce) {
		t.Fatalf("want UnknownCategoryError, got %v", err)
	}
	if _, err := tensorstore.ValidateKvStore(ctx, map[string]any{"driver": "memory"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestValidateJSONAndYAML(t *testing.T) {
	ctx := context.Background()
	m, err := tensorstore.ValidateJSON(ctx, []byte(`{"driver": "n5", "kvstore": "memory://", "metadata": {"dataType": "uint8"}}`))
	if err != nil || m.Tag() != "n5" {
		t.Fatalf("json: %v", err)
	}
	y, err := tensorstore.ValidateYAML(ctx, []byte("driver: n5\nkvstore: memory://\nmetadata:\n  dataType: uint8\n"))
	if err != nil || !y.Equal(m) {
		t.Fatalf("yaml and json specs should resolve to equal models: %v", err)
	}
	_, err = tensorstore.ValidateJSON(ctx, []byte(`{"driver": "n5", "driver": "zarr"}`))
	if iss, _ := tsspec.AsIssues(err); len(iss) != 1 || iss[0].Code != tsspec.CodeDuplicateKey {
		t.Fatalf("want duplicate_key, got %v", err)
	}
}

func TestValidator_LogsAndWarns(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	opt := tsspec.DefaultParseOpt()
	opt.Strictness.OnDuplicateKey = tsspec.Warn
	v := tensorstore.New(tensorstore.WithLogger(zap.New(core)), tensorstore.WithParseOpt(opt))
	ctx := context.Background()

	if _, err := v.ValidateJSON(ctx, []byte(`{"driver": "n5", "driver": "n5", "kvstore": "memory://"}`)); err != nil {
		t.Fatalf("duplicate keys only warn: %v", err)
	}
	if n := logs.FilterMessage("input warning").FilterField(zap.String("path", "/driver")).Len(); n != 1 {
		t.Fatalf("want one input warning, got %d", n)
	}
	resolved := logs.FilterMessage("resolved").All()
	if len(resolved) != 1 || resolved[0].ContextMap()["variant"] != "n5" || resolved[0].ContextMap()["category"] != "driver" {
		t.Fatalf("unexpected resolve log: %v", resolved)
	}

	_, _ = v.Validate(ctx, map[string]any{"driver": "n5", "bogus": 1})
	failed := logs.FilterMessage("resolve failed").All()
	if len(failed) != 1 || failed[0].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected failure log: %v", failed)
	}
}

func TestValidator_FailFast(t *testing.T) {
	raw := map[string]any{"driver": "n5", "kvstore": "memory://", "open": "x", "bogus": 1}
	_, err := tensorstore.New().Validate(context.Background(), raw)
	if iss, _ := tsspec.AsIssues(err); len(iss) != 2 {
		t.Fatalf("want 2 issues, got %v", iss)
	}
	v := tensorstore.New(tensorstore.WithFailFast(true))
	if !v.ParseOpt().FailFast {
		t.Fatalf("WithFailFast not recorded")
	}
	_, err = v.Validate(context.Background(), raw)
	if iss, _ := tsspec.AsIssues(err); len(iss) != 1 {
		t.Fatalf("want 1 issue, got %v", iss)
	}
}

func TestNormalize(t *testing.T) {
	got, err := tensorstore.Normalize(context.Background(), map[string]any{"driver": "zarr", "kvstore": "memory://"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"driver": "zarr", "kvstore": map[string]any{"driver": "memory", "path": ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
	}
	again, err := tensorstore.Normalize(context.Background(), got)
	if err != nil || !cmp.Equal(got, again) {
		t.Fatalf("normalization is not idempotent: %v", cmp.Diff(got, again))
	}
}

func TestMerge(t *testing.T) {
	ctx := context.Background()
	m, err := tensorstore.Merge(ctx, zarrSpec(), map[string]any{
		"metadata": map[string]any{"dtype": "<i2"},
		"path":     "sub",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.String("path") != "sub" {
		t.Fatalf("override member not applied: %v", m.ToPlainMapping())
	}
	if s, _ := m.Sub("metadata").Ints("shape"); len(s) != 2 {
		t.Fatalf("metadata members should merge: %v", m.ToPlainMapping())
	}
	if tensorstore.Info(m).DType != "int16" {
		t.Fatalf("metadata dtype not overridden: %v", m.ToPlainMapping())
	}

	_, err = tensorstore.Merge(ctx, zarrSpec(), map[string]any{"metadata": map[string]any{"chunks": []any{1}}})
	if iss, _ := tsspec.AsIssues(err); len(iss) == 0 || iss[0].Path != "/metadata/chunks" {
		t.Fatalf("merged result must be validated: %v", err)
	}
}

func TestCompareAndDiff(t *testing.T) {
	ctx := context.Background()
	a := map[string]any{"driver": "zarr", "kvstore": "memory://", "path": "a"}
	b := map[string]any{"driver": "zarr", "kvstore": map[string]any{"driver": "memory"}, "path": "b"}

	same, err := tensorstore.Compare(ctx, a, a)
	if err != nil || !same {
		t.Fatalf("a spec equals itself: %v", err)
	}
	if same, _ := tensorstore.Compare(ctx, a, b); same {
		t.Fatalf("different paths compare equal")
	}
	if same, _ := tensorstore.Compare(ctx, a, b, "path", "kvstore.path"); !same {
		t.Fatalf("ignored members should not matter")
	}
	diff, err := tensorstore.Diff(ctx, a, b)
	if err != nil || !strings.Contains(diff, `"a"`) || !strings.Contains(diff, `"b"`) {
		t.Fatalf("unexpected diff: %q %v", diff, err)
	}
	if _, err := tensorstore.Compare(ctx, a, map[string]any{"driver": "nope"}); err == nil {
		t.Fatalf("invalid input must fail")
	}
}

func TestToJSONAndYAML(t *testing.T) {
	m, err := tensorstore.Validate(context.Background(), map[string]any{
		"driver":   "n5",
		"kvstore":  "memory://",
		"metadata": map[string]any{"dimensions": []any{4, 5}, "dataType": "uint8"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := tensorstore.ToJSON(m, "")
	if err != nil || !strings.HasPrefix(string(b), `{"driver":"n5","kvstore":{"driver":"memory","path":""}`) {
		t.Fatalf("unexpected json: %s %v", b, err)
	}
	y, err := tensorstore.ToYAML(m)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	for _, want := range []string{"driver: n5\n", "dimensions: [4, 5]", `path: ""`} {
		if !strings.Contains(string(y), want) {
			t.Fatalf("yaml output missing %q:\n%s", want, y)
		}
	}
	back, err := tensorstore.ValidateYAML(context.Background(), y)
	if err != nil || !back.Equal(m) {
		t.Fatalf("yaml output does not round trip: %v", err)
	}
}

func TestToJSON_KeepsDTypeReadable(t *testing.T) {
	m, err := tensorstore.Validate(context.Background(), map[string]any{
		"driver":   "zarr",
		"kvstore":  "memory://",
		"metadata": map[string]any{"dtype": "<f4", "shape": []any{2}, "chunks": []any{2}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, indent := range []string{"", "  "} {
		b, err := tensorstore.ToJSON(m, indent)
		if err != nil {
			t.Fatalf("json: %v", err)
		}
		if !strings.Contains(string(b), `"<f4"`) || strings.Contains(string(b), `\u003c`) {
			t.Fatalf("dtype should be emitted verbatim:\n%s", b)
		}
	}
}

func TestJSONSchema(t *testing.T) {
	s, err := tensorstore.JSONSchema("driver")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Discriminator == nil || s.Discriminator.PropertyName != "driver" || len(s.OneOf) != len(tensorstore.Drivers()) {
		t.Fatalf("unexpected driver schema: %+v", s)
	}
	if _, err := tensorstore.JSONSchema("nope"); err == nil {
		t.Fatalf("unknown category should fail")
	}
}

func TestDefault(t *testing.T) {
	if tensorstore.Default() == nil || tensorstore.Default().ParseOpt().MaxDepth != 64 {
		t.Fatalf("unexpected default validator")
	}
	if c, ok := tensorstore.Capabilities("zarr"); !ok || !c.Chunked {
		t.Fatalf("zarr capabilities: %+v", c)
	}
}
