package spec_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/codec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/spec"
)

func firstIssue(t *testing.T, err error) tsspec.Issue {
	t.Helper()
	iss, ok := tsspec.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected issues, got %v", err)
	}
	return iss[0]
}

func TestContext_Resources(t *testing.T) {
	ctx := context.Background()
	m, err := spec.ContextObject.Resolve(ctx, map[string]any{
		"cache_pool":                map[string]any{"total_bytes_limit": 1000000},
		"data_copy_concurrency":     map[string]any{"limit": "shared"},
		"file_io_concurrency":       "file_io_concurrency#fast",
		"file_io_concurrency#fast":  map[string]any{"limit": 4},
		"experimental_feature_flag": true,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := m.Extra()["file_io_concurrency#fast"]; !ok {
		t.Fatalf("identified resource should pass through: %v", m.ToPlainMapping())
	}

	_, err = spec.ContextObject.Resolve(ctx, map[string]any{"data_copy_concurrency#x": map[string]any{"limit": 0}})
	if it := firstIssue(t, err); it.Path != "/data_copy_concurrency#x/limit" || it.Code != tsspec.CodeTooSmall {
		t.Fatalf("unexpected issue: %+v", it)
	}
	_, err = spec.ContextObject.Resolve(ctx, map[string]any{"s3_request_retries": map[string]any{"initial_delay": "soon"}})
	if it := firstIssue(t, err); it.Path != "/s3_request_retries/initial_delay" || it.Code != tsspec.CodeInvalidFormat {
		t.Fatalf("unexpected issue: %+v", it)
	}
	_, err = spec.ContextObject.Resolve(ctx, map[string]any{"cache_pool": "not a reference"})
	if it := firstIssue(t, err); it.Path != "/cache_pool" || it.Code != tsspec.CodePattern {
		t.Fatalf("unexpected issue: %+v", it)
	}
}

func TestIndexDomain(t *testing.T) {
	ctx := context.Background()
	valid := []map[string]any{
		{"inclusive_min": []any{0, 0}, "exclusive_max": []any{10, 20}, "shape": []any{10, 20}, "labels": []any{"x", "y"}},
		{"inclusive_min": []any{"-inf", []any{0}}, "exclusive_max": []any{"+inf", []any{10}}},
		{"rank": 0},
	}
	for _, raw := range valid {
		if _, err := spec.IndexDomainObject.Resolve(ctx, raw); err != nil {
			t.Fatalf("%v: unexpected err: %v", raw, err)
		}
	}
	cases := []struct {
		raw  map[string]any
		path string
		code string
	}{
		{map[string]any{"inclusive_min": []any{0, 0}, "exclusive_max": []any{10, 20}, "shape": []any{10, 21}}, "/shape/1", tsspec.CodeInconsistent},
		{map[string]any{"inclusive_min": []any{5}, "inclusive_max": []any{3}}, "/inclusive_max/0", tsspec.CodeInconsistent},
		{map[string]any{"rank": 3, "labels": []any{"x", "y"}}, "/labels", tsspec.CodeLengthMismatch},
		{map[string]any{"exclusive_max": []any{1}, "inclusive_max": []any{0}}, "/inclusive_max", tsspec.CodeInconsistent},
		{map[string]any{"labels": []any{"x", "x"}}, "/labels/1", tsspec.CodeInconsistent},
		{map[string]any{"rank": 33}, "/rank", tsspec.CodeTooBig},
		{map[string]any{"shape": []any{-1}}, "/shape/0", tsspec.CodeTooSmall},
	}
	for _, tc := range cases {
		_, err := spec.IndexDomainObject.Resolve(ctx, tc.raw)
		if it := firstIssue(t, err); it.Path != tc.path || it.Code != tc.code {
			t.Fatalf("%v: unexpected issue %+v", tc.raw, it)
		}
	}
}

func TestIndexTransform(t *testing.T) {
	ctx := context.Background()
	m, err := spec.IndexTransformObject.Resolve(ctx, map[string]any{
		"input_rank": 2,
		"output":     []any{map[string]any{"input_dimension": 1}, map[string]any{"offset": 5}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	outs := m.Subs("output")
	if s, _ := outs[1].Int("stride"); s != 1 {
		t.Fatalf("stride default not applied")
	}
	if r, _ := spec.OutputRank(m); r != 2 {
		t.Fatalf("unexpected output rank %d", r)
	}

	cases := []struct {
		raw  map[string]any
		path string
	}{
		{map[string]any{"input_rank": 2, "output": []any{map[string]any{"input_dimension": 2}}}, "/output/0/input_dimension"},
		{map[string]any{"output": []any{map[string]any{"input_dimension": 0, "index_array": []any{1, 2}}}}, "/output/0/index_array"},
		{map[string]any{"output": []any{map[string]any{"stride": 0}}}, "/output/0/stride"},
		{map[string]any{"output": []any{map[string]any{"index_array_bounds": []any{0, "+inf"}}}}, "/output/0/index_array_bounds"},
		{map[string]any{"input_shape": []any{3}, "input_labels": []any{"a", "b"}}, "/input_labels"},
	}
	for _, tc := range cases {
		_, err := spec.IndexTransformObject.Resolve(ctx, tc.raw)
		if it := firstIssue(t, err); it.Path != tc.path {
			t.Fatalf("%v: unexpected issue %+v", tc.raw, it)
		}
	}
}

func TestChunkLayout(t *testing.T) {
	ctx := context.Background()
	m, err := spec.ChunkLayoutObject.Resolve(ctx, map[string]any{
		"grid_origin": []any{0, 0},
		"inner_order": []any{1, 0},
		"read_chunk":  map[string]any{"shape": []any{64, -1}},
		"chunk":       map[string]any{"elements": 1000},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r, ok := spec.LayoutRank(m); !ok || r != 2 {
		t.Fatalf("unexpected layout rank %d", r)
	}
	if r, ok := spec.LayoutRank(mustLayout(t, map[string]any{"write_chunk": map[string]any{"aspect_ratio": []any{1, 2, 2}}})); !ok || r != 3 {
		t.Fatalf("rank should come from a grid: %d", r)
	}

	_, err = spec.ChunkLayoutObject.Resolve(ctx, map[string]any{"inner_order": []any{0, 0}})
	if it := firstIssue(t, err); it.Path != "/inner_order" || it.Code != tsspec.CodeInconsistent {
		t.Fatalf("unexpected issue: %+v", it)
	}
	_, err = spec.ChunkLayoutObject.Resolve(ctx, map[string]any{"rank": 2, "write_chunk": map[string]any{"shape": []any{64}}})
	if it := firstIssue(t, err); it.Path != "/write_chunk/shape" || it.Code != tsspec.CodeLengthMismatch {
		t.Fatalf("unexpected issue: %+v", it)
	}
	_, err = spec.ChunkLayoutObject.Resolve(ctx, map[string]any{"chunk": map[string]any{"shape": []any{-2}}})
	if it := firstIssue(t, err); it.Path != "/chunk/shape/0" || it.Code != tsspec.CodeTooSmall {
		t.Fatalf("unexpected issue: %+v", it)
	}
}

func mustLayout(t *testing.T, raw map[string]any) *g.Model {
	t.Helper()
	m, err := spec.ChunkLayoutObject.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return m
}

func TestSchema_RankAgreement(t *testing.T) {
	ctx := context.Background()
	m, err := spec.SchemaObject.Resolve(ctx, map[string]any{
		"dtype":           "uint8",
		"domain":          map[string]any{"shape": []any{1, 2}},
		"chunk_layout":    map[string]any{"inner_order": []any{0, 1}},
		"codec":           map[string]any{"driver": "zarr3", "codecs": []any{"bytes"}},
		"dimension_units": []any{"4nm", []any{2, "s"}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r, ok := spec.SchemaRank(m); !ok || r != 2 {
		t.Fatalf("unexpected rank %d", r)
	}

	_, err = spec.SchemaObject.Resolve(ctx, map[string]any{"rank": 3, "domain": map[string]any{"shape": []any{1, 2}}})
	if it := firstIssue(t, err); it.Path != "/domain" || it.Code != tsspec.CodeInconsistent {
		t.Fatalf("unexpected issue: %+v", it)
	}
	_, err = spec.SchemaObject.Resolve(ctx, map[string]any{"domain": map[string]any{"shape": []any{1}}, "dimension_units": []any{nil, nil}})
	if it := firstIssue(t, err); it.Path != "/dimension_units" {
		t.Fatalf("unexpected issue: %+v", it)
	}
	_, err = spec.SchemaObject.Resolve(ctx, map[string]any{"dimension_units": []any{"4.5.6"}})
	if it := firstIssue(t, err); it.Path != "/dimension_units/0" || it.Code != tsspec.CodeInvalidFormat {
		t.Fatalf("unexpected issue: %+v", it)
	}
	_, err = spec.SchemaObject.Resolve(ctx, map[string]any{"dtype": "uint7"})
	if it := firstIssue(t, err); it.Path != "/dtype" || it.Code != tsspec.CodeInvalidEnum {
		t.Fatalf("unexpected issue: %+v", it)
	}
}

func TestParseUnit(t *testing.T) {
	cases := []struct {
		in   string
		mult float64
		base string
	}{
		{"4nm", 4, "nm"},
		{"1.5 s", 1.5, "s"},
		{"nm", 1, "nm"},
		{"", 1, ""},
		{"1e3", 1000, ""},
	}
	for _, tc := range cases {
		mult, base, err := spec.ParseUnit(tc.in)
		if err != nil || mult != tc.mult || base != tc.base {
			t.Fatalf("ParseUnit(%q) = %v %q %v", tc.in, mult, base, err)
		}
	}
	if _, _, err := spec.ParseUnit("4.5.6"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildSchema_MatchesRaw(t *testing.T) {
	ctx := context.Background()
	rank := 2
	typed, err := spec.BuildSchema(ctx, spec.Schema{
		Rank:   &rank,
		DType:  "float32",
		Domain: &spec.IndexDomain{Shape: []int64{10, 20}, Labels: []string{"y", "x"}},
		Codec:  codec.Zarr3{Codecs: []any{codec.Bytes{Endian: "little"}}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	raw, err := spec.SchemaObject.Resolve(ctx, map[string]any{
		"rank":   2,
		"dtype":  "float32",
		"domain": map[string]any{"shape": []any{10, 20}, "labels": []any{"y", "x"}},
		"codec":  map[string]any{"driver": "zarr3", "codecs": []any{map[string]any{"name": "bytes", "configuration": map[string]any{"endian": "little"}}}},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !typed.Equal(raw) {
		t.Fatalf("typed and raw differ:\n%s", cmp.Diff(raw.ToPlainMapping(), typed.ToPlainMapping()))
	}
}

func TestBuildContext_Extra(t *testing.T) {
	m, err := spec.BuildContext(context.Background(), spec.Context{
		FileIOConcurrency: spec.Limit(8),
		CachePool:         "cache_pool#big",
		Extra:             map[string]any{"cache_pool#big": map[string]any{"total_bytes_limit": 1 << 30}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := map[string]any{
		"file_io_concurrency": map[string]any{"limit": int64(8)},
		"cache_pool":          "cache_pool#big",
		"cache_pool#big":      map[string]any{"total_bytes_limit": int64(1 << 30)},
	}
	if diff := cmp.Diff(want, m.ToPlainMapping()); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildTransformAndLayout(t *testing.T) {
	ctx := context.Background()
	dim := 0
	if _, err := spec.BuildIndexTransform(ctx, spec.IndexTransform{
		InputShape: []int64{4},
		Output:     []spec.OutputIndexMap{{InputDimension: &dim}},
	}); err != nil {
		t.Fatalf("build transform: %v", err)
	}
	if _, err := spec.BuildChunkLayout(ctx, spec.ChunkLayout{InnerOrder: []int{0, 2}}); err == nil {
		t.Fatalf("expected permutation failure")
	}
	if _, err := spec.BuildIndexDomain(ctx, spec.IndexDomain{Shape: []int64{3}, Labels: []string{"x"}}); err != nil {
		t.Fatalf("build domain: %v", err)
	}
}
