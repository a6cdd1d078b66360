package tsspec_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	tsspec "github.com/reoring/tsspec"
)

func TestDecodeJSON_Values(t *testing.T) {
	v, err := tsspec.DecodeJSON(context.Background(), []byte(`{"shape": [10, 2.5], "name": "x", "fill": null, "ok": true}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"shape": []any{int64(10), 2.5}, "name": "x", "fill": nil, "ok": true}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON_DuplicateKey(t *testing.T) {
	_, err := tsspec.DecodeJSON(context.Background(), []byte(`{"a":1,"a":2}`))
	iss, ok := tsspec.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != tsspec.CodeDuplicateKey || iss[0].Path != "/a" {
		t.Fatalf("expected duplicate_key at /a, got: %v", err)
	}
	if !errors.Is(err, tsspec.ErrParse) {
		t.Fatalf("duplicate keys are parse errors")
	}
}

func TestDecodeJSON_DuplicateKeyNestedPath(t *testing.T) {
	_, err := tsspec.DecodeJSON(context.Background(), []byte(`[{"a":1,"a":2}]`))
	iss, _ := tsspec.AsIssues(err)
	if len(iss) == 0 || iss[0].Path != "/0/a" {
		t.Fatalf("expected path /0/a, got: %v", iss)
	}
}

func TestDecodeJSON_DuplicateKeyWarn(t *testing.T) {
	var warned []tsspec.Issue
	ctx := tsspec.WithWarnings(context.Background(), func(it tsspec.Issue) { warned = append(warned, it) })
	opt := tsspec.ParseOpt{Strictness: tsspec.Strictness{OnDuplicateKey: tsspec.Warn}}
	v, err := tsspec.DecodeJSON(ctx, []byte(`{"a":1,"a":2}`), opt)
	if err != nil {
		t.Fatalf("warn mode should not fail: %v", err)
	}
	if v.(map[string]any)["a"] != int64(2) {
		t.Fatalf("last value wins: %v", v)
	}
	if len(warned) != 1 || warned[0].Path != "/a" {
		t.Fatalf("expected one warning, got %v", warned)
	}
}

func TestDecodeJSON_MaxDepth(t *testing.T) {
	_, err := tsspec.DecodeJSON(context.Background(), []byte(`{"a":{"b":{"c":1}}}`), tsspec.ParseOpt{MaxDepth: 2})
	iss, _ := tsspec.AsIssues(err)
	if len(iss) == 0 || iss[0].Path != "/a/b" {
		t.Fatalf("expected path /a/b for max depth, got: %v", iss)
	}
}

func TestDecodeJSON_MaxBytes(t *testing.T) {
	data := append([]byte("{}"), bytes.Repeat([]byte(" "), 1024)...)
	_, err := tsspec.DecodeJSON(context.Background(), data, tsspec.ParseOpt{MaxBytes: 2})
	iss, _ := tsspec.AsIssues(err)
	if len(iss) == 0 || iss[0].Code != tsspec.CodeTruncated || iss[0].Path != "/" {
		t.Fatalf("expected truncated issue, got: %v", iss)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, err := tsspec.DecodeJSON(context.Background(), []byte(`{"a":`))
	if !errors.Is(err, tsspec.ErrParse) {
		t.Fatalf("want ErrParse, got %v", err)
	}
	_, err = tsspec.DecodeJSON(context.Background(), []byte(`{"metadata": {"shape": [1, 2`))
	iss, _ := tsspec.AsIssues(err)
	if len(iss) != 1 || !strings.HasPrefix(iss[0].Path, "/metadata/shape") {
		t.Fatalf("parse errors should point into the document, got %v", iss)
	}
	if _, err := tsspec.DecodeJSON(context.Background(), []byte(`{} {}`)); !errors.Is(err, tsspec.ErrParse) {
		t.Fatalf("trailing data should fail, got %v", err)
	}
}

func TestDecodeYAML(t *testing.T) {
	ctx := context.Background()
	v, err := tsspec.DecodeYAML(ctx, []byte("driver: zarr\nshape: [4, 5]\nscale: 0.5\nfill: ~\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"driver": "zarr", "shape": []any{int64(4), int64(5)}, "scale": 0.5, "fill": nil}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("decoded value mismatch (-want +got):\n%s", diff)
	}

	_, err = tsspec.DecodeYAML(ctx, []byte("metadata:\n  dtype: a\n  dtype: b\n"))
	iss, _ := tsspec.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != tsspec.CodeDuplicateKey || iss[0].Path != "/metadata/dtype" {
		t.Fatalf("expected duplicate_key at /metadata/dtype, got: %v", err)
	}
	var de *tsspec.DuplicateKeyError
	if !errors.As(iss[0].Cause, &de) || de.Line != 3 || de.FirstLine != 2 {
		t.Fatalf("duplicate key positions missing: %+v", iss[0].Cause)
	}

	if _, err := tsspec.DecodeYAML(ctx, nil); !errors.Is(err, tsspec.ErrParse) {
		t.Fatalf("empty document should be a parse error, got %v", err)
	}
}

func TestDecodeYAML_Aliases(t *testing.T) {
	ctx := context.Background()
	v, err := tsspec.DecodeYAML(ctx, []byte("base: &b {x: 1}\ncopy: *b\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"base": map[string]any{"x": int64(1)}, "copy": map[string]any{"x": int64(1)}}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("alias not expanded (-want +got):\n%s", diff)
	}

	// MaxDepth 0 disables the depth limit, so only cycle detection stops this.
	_, err = tsspec.DecodeYAML(ctx, []byte("a: &x [*x]\n"), tsspec.ParseOpt{})
	iss, _ := tsspec.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != tsspec.CodeParseError || !strings.Contains(iss[0].Message, "itself") {
		t.Fatalf("want a parse error for a recursive alias, got %v", err)
	}
}

func TestDecodeYAML_AliasExpansionBudget(t *testing.T) {
	var b strings.Builder
	b.WriteString("a: &a [" + strings.TrimSuffix(strings.Repeat(`"lol",`, 9), ",") + "]\n")
	for prev, name := 'a', 'b'; name <= 'g'; prev, name = name, name+1 {
		b.WriteString(fmt.Sprintf("%c: &%c [%s]\n", name, name, strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*%c,", prev), 9), ",")))
	}
	_, err := tsspec.DecodeYAML(context.Background(), []byte(b.String()), tsspec.DefaultParseOpt())
	if !errors.Is(err, tsspec.ErrParse) || !strings.Contains(err.Error(), "aliasing") {
		t.Fatalf("want an excessive aliasing parse error, got %v", err)
	}
}

func TestStrictYAMLReader_ReadAll(t *testing.T) {
	r := tsspec.NewStrictYAMLReader(bytes.NewReader([]byte("a: 1\n---\nb: 2\n")), tsspec.DefaultParseOpt())
	docs, err := r.ReadAll()
	if err != nil || len(docs) != 2 {
		t.Fatalf("want two documents, got %v %v", docs, err)
	}
}

func TestDecode_Sniffs(t *testing.T) {
	ctx := context.Background()
	for _, in := range []string{`{"driver": "n5"}`, "driver: n5\n", "  \n{\"driver\":\"n5\"}"} {
		v, err := tsspec.Decode(ctx, []byte(in))
		if err != nil || v.(map[string]any)["driver"] != "n5" {
			t.Fatalf("decode %q: %v %v", in, v, err)
		}
	}
	if !tsspec.LooksLikeJSON([]byte(" [1]")) || tsspec.LooksLikeJSON([]byte("- 1")) {
		t.Fatalf("LooksLikeJSON misclassified input")
	}
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]tsspec.Severity{"ignore": tsspec.Ignore, "warn": tsspec.Warn, "error": tsspec.Error, "bogus": tsspec.Error} {
		if got := tsspec.ParseSeverity(in); got != want {
			t.Fatalf("ParseSeverity(%q) = %v, want %v", in, got, want)
		}
	}
}

type countingDriver struct {
	tsspec.JSONDriver
	calls int
}

func (c *countingDriver) NewBytes(b []byte) tsspec.Source {
	c.calls++
	return c.JSONDriver.NewBytes(b)
}

func TestSetJSONDriver(t *testing.T) {
	d := &countingDriver{JSONDriver: tsspec.CurrentJSONDriver()}
	tsspec.SetJSONDriver(d)
	defer tsspec.UseDefaultJSONDriver()

	if _, err := tsspec.DecodeJSON(context.Background(), []byte(`{"a": 1}`)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.calls != 1 || tsspec.CurrentJSONDriver().Name() != "go-json" {
		t.Fatalf("custom driver not used: calls=%d", d.calls)
	}
	tsspec.SetJSONDriver(nil)
	if tsspec.CurrentJSONDriver() != tsspec.JSONDriver(d) {
		t.Fatalf("nil driver must be ignored")
	}
}

func TestContextFlags(t *testing.T) {
	var nilCtx context.Context
	if tsspec.IsFailFast(nilCtx) {
		t.Fatalf("a nil context is not fail-fast")
	}
	if tsspec.IsFailFast(context.Background()) {
		t.Fatalf("fail-fast is off by default")
	}
	if !tsspec.IsFailFast(tsspec.WithFailFast(context.Background(), true)) {
		t.Fatalf("WithFailFast(true) not observed")
	}
}
