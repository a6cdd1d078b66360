package kvstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/kvstore"
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

func TestResolve_URLShorthand(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		url  string
		want map[string]any
	}{
		{"file:///tmp/data", map[string]any{"driver": "file", "path": "/tmp/data"}},
		{"memory://", map[string]any{"driver": "memory", "path": ""}},
		{"memory://scratch/", map[string]any{"driver": "memory", "path": "scratch/"}},
		{"s3://my-bucket/a/b", map[string]any{"driver": "s3", "bucket": "my-bucket", "path": "a/b"}},
		{"s3://my-bucket", map[string]any{"driver": "s3", "bucket": "my-bucket", "path": ""}},
	}
	for _, tc := range cases {
		m, err := kvstore.Resolve(ctx, tc.url)
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.url, err)
		}
		if diff := cmp.Diff(tc.want, m.ToPlainMapping()); diff != "" {
			t.Fatalf("%s: mapping mismatch (-want +got):\n%s", tc.url, diff)
		}
		if got := kvstore.URL(m); got != tc.url {
			t.Fatalf("URL(%s) = %s", tc.url, got)
		}
	}
}

func TestResolve_URLRejected(t *testing.T) {
	ctx := context.Background()
	for _, url := range []string{"gs://bucket/x", "just-a-path", "s3://"} {
		_, err := kvstore.Resolve(ctx, url)
		if it := firstIssue(t, err); it.Code != tsspec.CodeInvalidFormat || it.Path != "/" {
			t.Fatalf("%s: unexpected issue %+v", url, it)
		}
		if !errors.Is(err, tsspec.ErrConstraintViolation) {
			t.Fatalf("%s: want ErrConstraintViolation, got %v", url, err)
		}
	}
	_, err := kvstore.Resolve(ctx, "file://")
	if it := firstIssue(t, err); it.Path != "/path" || it.Code != tsspec.CodeTooShort {
		t.Fatalf("unexpected issue: %+v", it)
	}
}

func TestResolve_Defaults(t *testing.T) {
	m, err := kvstore.Resolve(context.Background(), map[string]any{"driver": "s3", "bucket": "data.example"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if b, _ := m.Bool("requester_pays"); b {
		t.Fatalf("requester_pays should default to false")
	}
	if v, _ := m.Get("data_copy_concurrency"); v != "data_copy_concurrency" {
		t.Fatalf("data_copy_concurrency default not applied: %v", v)
	}
	if diff := cmp.Diff(map[string]any{"driver": "s3", "bucket": "data.example"}, m.ToPlainMapping()); diff != "" {
		t.Fatalf("defaults must not be emitted (-want +got):\n%s", diff)
	}
}

func TestResolve_Errors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		raw  map[string]any
		path string
		code string
	}{
		{map[string]any{"driver": "file"}, "/path", tsspec.CodeRequired},
		{map[string]any{"driver": "s3", "bucket": "Bad_Bucket"}, "/bucket", tsspec.CodePattern},
		{map[string]any{"driver": "s3", "bucket": "b1b", "endpoint": "ftp://x"}, "/endpoint", tsspec.CodePattern},
		{map[string]any{"driver": "memory", "atomic": "yes"}, "/atomic", tsspec.CodeInvalidType},
		{map[string]any{"driver": "memory", "bogus": 1}, "/bogus", tsspec.CodeUnknownKey},
		{map[string]any{"driver": "gcs"}, "/driver", tsspec.CodeDiscriminatorUnknown},
		{map[string]any{"driver": "file", "path": "/x", "file_io_concurrency": map[string]any{"limit": -1}}, "/file_io_concurrency/limit", tsspec.CodeTooSmall},
		{map[string]any{"driver": "file", "path": "/x", "context": map[string]any{"cache_pool": map[string]any{"total_bytes_limit": -5}}}, "/context/cache_pool/total_bytes_limit", tsspec.CodeTooSmall},
	}
	for _, tc := range cases {
		_, err := kvstore.Resolve(ctx, tc.raw)
		if it := firstIssue(t, err); it.Path != tc.path || it.Code != tc.code {
			t.Fatalf("%v: unexpected issue %+v", tc.raw, it)
		}
	}
}

func TestBuild_TypedMatchesRaw(t *testing.T) {
	ctx := context.Background()
	yes := true
	typed, err := kvstore.Build(ctx, kvstore.S3{
		Bucket:               "my-bucket",
		Path:                 "prefix/",
		RequesterPays:        &yes,
		S3RequestConcurrency: spec.Limit(16),
		Context:              &spec.Context{AWSCredentials: map[string]any{"type": "anonymous"}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	raw, err := kvstore.Resolve(ctx, map[string]any{
		"driver":                 "s3",
		"bucket":                 "my-bucket",
		"path":                   "prefix/",
		"requester_pays":         true,
		"s3_request_concurrency": map[string]any{"limit": 16},
		"context":                map[string]any{"aws_credentials": map[string]any{"type": "anonymous"}},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !typed.Equal(raw) {
		t.Fatalf("typed and raw differ:\n%s", cmp.Diff(raw.ToPlainMapping(), typed.ToPlainMapping()))
	}

	if _, err := kvstore.Build(ctx, kvstore.File{}); err == nil {
		t.Fatalf("empty file path should fail")
	}
	m, err := kvstore.Build(ctx, kvstore.Memory{})
	if err != nil || m.Tag() != "memory" {
		t.Fatalf("unexpected result: %v %v", m, err)
	}
}

func TestVariants_Registered(t *testing.T) {
	for tag, want := range map[string]any{
		"file":   kvstore.FileVariant,
		"memory": kvstore.MemoryVariant,
		"s3":     kvstore.S3Variant,
	} {
		got, ok := kvstore.Category.Lookup(tag)
		if !ok || any(got) != want {
			t.Fatalf("%s: registered variant mismatch", tag)
		}
		m, err := kvstore.Resolve(context.Background(), tag+"://bucket/x")
		if err != nil {
			t.Fatalf("%s: %v", tag, err)
		}
		if m.Schema() != got {
			t.Fatalf("%s: model validated against %q", tag, m.Schema().Name())
		}
	}
}
