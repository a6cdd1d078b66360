// Package kvstore declares the key-value store specs that back chunked
// drivers: local files, in-memory stores and S3.
package kvstore

import (
	"context"
	"fmt"
	"strings"

	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/spec"
)

// Category is the "kvstore" member of a driver spec, keyed by "driver". A
// string is read as a kvstore URL.
var Category = g.NewCategory("kvstore", "driver").
	Describe("key-value storage backend").
	Shorthand("kvstore URL (file://, memory:// or s3://)", ParseURL)

// BucketPattern matches S3 bucket names.
const BucketPattern = `^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`

// Base holds the members every kvstore accepts.
var Base = g.Object("kvstore").
	Field("path", g.String()).Describe("key prefix within the store").Default("").
	Field("context", g.Nested(spec.ContextObject)).
	MustBuild()

var (
	FileVariant = Category.Register("file", g.Object("file").Extend(Base).
		Describe("directory on the local filesystem").
		Field("path", g.String().NonEmpty()).Describe("root directory").Required().
		Field("file_io_concurrency", spec.ConcurrencyResource).
		Field("file_io_sync", spec.FileIOSyncResource).
		Field("file_io_mode", spec.FileIOModeResource).
		Field("file_io_locking", spec.FileIOLockingResource).
		MustBuild())

	MemoryVariant = Category.Register("memory", g.Object("memory").Extend(Base).
		Describe("process-local in-memory store").
		Field("memory_key_value_store", spec.Resource(g.Nested(g.Object("memory_key_value_store").MustBuild()))).
		Field("atomic", g.Bool()).Default(true).
		MustBuild())

	S3Variant = Category.Register("s3", g.Object("s3").Extend(Base).
		Describe("Amazon S3 or a compatible object store").
		Field("bucket", g.String().Pattern(BucketPattern)).Required().
		Field("requester_pays", g.Bool()).Default(false).
		Field("aws_region", g.String()).
		Field("endpoint", g.String().Pattern(`^https?://`)).
		Field("host_header", g.String()).
		Field("use_conditional_write", g.Bool()).
		Field("aws_credentials", spec.AWSCredentialsResource).
		Field("s3_request_concurrency", spec.ConcurrencyResource).
		Field("s3_request_retries", spec.RetriesResource).
		Field("experimental_s3_rate_limiter", spec.RateLimiterResource).
		Field("data_copy_concurrency", spec.ConcurrencyResource).Default("data_copy_concurrency").
		MustBuild())
)

// ParseURL expands a kvstore URL into its spec mapping.
func ParseURL(s string) (map[string]any, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return nil, fmt.Errorf("%q is not a kvstore URL", s)
	}
	switch scheme {
	case "file":
		return map[string]any{"driver": "file", "path": rest}, nil
	case "memory":
		return map[string]any{"driver": "memory", "path": rest}, nil
	case "s3":
		bucket, path, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("s3 URL %q has no bucket", s)
		}
		return map[string]any{"driver": "s3", "bucket": bucket, "path": path}, nil
	}
	return nil, fmt.Errorf("unsupported kvstore scheme %q", scheme)
}

// URL renders a kvstore model as a URL, or "" when the store has none.
func URL(m *g.Model) string {
	switch m.Tag() {
	case "file", "memory":
		return m.Tag() + "://" + m.String("path")
	case "s3":
		u := "s3://" + m.String("bucket")
		if p := m.String("path"); p != "" {
			u += "/" + p
		}
		return u
	}
	return ""
}

// Build marshals a typed kvstore spec and resolves it.
func Build(ctx context.Context, v any) (*g.Model, error) { return g.Build(ctx, Category, v) }

// Resolve validates a raw kvstore spec or URL.
func Resolve(ctx context.Context, v any) (*g.Model, error) { return Category.Resolve(ctx, v) }
