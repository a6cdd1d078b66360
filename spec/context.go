package spec

import (
	"context"
	"strings"
	"time"

	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
)

// ResourceRefPattern matches references to context resources such as
// "cache_pool" or "cache_pool#remote".
const ResourceRefPattern = `^[A-Za-z_][A-Za-z0-9_]*(#.*)?$`

// Resource is the constraint of a context resource slot: a reference to a
// named resource, an inline value satisfying inline, or null.
func Resource(inline *g.Constraint) *g.Constraint {
	return g.Union(g.String().Pattern(ResourceRefPattern), inline).Nullable()
}

// Duration accepts Go/TensorStore duration strings such as "100ms" or "1s".
var Duration = g.String().Check("duration", func(v any) tsspec.Issues {
	if _, err := time.ParseDuration(v.(string)); err != nil {
		it := g.Violation(tsspec.CodeInvalidFormat, "duration (e.g. \"1s\")", v)
		it.Cause = err
		return tsspec.Issues{it}
	}
	return nil
})

// ConcurrencyLimit is a positive limit or "shared".
var ConcurrencyLimit = g.Union(g.Int().Positive(), g.Enum("shared"))

var (
	CachePool = g.Object("cache_pool").
		Field("total_bytes_limit", g.Int().NonNegative()).
		MustBuild()

	Concurrency = g.Object("concurrency").
		Field("limit", ConcurrencyLimit).
		MustBuild()

	RequestRetries = g.Object("request_retries").
		Field("max_retries", g.Int().NonNegative()).
		Field("initial_delay", Duration).
		Field("max_delay", Duration).
		MustBuild()

	FileIOLocking = g.Object("file_io_locking").
		Field("mode", g.Enum("os", "lockfile", "none")).
		Field("acquire_timeout", Duration).
		MustBuild()

	FileIOMode = g.Object("file_io_mode").
		Field("mode", g.String()).
		UnknownPassthrough().
		MustBuild()

	RateLimiter = g.Object("s3_rate_limiter").
		Field("read_rate", g.Number().NonNegative()).
		Field("write_rate", g.Number().NonNegative()).
		Field("doubling_time", Duration).
		MustBuild()

	AWSCredentials = g.Object("aws_credentials").
		Field("type", g.Enum("default", "anonymous", "environment", "profile", "imds", "ecs")).
		Field("profile", g.String()).
		Field("filename", g.String()).
		Field("metadata_endpoint", g.String().Pattern(`^https?://`)).
		UnknownPassthrough().
		MustBuild()
)

// Context resource constraints by resource type.
var (
	CachePoolResource      = Resource(g.Nested(CachePool))
	ConcurrencyResource    = Resource(g.Nested(Concurrency))
	RetriesResource        = Resource(g.Nested(RequestRetries))
	FileIOSyncResource     = Resource(g.Bool())
	FileIOLockingResource  = Resource(g.Nested(FileIOLocking))
	FileIOModeResource     = Resource(g.Nested(FileIOMode))
	RateLimiterResource    = Resource(g.Nested(RateLimiter))
	AWSCredentialsResource = Resource(g.Nested(AWSCredentials))
)

// ContextObject is the "context" member of a spec. Resource types are
// declared; identified resources ("cache_pool#remote") pass through and are
// checked against their base type.
var ContextObject = g.Object("context").
	Describe("shared resources such as cache pools and concurrency limits").
	Field("cache_pool", CachePoolResource).
	Field("data_copy_concurrency", ConcurrencyResource).
	Field("file_io_concurrency", ConcurrencyResource).
	Field("file_io_sync", FileIOSyncResource).
	Field("file_io_locking", FileIOLockingResource).
	Field("file_io_mode", FileIOModeResource).
	Field("http_request_concurrency", ConcurrencyResource).
	Field("http_request_retries", RetriesResource).
	Field("s3_request_concurrency", ConcurrencyResource).
	Field("s3_request_retries", RetriesResource).
	Field("experimental_s3_rate_limiter", RateLimiterResource).
	Field("aws_credentials", AWSCredentialsResource).
	UnknownPassthrough().
	Refine("identified resources", checkIdentifiedResources).
	MustBuild()

func checkIdentifiedResources(ctx context.Context, m *g.Model) tsspec.Issues {
	var iss tsspec.Issues
	for key, v := range m.Extra() {
		base, _, ok := strings.Cut(key, "#")
		if !ok {
			continue
		}
		f, declared := m.Schema().Field(base)
		if !declared {
			continue
		}
		if _, err := f.Constraint().Validate(ctx, v); err != nil {
			iss = append(iss, tsspec.ToIssues(err).Rebase(tsspec.JoinPointer("", key))...)
		}
	}
	return sortIssues(iss)
}
