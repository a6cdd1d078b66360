package spec

import (
	"context"

	g "github.com/reoring/tsspec/dsl"
)

// Schema is the typed form of SchemaObject. Codec holds a codec value such
// as codec.Zarr3.
type Schema struct {
	Rank           *int         `json:"rank,omitempty"`
	DType          string       `json:"dtype,omitempty"`
	Domain         *IndexDomain `json:"domain,omitempty"`
	ChunkLayout    *ChunkLayout `json:"chunk_layout,omitempty"`
	Codec          any          `json:"codec,omitempty"`
	FillValue      any          `json:"fill_value,omitempty"`
	DimensionUnits []any        `json:"dimension_units,omitempty"`
}

// IndexDomain is the typed form of IndexDomainObject. Bounds are integers,
// "-inf"/"+inf", or one-element lists for implicit bounds.
type IndexDomain struct {
	Rank                *int     `json:"rank,omitempty"`
	InclusiveMin        []any    `json:"inclusive_min,omitempty"`
	ExclusiveMax        []any    `json:"exclusive_max,omitempty"`
	InclusiveMax        []any    `json:"inclusive_max,omitempty"`
	Shape               []int64  `json:"shape,omitempty"`
	Labels              []string `json:"labels,omitempty"`
	ImplicitLowerBounds []bool   `json:"implicit_lower_bounds,omitempty"`
	ImplicitUpperBounds []bool   `json:"implicit_upper_bounds,omitempty"`
}

type OutputIndexMap struct {
	Offset           *int64 `json:"offset,omitempty"`
	Stride           *int64 `json:"stride,omitempty"`
	InputDimension   *int   `json:"input_dimension,omitempty"`
	IndexArray       any    `json:"index_array,omitempty"`
	IndexArrayBounds []any  `json:"index_array_bounds,omitempty"`
}

type IndexTransform struct {
	InputRank           *int             `json:"input_rank,omitempty"`
	InputInclusiveMin   []any            `json:"input_inclusive_min,omitempty"`
	InputExclusiveMax   []any            `json:"input_exclusive_max,omitempty"`
	InputInclusiveMax   []any            `json:"input_inclusive_max,omitempty"`
	InputShape          []int64          `json:"input_shape,omitempty"`
	InputLabels         []string         `json:"input_labels,omitempty"`
	ImplicitLowerBounds []bool           `json:"implicit_lower_bounds,omitempty"`
	ImplicitUpperBounds []bool           `json:"implicit_upper_bounds,omitempty"`
	Output              []OutputIndexMap `json:"output,omitempty"`
}

type ChunkLayoutGrid struct {
	Shape                     []int64   `json:"shape,omitempty"`
	ShapeSoftConstraint       []int64   `json:"shape_soft_constraint,omitempty"`
	AspectRatio               []float64 `json:"aspect_ratio,omitempty"`
	AspectRatioSoftConstraint []float64 `json:"aspect_ratio_soft_constraint,omitempty"`
	Elements                  *int64    `json:"elements,omitempty"`
	ElementsSoftConstraint    *int64    `json:"elements_soft_constraint,omitempty"`
}

type ChunkLayout struct {
	Rank                     *int             `json:"rank,omitempty"`
	GridOrigin               []int64          `json:"grid_origin,omitempty"`
	GridOriginSoftConstraint []int64          `json:"grid_origin_soft_constraint,omitempty"`
	InnerOrder               []int            `json:"inner_order,omitempty"`
	InnerOrderSoftConstraint []int            `json:"inner_order_soft_constraint,omitempty"`
	WriteChunk               *ChunkLayoutGrid `json:"write_chunk,omitempty"`
	ReadChunk                *ChunkLayoutGrid `json:"read_chunk,omitempty"`
	CodecChunk               *ChunkLayoutGrid `json:"codec_chunk,omitempty"`
	Chunk                    *ChunkLayoutGrid `json:"chunk,omitempty"`
}

// Context is the typed form of ContextObject. Each resource is a reference
// string or an inline value; Extra carries identified resources such as
// "cache_pool#remote".
type Context struct {
	CachePool           any `json:"cache_pool,omitempty"`
	DataCopyConcurrency any `json:"data_copy_concurrency,omitempty"`
	FileIOConcurrency   any `json:"file_io_concurrency,omitempty"`
	FileIOSync          any `json:"file_io_sync,omitempty"`
	FileIOLocking       any `json:"file_io_locking,omitempty"`
	FileIOMode          any `json:"file_io_mode,omitempty"`
	HTTPConcurrency     any `json:"http_request_concurrency,omitempty"`
	HTTPRetries         any `json:"http_request_retries,omitempty"`
	S3Concurrency       any `json:"s3_request_concurrency,omitempty"`
	S3Retries           any `json:"s3_request_retries,omitempty"`
	S3RateLimiter       any `json:"experimental_s3_rate_limiter,omitempty"`
	AWSCredentials      any `json:"aws_credentials,omitempty"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON merges Extra into the declared resources.
func (c Context) MarshalJSON() ([]byte, error) {
	type plain Context
	return g.MarshalMerged(plain(c), c.Extra)
}

// Limit builds an inline {"limit": n} concurrency resource.
func Limit(n int) map[string]any { return map[string]any{"limit": n} }

// BuildSchema resolves a typed schema.
func BuildSchema(ctx context.Context, s Schema) (*g.Model, error) {
	return g.BuildObject(ctx, SchemaObject, s)
}

func BuildIndexDomain(ctx context.Context, d IndexDomain) (*g.Model, error) {
	return g.BuildObject(ctx, IndexDomainObject, d)
}

func BuildIndexTransform(ctx context.Context, t IndexTransform) (*g.Model, error) {
	return g.BuildObject(ctx, IndexTransformObject, t)
}

func BuildChunkLayout(ctx context.Context, l ChunkLayout) (*g.Model, error) {
	return g.BuildObject(ctx, ChunkLayoutObject, l)
}

func BuildContext(ctx context.Context, c Context) (*g.Model, error) {
	return g.BuildObject(ctx, ContextObject, c)
}
