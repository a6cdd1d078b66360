// Package codec declares the compression and encoding vocabularies of the
// chunked drivers: zarr v2 compressors, n5 compressions, zarr v3 codecs and
// the driver-keyed "codec" member of a schema.
package codec

import (
	"context"

	g "github.com/reoring/tsspec/dsl"
)

// Codec is the "codec" member of a schema, keyed by "driver".
var Codec = g.NewCategory("codec", "driver").
	Describe("driver-specific encoding constraints")

var (
	ZarrCodec = Codec.Register("zarr", g.Object("zarr codec").
		Field("compressor", Compressor).
		Field("filters", Filters).
		MustBuild())

	Zarr3Codec = Codec.Register("zarr3", g.Object("zarr3 codec").
		Field("codecs", Chain).
		MustBuild())

	N5Codec = Codec.Register("n5", g.Object("n5 codec").
		Field("compression", g.OneOf(N5Compressions)).
		MustBuild())

	NeuroglancerPrecomputedCodec = Codec.Register("neuroglancer_precomputed", g.Object("neuroglancer_precomputed codec").
		Field("encoding", g.Enum("raw", "jpeg", "png", "compressed_segmentation")).
		Field("jpeg_quality", g.Int().Range(0, 100)).
		Field("png_level", g.Int().Range(0, 9)).
		Field("shard_data_encoding", g.Enum("raw", "gzip")).
		MustBuild())
)

// Build marshals a typed schema codec and resolves it against Codec.
func Build(ctx context.Context, v any) (*g.Model, error) { return g.Build(ctx, Codec, v) }

// BuildCompressor resolves a typed zarr v2 compressor.
func BuildCompressor(ctx context.Context, v any) (*g.Model, error) {
	return g.Build(ctx, Compressors, v)
}

// BuildN5Compression resolves a typed n5 compression.
func BuildN5Compression(ctx context.Context, v any) (*g.Model, error) {
	return g.Build(ctx, N5Compressions, v)
}

// BuildZarr3 resolves a typed zarr3 codec.
func BuildZarr3(ctx context.Context, v any) (*g.Model, error) {
	return g.Build(ctx, Zarr3Codecs, v)
}

// Compression summarizes the compression a codec model describes, such as
// "blosc/lz4" or "gzip", or "" when there is none.
func Compression(m *g.Model) string {
	if m == nil {
		return ""
	}
	switch m.Tag() {
	case "zarr":
		return DescribeCompressor(m.Sub("compressor"))
	case "n5":
		return DescribeCompressor(m.Sub("compression"))
	case "zarr3":
		return DescribeChain(m.Subs("codecs"))
	case "neuroglancer_precomputed":
		return m.String("encoding")
	}
	return ""
}

// DescribeCompressor summarizes a zarr v2 compressor or n5 compression model.
func DescribeCompressor(m *g.Model) string { return describe(m, "cname") }

// DescribeChain summarizes the first compressing codec of a zarr3 chain,
// looking inside sharding codecs.
func DescribeChain(chain []*g.Model) string {
	for _, c := range chain {
		if c == nil {
			continue
		}
		if s, _ := StageOf(c.Tag()); s == BytesToBytes && c.Tag() != "crc32c" {
			return describe(c, "configuration", "cname")
		}
		if c.Tag() == "sharding_indexed" {
			if inner := DescribeChain(c.Sub("configuration").Subs("codecs")); inner != "" {
				return inner
			}
		}
	}
	return ""
}

func describe(m *g.Model, path ...string) string {
	if m == nil || m.Tag() == "raw" {
		return ""
	}
	if v, ok := m.Path(path...); ok {
		if s, ok := v.(string); ok && s != "" {
			return m.Tag() + "/" + s
		}
	}
	return m.Tag()
}
