package codec

import (
	g "github.com/reoring/tsspec/dsl"
)

// BloscCnames are the compressors blosc can delegate to.
var BloscCnames = []string{"blosclz", "lz4", "lz4hc", "snappy", "zlib", "zstd"}

// Compressors is the zarr v2 "compressor" member, keyed by "id".
var Compressors = g.NewCategory("zarr.compressor", "id").
	Describe("zarr v2 chunk compressor")

var (
	ZarrBloscCompressor = Compressors.Register("blosc", g.Object("zarr.blosc").
		Field("cname", g.Enum(BloscCnames...)).Default("lz4").
		Field("clevel", g.Int().Range(0, 9)).Default(5).
		Field("shuffle", g.Int().OneOfValues(-1, 0, 1, 2)).Default(-1).
		Field("blocksize", g.Int().NonNegative()).Default(0).
		MustBuild())

	ZarrZlibCompressor = Compressors.Register("zlib", g.Object("zarr.zlib").
		Field("level", g.Int().Range(0, 9)).Default(1).
		MustBuild())

	ZarrBZ2Compressor = Compressors.Register("bz2", g.Object("zarr.bz2").
		Field("level", g.Int().Range(1, 9)).Default(1).
		MustBuild())

	ZarrZstdCompressor = Compressors.Register("zstd", g.Object("zarr.zstd").
		Field("level", g.Int().Range(-131072, 22)).Default(1).
		MustBuild())
)

// Compressor is the nullable zarr v2 compressor slot.
var Compressor = g.OneOf(Compressors).Nullable().Describe("compressor, or null for none")

// Filters is the zarr v2 "filters" member. TensorStore supports none, so
// only null or an empty list is accepted.
var Filters = g.Array(g.Any()).MaxLen(0).Nullable()
