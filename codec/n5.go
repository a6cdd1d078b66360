package codec

import (
	g "github.com/reoring/tsspec/dsl"
)

// N5Compressions is the n5 "compression" member, keyed by "type". A bare
// string names a compression with default settings.
var N5Compressions = g.NewCategory("n5.compression", "type").
	Describe("n5 block compression").
	Shorthand("compression type", func(s string) (map[string]any, error) {
		return map[string]any{"type": s}, nil
	})

var (
	N5BloscCompression = N5Compressions.Register("blosc", g.Object("n5.blosc").
		Field("cname", g.Enum(BloscCnames...)).Default("lz4").
		Field("clevel", g.Int().Range(0, 9)).Default(5).
		Field("shuffle", g.Int().OneOfValues(0, 1, 2)).Default(1).
		Field("blocksize", g.Int().NonNegative()).Default(0).
		MustBuild())

	N5Bzip2Compression = N5Compressions.Register("bzip2", g.Object("n5.bzip2").
		Field("blockSize", g.Int().Range(1, 9)).Default(9).
		MustBuild())

	N5GzipCompression = N5Compressions.Register("gzip", g.Object("n5.gzip").
		Field("level", g.Int().Range(-1, 9)).Default(-1).
		Field("useZlib", g.Bool()).Default(false).
		MustBuild())

	N5RawCompression = N5Compressions.Register("raw", g.Object("n5.raw").MustBuild())

	N5XzCompression = N5Compressions.Register("xz", g.Object("n5.xz").
		Field("preset", g.Int().Range(0, 9)).Default(6).
		MustBuild())

	N5ZstdCompression = N5Compressions.Register("zstd", g.Object("n5.zstd").
		Field("level", g.Int().Max(22)).Default(0).
		MustBuild())
)
