package codec

import (
	"fmt"

	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
)

// Stage is the position a zarr3 codec takes in a codec chain.
type Stage int

const (
	ArrayToArray Stage = iota
	ArrayToBytes
	BytesToBytes
)

func (s Stage) String() string {
	switch s {
	case ArrayToArray:
		return "array -> array"
	case ArrayToBytes:
		return "array -> bytes"
	default:
		return "bytes -> bytes"
	}
}

var stages = map[string]Stage{
	"transpose":        ArrayToArray,
	"bytes":            ArrayToBytes,
	"sharding_indexed": ArrayToBytes,
	"gzip":             BytesToBytes,
	"blosc":            BytesToBytes,
	"zstd":             BytesToBytes,
	"crc32c":           BytesToBytes,
}

// StageOf reports the chain stage of a zarr3 codec name.
func StageOf(name string) (Stage, bool) {
	s, ok := stages[name]
	return s, ok
}

// Zarr3Codecs is a single zarr3 codec, keyed by "name". A bare string names
// a codec with its default configuration.
var Zarr3Codecs = g.NewCategory("zarr3.codec", "name").
	Describe("zarr v3 codec").
	Shorthand("codec name", func(s string) (map[string]any, error) {
		return map[string]any{"name": s}, nil
	})

// Chain is a zarr3 codec list: array -> array codecs, then at most one
// array -> bytes codec, then bytes -> bytes codecs.
var Chain = g.Array(g.OneOf(Zarr3Codecs)).Check("codec chain", checkChain)

func checkChain(v any) tsspec.Issues {
	var iss tsspec.Issues
	at, seen := ArrayToArray, ""
	for i, e := range v.([]any) {
		m, ok := e.(*g.Model)
		if !ok {
			continue
		}
		s, _ := StageOf(m.Tag())
		ptr := fmt.Sprintf("/%d", i)
		switch {
		case s == ArrayToBytes && seen != "":
			iss = append(iss, g.Inconsistent(ptr, fmt.Sprintf("only one %s codec is allowed, %q already given", s, seen), m.Tag()))
		case s < at:
			iss = append(iss, g.Inconsistent(ptr, fmt.Sprintf("%s codec %q cannot follow a %s codec", s, m.Tag(), at), m.Tag()))
		}
		if s == ArrayToBytes && seen == "" {
			seen = m.Tag()
		}
		if s > at {
			at = s
		}
	}
	return iss
}

// Permutation accepts a permutation of 0..n-1.
var Permutation = g.Array(g.Int().NonNegative()).Check("permutation", func(v any) tsspec.Issues {
	arr := v.([]any)
	seen := make([]bool, len(arr))
	for _, e := range arr {
		i := e.(int64)
		if i >= int64(len(arr)) || seen[i] {
			return tsspec.Issues{g.Violation(tsspec.CodeInvalidFormat, fmt.Sprintf("permutation of [0, %d)", len(arr)), v)}
		}
		seen[i] = true
	}
	return nil
})

func configured(name string, cfg *g.Schema, required bool) *g.Schema {
	b := g.Object(name).Field("configuration", g.Nested(cfg))
	if required {
		return b.Required().MustBuild()
	}
	return b.MustBuild()
}

var (
	BytesCodec = Zarr3Codecs.Register("bytes", configured("bytes", g.Object("bytes.configuration").
		Field("endian", g.Enum("little", "big")).
		MustBuild(), false))

	TransposeCodec = Zarr3Codecs.Register("transpose", configured("transpose", g.Object("transpose.configuration").
		Field("order", g.Union(Permutation, g.Enum("C", "F"))).Required().
		MustBuild(), true))

	GzipCodec = Zarr3Codecs.Register("gzip", configured("gzip", g.Object("gzip.configuration").
		Field("level", g.Int().Range(0, 9)).Default(6).
		MustBuild(), false))

	BloscCodec = Zarr3Codecs.Register("blosc", configured("blosc", g.Object("blosc.configuration").
		Field("cname", g.Enum(BloscCnames...)).Default("lz4").
		Field("clevel", g.Int().Range(0, 9)).Default(5).
		Field("shuffle", g.Enum("noshuffle", "shuffle", "bitshuffle")).
		Field("typesize", g.Int().Positive()).
		Field("blocksize", g.Int().NonNegative()).Default(0).
		MustBuild(), false))

	ZstdCodec = Zarr3Codecs.Register("zstd", configured("zstd", g.Object("zstd.configuration").
		Field("level", g.Int().Range(-131072, 22)).Default(0).
		Field("checksum", g.Bool()).Default(false).
		MustBuild(), false))

	CRC32CCodec = Zarr3Codecs.Register("crc32c", configured("crc32c", g.Object("crc32c.configuration").MustBuild(), false))

	ShardingIndexedCodec = Zarr3Codecs.Register("sharding_indexed", configured("sharding_indexed", g.Object("sharding_indexed.configuration").
		Field("chunk_shape", g.Array(g.Int().Positive()).NonEmpty()).Required().
		Field("codecs", Chain).Required().
		Field("index_codecs", Chain).
		Field("index_location", g.Enum("start", "end")).Default("end").
		MustBuild(), true))
)

// ChunkGrids is the zarr3 "chunk_grid" member.
var ChunkGrids = g.NewCategory("zarr3.chunk_grid", "name").
	Describe("zarr v3 chunk grid")

var RegularChunkGrid = ChunkGrids.Register("regular", configured("regular", g.Object("regular.configuration").
	Field("chunk_shape", g.Array(g.Int().Positive())).Required().
	MustBuild(), true))

// ChunkKeyEncodings is the zarr3 "chunk_key_encoding" member.
var ChunkKeyEncodings = g.NewCategory("zarr3.chunk_key_encoding", "name").
	Describe("zarr v3 chunk key encoding").
	Shorthand("encoding name", func(s string) (map[string]any, error) {
		return map[string]any{"name": s}, nil
	})

var (
	DefaultChunkKeyEncoding = ChunkKeyEncodings.Register("default", configured("default", g.Object("default.configuration").
		Field("separator", g.Enum("/", ".")).Default("/").
		MustBuild(), false))

	V2ChunkKeyEncoding = ChunkKeyEncodings.Register("v2", configured("v2", g.Object("v2.configuration").
		Field("separator", g.Enum("/", ".")).Default(".").
		MustBuild(), false))
)
