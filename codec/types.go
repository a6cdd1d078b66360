package codec

import (
	g "github.com/reoring/tsspec/dsl"
)

// ZarrBlosc is the zarr v2 blosc compressor.
type ZarrBlosc struct {
	Cname     string `json:"cname,omitempty"`
	Clevel    *int   `json:"clevel,omitempty"`
	Shuffle   *int   `json:"shuffle,omitempty"`
	Blocksize *int   `json:"blocksize,omitempty"`
}

func (c ZarrBlosc) MarshalJSON() ([]byte, error) {
	type plain ZarrBlosc
	return g.MarshalTagged("id", "blosc", plain(c))
}

type ZarrZlib struct {
	Level *int `json:"level,omitempty"`
}

func (c ZarrZlib) MarshalJSON() ([]byte, error) {
	type plain ZarrZlib
	return g.MarshalTagged("id", "zlib", plain(c))
}

type ZarrBZ2 struct {
	Level *int `json:"level,omitempty"`
}

func (c ZarrBZ2) MarshalJSON() ([]byte, error) {
	type plain ZarrBZ2
	return g.MarshalTagged("id", "bz2", plain(c))
}

type ZarrZstd struct {
	Level *int `json:"level,omitempty"`
}

func (c ZarrZstd) MarshalJSON() ([]byte, error) {
	type plain ZarrZstd
	return g.MarshalTagged("id", "zstd", plain(c))
}

// N5Blosc is the n5 blosc compression.
type N5Blosc struct {
	Cname     string `json:"cname,omitempty"`
	Clevel    *int   `json:"clevel,omitempty"`
	Shuffle   *int   `json:"shuffle,omitempty"`
	Blocksize *int   `json:"blocksize,omitempty"`
}

func (c N5Blosc) MarshalJSON() ([]byte, error) {
	type plain N5Blosc
	return g.MarshalTagged("type", "blosc", plain(c))
}

type N5Bzip2 struct {
	BlockSize *int `json:"blockSize,omitempty"`
}

func (c N5Bzip2) MarshalJSON() ([]byte, error) {
	type plain N5Bzip2
	return g.MarshalTagged("type", "bzip2", plain(c))
}

type N5Gzip struct {
	Level   *int  `json:"level,omitempty"`
	UseZlib *bool `json:"useZlib,omitempty"`
}

func (c N5Gzip) MarshalJSON() ([]byte, error) {
	type plain N5Gzip
	return g.MarshalTagged("type", "gzip", plain(c))
}

type N5Raw struct{}

func (N5Raw) MarshalJSON() ([]byte, error) { return g.MarshalTagged("type", "raw", nil) }

type N5Xz struct {
	Preset *int `json:"preset,omitempty"`
}

func (c N5Xz) MarshalJSON() ([]byte, error) {
	type plain N5Xz
	return g.MarshalTagged("type", "xz", plain(c))
}

type N5Zstd struct {
	Level *int `json:"level,omitempty"`
}

func (c N5Zstd) MarshalJSON() ([]byte, error) {
	type plain N5Zstd
	return g.MarshalTagged("type", "zstd", plain(c))
}

// Bytes is the zarr3 "bytes" codec.
type Bytes struct {
	Endian string `json:"endian,omitempty"`
}

func (c Bytes) MarshalJSON() ([]byte, error) {
	type plain Bytes
	return g.MarshalNamed("bytes", plain(c))
}

// Transpose is the zarr3 "transpose" codec. Order is a permutation, or "C"
// or "F".
type Transpose struct {
	Order any `json:"order"`
}

func (c Transpose) MarshalJSON() ([]byte, error) {
	type plain Transpose
	return g.MarshalNamed("transpose", plain(c))
}

type Gzip struct {
	Level *int `json:"level,omitempty"`
}

func (c Gzip) MarshalJSON() ([]byte, error) {
	type plain Gzip
	return g.MarshalNamed("gzip", plain(c))
}

type Blosc struct {
	Cname     string `json:"cname,omitempty"`
	Clevel    *int   `json:"clevel,omitempty"`
	Shuffle   string `json:"shuffle,omitempty"`
	Typesize  *int   `json:"typesize,omitempty"`
	Blocksize *int   `json:"blocksize,omitempty"`
}

func (c Blosc) MarshalJSON() ([]byte, error) {
	type plain Blosc
	return g.MarshalNamed("blosc", plain(c))
}

type Zstd struct {
	Level    *int  `json:"level,omitempty"`
	Checksum *bool `json:"checksum,omitempty"`
}

func (c Zstd) MarshalJSON() ([]byte, error) {
	type plain Zstd
	return g.MarshalNamed("zstd", plain(c))
}

type CRC32C struct{}

func (CRC32C) MarshalJSON() ([]byte, error) { return g.MarshalNamed("crc32c", nil) }

// ShardingIndexed is the zarr3 sharding codec; Codecs and IndexCodecs hold
// other zarr3 codec values.
type ShardingIndexed struct {
	ChunkShape    []int  `json:"chunk_shape"`
	Codecs        []any  `json:"codecs"`
	IndexCodecs   []any  `json:"index_codecs,omitempty"`
	IndexLocation string `json:"index_location,omitempty"`
}

func (c ShardingIndexed) MarshalJSON() ([]byte, error) {
	type plain ShardingIndexed
	return g.MarshalNamed("sharding_indexed", plain(c))
}

// Zarr is the schema codec of the zarr driver. Compressor is a zarr v2
// compressor value or nil.
type Zarr struct {
	Compressor any   `json:"compressor,omitempty"`
	Filters    []any `json:"filters,omitempty"`
}

func (c Zarr) MarshalJSON() ([]byte, error) {
	type plain Zarr
	return g.MarshalTagged("driver", "zarr", plain(c))
}

type Zarr3 struct {
	Codecs []any `json:"codecs,omitempty"`
}

func (c Zarr3) MarshalJSON() ([]byte, error) {
	type plain Zarr3
	return g.MarshalTagged("driver", "zarr3", plain(c))
}

type N5 struct {
	Compression any `json:"compression,omitempty"`
}

func (c N5) MarshalJSON() ([]byte, error) {
	type plain N5
	return g.MarshalTagged("driver", "n5", plain(c))
}

type NeuroglancerPrecomputed struct {
	Encoding          string `json:"encoding,omitempty"`
	JPEGQuality       *int   `json:"jpeg_quality,omitempty"`
	PNGLevel          *int   `json:"png_level,omitempty"`
	ShardDataEncoding string `json:"shard_data_encoding,omitempty"`
}

func (c NeuroglancerPrecomputed) MarshalJSON() ([]byte, error) {
	type plain NeuroglancerPrecomputed
	return g.MarshalTagged("driver", "neuroglancer_precomputed", plain(c))
}

// RegularGrid is the zarr3 "regular" chunk grid.
type RegularGrid struct {
	ChunkShape []int64 `json:"chunk_shape"`
}

func (c RegularGrid) MarshalJSON() ([]byte, error) {
	type plain RegularGrid
	return g.MarshalNamed("regular", plain(c))
}

// KeyEncoding is a zarr3 chunk key encoding: Name is "default" or "v2".
type KeyEncoding struct {
	Name      string `json:"-"`
	Separator string `json:"separator,omitempty"`
}

func (c KeyEncoding) MarshalJSON() ([]byte, error) {
	type plain KeyEncoding
	return g.MarshalNamed(c.Name, plain(c))
}
