package driver

import (
	"context"
	"strconv"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/codec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/dtype"
)

// Zarr3Metadata is the zarr.json document of a zarr v3 array.
var Zarr3Metadata = g.Object("zarr3 metadata").
	Field("zarr_format", g.Literal(3)).
	Field("node_type", g.Literal("array")).
	Field("shape", g.Array(g.Int().NonNegative())).
	Field("data_type", dtype.Zarr3.Constraint()).
	Field("chunk_grid", g.OneOf(codec.ChunkGrids)).
	Field("chunk_key_encoding", g.OneOf(codec.ChunkKeyEncodings)).
	Field("fill_value", g.Any()).
	Field("codecs", codec.Chain).
	Field("attributes", g.Nested(g.Object("attributes").UnknownPassthrough().MustBuild())).
	Field("dimension_names", g.Array(g.String().Nullable())).
	Field("storage_transformers", g.Array(g.Any())).
	UnknownPassthrough().
	Refine("dimensions match shape", zarr3Dimensions).
	MustBuild()

// Zarr3 is the zarr v3 driver.
var Zarr3 = register(Capabilities{
	Driver:         "zarr3",
	Description:    "Zarr v3 chunked array with codec pipelines and sharding",
	DataTypes:      dtype.Zarr3.Strings(),
	KvStore:        true,
	Chunked:        true,
	Compression:    true,
	MetadataFormat: "zarr.json",
}, g.Object("zarr3").Extend(Chunked).
	Field("metadata", g.Nested(Zarr3Metadata)).
	Refine("rank agreement", rankAgreement(func(m *g.Model) []rankSource {
		return lengthSource(m, "metadata", "shape")
	})).
	Refine("supported dtype", dtypeIn("zarr3", dtype.Zarr3)).
	Refine("metadata dtype", metadataDType("/metadata/data_type", func(m *g.Model) (dtype.DataType, bool) {
		s, _ := m.Path("metadata", "data_type")
		dt, ok := s.(string)
		return dtype.DataType(dt), ok
	})).
	MustBuild())

// zarr3Dimensions checks chunk_grid, dimension_names and sharding chunk
// shapes against the length of shape.
func zarr3Dimensions(_ context.Context, m *g.Model) tsspec.Issues {
	rank := m.Len("shape")
	if rank < 0 {
		return nil
	}
	var iss tsspec.Issues
	check := func(ptr string, l int) {
		if l >= 0 && l != rank {
			iss = append(iss, g.LengthMismatch(ptr, rank, "shape", l))
		}
	}
	check("/chunk_grid/configuration/chunk_shape", m.Sub("chunk_grid").Sub("configuration").Len("chunk_shape"))
	check("/dimension_names", m.Len("dimension_names"))
	for i, c := range m.Subs("codecs") {
		if c.Tag() == "sharding_indexed" {
			check("/codecs/"+strconv.Itoa(i)+"/configuration/chunk_shape", c.Sub("configuration").Len("chunk_shape"))
		}
	}
	return iss
}
