package driver

import (
	"github.com/reoring/tsspec/codec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/dtype"
)

// N5Metadata is the attributes.json document of an n5 dataset.
var N5Metadata = g.Object("n5 metadata").
	Field("dimensions", g.Array(g.Int().NonNegative())).
	Field("blockSize", g.Array(g.Int().Positive())).
	Field("dataType", dtype.N5.Constraint()).
	Field("compression", g.OneOf(codec.N5Compressions)).
	Field("axes", g.Array(g.String())).
	Field("units", g.Array(g.String())).
	Field("resolution", g.Array(g.Number())).
	UnknownPassthrough().
	Refine("lengths match dimensions", g.SameLength("dimensions", "blockSize", "axes", "units", "resolution")).
	MustBuild()

// N5 is the n5 driver.
var N5 = register(Capabilities{
	Driver:         "n5",
	Description:    "N5 chunked array",
	DataTypes:      dtype.N5.Strings(),
	KvStore:        true,
	Chunked:        true,
	Compression:    true,
	MetadataFormat: "attributes.json",
}, g.Object("n5").Extend(Chunked).
	Field("metadata", g.Nested(N5Metadata)).
	Refine("rank agreement", rankAgreement(func(m *g.Model) []rankSource {
		return lengthSource(m, "metadata", "dimensions")
	})).
	Refine("supported dtype", dtypeIn("n5", dtype.N5)).
	Refine("metadata dtype", metadataDType("/metadata/dataType", func(m *g.Model) (dtype.DataType, bool) {
		s, _ := m.Path("metadata", "dataType")
		dt, ok := s.(string)
		return dtype.DataType(dt), ok
	})).
	MustBuild())
