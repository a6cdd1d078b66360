package driver

import (
	"context"
	"fmt"

	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/dtype"
)

// NeuroglancerRank is the fixed rank of neuroglancer_precomputed volumes:
// x, y, z and channel.
const NeuroglancerRank = 4

func vec3(c *g.Constraint) *g.Constraint { return g.Array(c).Len(3) }

// ShardingSpec is the neuroglancer_uint64_sharded_v1 sharding member.
var ShardingSpec = g.Object("neuroglancer sharding").
	Field("@type", g.Literal("neuroglancer_uint64_sharded_v1")).Required().
	Field("preshift_bits", g.Int().Range(0, 64)).
	Field("hash", g.Enum("identity", "murmurhash3_x86_128")).
	Field("minishard_bits", g.Int().Range(0, 64)).
	Field("shard_bits", g.Int().Range(0, 64)).
	Field("minishard_index_encoding", g.Enum("raw", "gzip")).Default("raw").
	Field("data_encoding", g.Enum("raw", "gzip")).Default("raw").
	MustBuild()

var MultiscaleMetadata = g.Object("multiscale metadata").
	Field("type", g.Enum("image", "segmentation")).
	Field("data_type", dtype.Neuroglancer.Constraint()).
	Field("num_channels", g.Int().Positive()).
	MustBuild()

var ScaleMetadata = g.Object("scale metadata").
	Field("key", g.String()).
	Field("size", vec3(g.Int().NonNegative())).
	Field("chunk_size", vec3(g.Int().Positive())).
	Field("resolution", vec3(g.Number().ExclusiveMin(0))).
	Field("voxel_offset", vec3(g.Int())).
	Field("encoding", g.Enum("raw", "jpeg", "png", "compressed_segmentation")).
	Field("jpeg_quality", g.Int().Range(0, 100)).
	Field("png_level", g.Int().Range(0, 9)).
	Field("compressed_segmentation_block_size", vec3(g.Int().Positive())).
	Field("sharding", g.Nested(ShardingSpec).Nullable()).
	Refine("encoding options", encodingOptions).
	MustBuild()

// NeuroglancerPrecomputed is the neuroglancer_precomputed driver.
var NeuroglancerPrecomputed = register(Capabilities{
	Driver:         "neuroglancer_precomputed",
	Description:    "Neuroglancer precomputed volume",
	DataTypes:      dtype.Neuroglancer.Strings(),
	KvStore:        true,
	Chunked:        true,
	Compression:    true,
	MetadataFormat: "info",
}, g.Object("neuroglancer_precomputed").Extend(Chunked).
	Without("metadata").
	Field("scale_index", g.Int().NonNegative()).
	Field("multiscale_metadata", g.Nested(MultiscaleMetadata)).
	Field("scale_metadata", g.Nested(ScaleMetadata)).
	Refine("rank agreement", neuroglancerRank).
	Refine("supported dtype", dtypeIn("neuroglancer_precomputed", dtype.Neuroglancer)).
	Refine("metadata dtype", metadataDType("/multiscale_metadata/data_type", func(m *g.Model) (dtype.DataType, bool) {
		s, _ := m.Path("multiscale_metadata", "data_type")
		dt, ok := s.(string)
		return dtype.DataType(dt), ok
	})).
	Refine("segmentation encoding", segmentationEncoding).
	MustBuild())

func neuroglancerRank(ctx context.Context, m *g.Model) tsspec.Issues {
	if iss := rankAgreement(nil)(ctx, m); len(iss) > 0 {
		return iss
	}
	src := baseRanks(m)
	if len(src) > 0 && src[0].rank != NeuroglancerRank {
		return tsspec.Issues{g.Inconsistent(src[0].path, fmt.Sprintf("neuroglancer_precomputed volumes have rank %d, got %d", NeuroglancerRank, src[0].rank), src[0].rank)}
	}
	return nil
}

// encodingOptions rejects options that belong to another encoding.
func encodingOptions(_ context.Context, m *g.Model) tsspec.Issues {
	enc := m.String("encoding")
	var iss tsspec.Issues
	for _, opt := range [][2]string{
		{"jpeg_quality", "jpeg"},
		{"png_level", "png"},
		{"compressed_segmentation_block_size", "compressed_segmentation"},
	} {
		if m.Has(opt[0]) && enc != opt[1] {
			iss = append(iss, g.Inconsistent("/"+opt[0], opt[0]+" requires encoding "+opt[1], enc))
		}
	}
	return iss
}

// segmentationEncoding restricts compressed_segmentation to uint32 and
// uint64 data.
func segmentationEncoding(_ context.Context, m *g.Model) tsspec.Issues {
	enc, _ := m.Path("scale_metadata", "encoding")
	if enc != "compressed_segmentation" {
		return nil
	}
	dt := m.String("dtype")
	if dt == "" {
		s, _ := m.Path("multiscale_metadata", "data_type")
		dt, _ = s.(string)
	}
	if dt != "" && dt != string(dtype.Uint32) && dt != string(dtype.Uint64) {
		return tsspec.Issues{g.Inconsistent("/scale_metadata/encoding", "compressed_segmentation requires uint32 or uint64 data, got "+dt, enc)}
	}
	return nil
}
