package spec

import (
	"context"
	"fmt"
	"sort"

	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
)

var gridArrays = []string{"shape", "shape_soft_constraint", "aspect_ratio", "aspect_ratio_soft_constraint"}

// chunkSize is a per-dimension chunk size: 0 or null for no constraint, -1
// for the full extent of the domain.
var chunkSize = g.Int().Min(-1).Nullable()

// ChunkLayoutGridObject constrains one chunk grid (write, read, codec or both).
var ChunkLayoutGridObject = g.Object("chunk_layout_grid").
	Field("shape", g.Array(chunkSize)).
	Field("shape_soft_constraint", g.Array(chunkSize)).
	Field("aspect_ratio", g.Array(g.Number().NonNegative().Nullable())).
	Field("aspect_ratio_soft_constraint", g.Array(g.Number().NonNegative().Nullable())).
	Field("elements", g.Int().Positive().Nullable()).
	Field("elements_soft_constraint", g.Int().Positive().Nullable()).
	Refine("consistent rank", g.SameLength(gridArrays...)).
	MustBuild()

var layoutArrays = []string{"grid_origin", "grid_origin_soft_constraint", "inner_order", "inner_order_soft_constraint"}

var layoutGrids = []string{"write_chunk", "read_chunk", "codec_chunk", "chunk"}

// ChunkLayoutObject constrains the chunking of an array.
var ChunkLayoutObject = g.Object("chunk_layout").
	Field("rank", RankField).
	Field("grid_origin", g.Array(g.Int().Nullable())).
	Field("grid_origin_soft_constraint", g.Array(g.Int().Nullable())).
	Field("inner_order", g.Array(g.Int().NonNegative())).
	Field("inner_order_soft_constraint", g.Array(g.Int().NonNegative())).
	Field("write_chunk", g.Nested(ChunkLayoutGridObject)).
	Field("read_chunk", g.Nested(ChunkLayoutGridObject)).
	Field("codec_chunk", g.Nested(ChunkLayoutGridObject)).
	Field("chunk", g.Nested(ChunkLayoutGridObject)).
	Refine("consistent rank", g.ConsistentLength("rank", layoutArrays...)).
	Refine("grids match rank", gridsMatchRank).
	Refine("inner order is a permutation", innerOrderPermutation).
	MustBuild()

// LayoutRank returns the rank a chunk layout model implies.
func LayoutRank(m *g.Model) (int, bool) {
	if r, ok := EffectiveRank(m, "rank", layoutArrays...); ok {
		return r, true
	}
	for _, name := range layoutGrids {
		if r, ok := EffectiveRank(m.Sub(name), "", gridArrays...); ok {
			return r, true
		}
	}
	return 0, false
}

func gridsMatchRank(_ context.Context, m *g.Model) tsspec.Issues {
	rank, ok := EffectiveRank(m, "rank", layoutArrays...)
	if !ok {
		return nil
	}
	var iss tsspec.Issues
	for _, name := range layoutGrids {
		grid := m.Sub(name)
		if grid == nil {
			continue
		}
		for _, a := range gridArrays {
			if l := grid.Len(a); l >= 0 && l != rank {
				iss = append(iss, g.LengthMismatch("/"+name+"/"+a, rank, "rank", l))
			}
		}
	}
	return iss
}

// innerOrderPermutation requires inner_order (and its soft form) to be a
// permutation of 0..n-1. Length against rank is checked separately.
func innerOrderPermutation(_ context.Context, m *g.Model) tsspec.Issues {
	var iss tsspec.Issues
	for _, name := range []string{"inner_order", "inner_order_soft_constraint"} {
		order, ok := m.Ints(name)
		if !ok {
			continue
		}
		sorted := append([]int64(nil), order...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		for i, v := range sorted {
			if v != int64(i) {
				iss = append(iss, g.Inconsistent("/"+name, fmt.Sprintf("%s must be a permutation of [0, %d)", name, len(order)), order))
				break
			}
		}
	}
	return iss
}
