package spec

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/codec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/dtype"
)

var unitPattern = regexp.MustCompile(`^\s*([0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?)?\s*([^\s0-9.][^\s]*)?\s*$`)

// ParseUnit splits a unit string such as "4nm" or "1.5 s" into its
// multiplier and base unit. An empty string is the dimensionless unit 1.
func ParseUnit(s string) (float64, string, error) {
	m := unitPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", fmt.Errorf("invalid unit %q", s)
	}
	mult := 1.0
	if m[1] != "" {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid unit multiplier %q: %w", m[1], err)
		}
		mult = f
	}
	return mult, m[2], nil
}

// Unit is a dimension unit: a unit string, [multiplier, base_unit], or null.
var Unit = g.Union(
	g.String().Check("unit", func(v any) tsspec.Issues {
		if _, _, err := ParseUnit(v.(string)); err != nil {
			it := g.Violation(tsspec.CodeInvalidFormat, "unit such as \"4nm\"", v)
			it.Cause = err
			return tsspec.Issues{it}
		}
		return nil
	}),
	g.Tuple(g.Number(), g.String()),
).Nullable()

// SchemaObject constrains data type, domain, chunking, codec, fill value and units.
var SchemaObject = g.Object("schema").
	Field("rank", RankField).
	Field("dtype", dtype.Field).
	Field("domain", g.Nested(IndexDomainObject)).
	Field("chunk_layout", g.Nested(ChunkLayoutObject)).
	Field("codec", g.OneOf(codec.Codec)).
	Field("fill_value", g.Any()).
	Field("dimension_units", g.Array(Unit)).
	Refine("rank agreement", schemaRanks).
	MustBuild()

type rankSource struct {
	path string
	rank int
}

func schemaRankSources(m *g.Model) []rankSource {
	var out []rankSource
	if r, ok := m.Int("rank"); ok {
		out = append(out, rankSource{"/rank", int(r)})
	}
	if r, ok := DomainRank(m.Sub("domain")); ok {
		out = append(out, rankSource{"/domain", r})
	}
	if r, ok := LayoutRank(m.Sub("chunk_layout")); ok {
		out = append(out, rankSource{"/chunk_layout", r})
	}
	if l := m.Len("dimension_units"); l >= 0 {
		out = append(out, rankSource{"/dimension_units", l})
	}
	return out
}

// SchemaRank returns the rank a schema model implies.
func SchemaRank(m *g.Model) (int, bool) {
	if m == nil {
		return 0, false
	}
	if src := schemaRankSources(m); len(src) > 0 {
		return src[0].rank, true
	}
	return 0, false
}

func schemaRanks(_ context.Context, m *g.Model) tsspec.Issues {
	src := schemaRankSources(m)
	var iss tsspec.Issues
	for _, s := range src[min(1, len(src)):] {
		if s.rank != src[0].rank {
			iss = append(iss, RankMismatch(s.path, s.rank, src[0].path, src[0].rank))
		}
	}
	return iss
}

// RankMismatch reports that the value at pointer has rank got where the
// value at refPath has rank want.
func RankMismatch(pointer string, got int, refPath string, want int) tsspec.Issue {
	return g.Inconsistent(pointer, fmt.Sprintf("rank %d does not match rank %d of %s", got, want, tsspec.DottedPath(refPath)), got)
}
