// Package driver declares the TensorStore driver specs: the in-memory array
// driver, the chunked formats (zarr, zarr3, n5, neuroglancer_precomputed)
// and the tiff and auto drivers. Every driver is a variant of Category.
package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/dtype"
	"github.com/reoring/tsspec/kvstore"
	"github.com/reoring/tsspec/spec"
)

// Category holds every driver, keyed by "driver".
var Category = g.NewCategory("driver", "driver").
	Describe("TensorStore spec")

// Base holds the members every driver accepts.
var Base = g.Object("driver").
	Field("context", g.Nested(spec.ContextObject)).
	Field("dtype", dtype.Field).
	Field("rank", spec.RankField).
	Field("transform", g.Nested(spec.IndexTransformObject)).
	Field("schema", g.Nested(spec.SchemaObject)).
	Refine("dtype agreement", dtypeAgreement).
	MustBuild()

// RecheckCached is the recheck_cached_* member: a bool, "open", or a
// staleness bound in seconds since the epoch.
var RecheckCached = g.Union(g.Bool(), g.Enum("open"), g.Number())

// Chunked holds the members of kvstore-backed chunked drivers.
var Chunked = g.Object("chunked").Extend(Base).
	Field("kvstore", g.OneOf(kvstore.Category)).Required().
	Field("path", g.String()).Describe("path within the kvstore").Default("").
	Field("open", g.Bool()).
	Field("create", g.Bool()).
	Field("delete_existing", g.Bool()).
	Field("assume_metadata", g.Bool()).
	Field("assume_cached_metadata", g.Bool()).
	Field("cache_pool", spec.CachePoolResource).
	Field("data_copy_concurrency", spec.ConcurrencyResource).
	Field("recheck_cached_metadata", RecheckCached).
	Field("recheck_cached_data", RecheckCached).
	Field("fill_missing_data_reads", g.Bool()).
	Field("store_data_equal_to_fill_value", g.Bool()).
	Field("metadata", g.Any()).
	Refine("open mode", openMode).
	MustBuild()

// Capabilities describes what a driver supports.
type Capabilities struct {
	Driver         string   `json:"driver"`
	Description    string   `json:"description"`
	DataTypes      []string `json:"data_types"`
	KvStore        bool     `json:"kvstore"`
	Chunked        bool     `json:"chunked"`
	Compression    bool     `json:"compression"`
	MetadataFormat string   `json:"metadata_format,omitempty"`
}

var capabilities = map[string]Capabilities{}

// register adds a variant and its capabilities. Variants are registered
// from package-level initializers only.
func register(caps Capabilities, o *g.Schema) *g.Schema {
	capabilities[caps.Driver] = caps
	return Category.Register(caps.Driver, o)
}

// CapabilitiesOf returns the capabilities of a registered driver.
func CapabilitiesOf(driver string) (Capabilities, bool) {
	c, ok := capabilities[driver]
	if ok {
		c.DataTypes = append([]string(nil), c.DataTypes...)
	}
	return c, ok
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	out := make([]string, 0, len(capabilities))
	for name := range capabilities {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve validates a raw driver spec.
func Resolve(ctx context.Context, v any) (*g.Model, error) { return Category.Resolve(ctx, v) }

// Build marshals a typed driver spec and resolves it.
func Build(ctx context.Context, v any) (*g.Model, error) { return g.Build(ctx, Category, v) }

func openMode(_ context.Context, m *g.Model) tsspec.Issues {
	if del, _ := m.Bool("delete_existing"); del {
		if create, _ := m.Bool("create"); !create {
			return tsspec.Issues{g.Inconsistent("/delete_existing", "delete_existing requires create", true)}
		}
		if open, _ := m.Bool("open"); open {
			return tsspec.Issues{g.Inconsistent("/open", "open cannot be combined with delete_existing", true)}
		}
	}
	if assume, _ := m.Bool("assume_metadata"); assume {
		if open, _ := m.Bool("open"); open {
			return tsspec.Issues{g.Inconsistent("/assume_metadata", "assume_metadata cannot be combined with open", true)}
		}
	}
	return nil
}

// rankSource is one place a spec states its rank.
type rankSource struct {
	path string
	rank int
}

// baseRanks lists the ranks implied by rank, schema and transform.
func baseRanks(m *g.Model) []rankSource {
	var out []rankSource
	if r, ok := m.Int("rank"); ok {
		out = append(out, rankSource{"/rank", int(r)})
	}
	if r, ok := spec.SchemaRank(m.Sub("schema")); ok {
		out = append(out, rankSource{"/schema", r})
	}
	if r, ok := spec.InputRank(m.Sub("transform")); ok {
		out = append(out, rankSource{"/transform", r})
	}
	return out
}

// rankAgreement requires every rank source, including those listed by
// extra, to agree with the first.
func rankAgreement(extra func(m *g.Model) []rankSource) g.RefineFunc {
	return func(_ context.Context, m *g.Model) tsspec.Issues {
		src := baseRanks(m)
		if extra != nil {
			src = append(src, extra(m)...)
		}
		var iss tsspec.Issues
		for _, s := range src[min(1, len(src)):] {
			if s.rank != src[0].rank {
				iss = append(iss, spec.RankMismatch(s.path, s.rank, src[0].path, src[0].rank))
			}
		}
		return iss
	}
}

func lengthSource(m *g.Model, path ...string) []rankSource {
	v, ok := m.Path(path...)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	return []rankSource{{"/" + strings.Join(path, "/"), len(arr)}}
}

// dtypeAgreement requires dtype and schema.dtype to match when both are set.
func dtypeAgreement(_ context.Context, m *g.Model) tsspec.Issues {
	outer := m.String("dtype")
	inner, _ := m.Path("schema", "dtype")
	if s, ok := inner.(string); ok && outer != "" && s != outer {
		return tsspec.Issues{g.Inconsistent("/schema/dtype", fmt.Sprintf("schema dtype %q does not match dtype %q", s, outer), s)}
	}
	return nil
}

// dtypeIn restricts dtype and schema.dtype to the data types a driver
// supports.
func dtypeIn(driver string, set dtype.Set) g.RefineFunc {
	return func(_ context.Context, m *g.Model) tsspec.Issues {
		var iss tsspec.Issues
		for _, p := range [][]string{{"dtype"}, {"schema", "dtype"}} {
			v, _ := m.Path(p...)
			s, ok := v.(string)
			if !ok || set.Contains(dtype.DataType(s)) {
				continue
			}
			it := g.Violation(tsspec.CodeInvalidEnum, "["+strings.Join(set.Strings(), " ")+"]", s)
			it.Path = "/" + strings.Join(p, "/")
			it.Hint = fmt.Sprintf("the %s driver does not support %s", driver, s)
			iss = append(iss, it)
		}
		return iss
	}
}

// metadataDType requires a data type stated in the metadata to match dtype
// (or schema.dtype).
func metadataDType(pointer string, fromMetadata func(m *g.Model) (dtype.DataType, bool)) g.RefineFunc {
	return func(_ context.Context, m *g.Model) tsspec.Issues {
		got, ok := fromMetadata(m)
		if !ok {
			return nil
		}
		want, src := m.String("dtype"), "dtype"
		if want == "" {
			s, _ := m.Path("schema", "dtype")
			want, _ = s.(string)
			src = "schema.dtype"
		}
		if want == "" || dtype.DataType(want) == got {
			return nil
		}
		return tsspec.Issues{g.Inconsistent(pointer, fmt.Sprintf("metadata data type %s does not match %s %s", got, src, want), string(got))}
	}
}

// EffectivePath joins the kvstore path and the driver path.
func EffectivePath(m *g.Model) string {
	base := m.Sub("kvstore").String("path")
	p := m.String("path")
	switch {
	case base == "":
		return p
	case p == "":
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}
