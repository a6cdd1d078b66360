package driver

import (
	"context"
	"fmt"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/codec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/dtype"
)

// ZarrMetadata is the .zarray document of a zarr v2 array.
var ZarrMetadata = g.Object("zarr metadata").
	Field("zarr_format", g.Literal(2)).
	Field("shape", g.Array(g.Int().NonNegative())).
	Field("chunks", g.Array(g.Int().Positive())).
	Field("dtype", dtype.ZarrDType).
	Field("compressor", codec.Compressor).
	Field("fill_value", g.Any()).
	Field("order", g.Enum("C", "F")).
	Field("filters", codec.Filters).
	Field("dimension_separator", g.Enum(".", "/")).
	UnknownPassthrough().
	Refine("chunks match shape", g.SameLength("shape", "chunks")).
	MustBuild()

// Zarr is the zarr v2 driver.
var Zarr = register(Capabilities{
	Driver:         "zarr",
	Description:    "Zarr v2 chunked array",
	DataTypes:      dtype.Zarr3.Strings(),
	KvStore:        true,
	Chunked:        true,
	Compression:    true,
	MetadataFormat: ".zarray",
}, g.Object("zarr").Extend(Chunked).
	Field("field", g.String().Nullable()).Describe("member of a structured dtype").
	Field("metadata", g.Nested(ZarrMetadata)).
	Refine("rank agreement", rankAgreement(func(m *g.Model) []rankSource {
		return lengthSource(m, "metadata", "shape")
	})).
	Refine("field selection", zarrField).
	Refine("metadata dtype", metadataDType("/metadata/dtype", ZarrDataType)).
	MustBuild())

// structuredMember returns the typestring of the named member of a
// structured zarr dtype.
func structuredMember(members []any, name string) (string, bool) {
	for _, e := range members {
		entry, ok := e.([]any)
		if !ok || len(entry) < 2 || entry[0] != name {
			continue
		}
		ts, ok := entry[1].(string)
		return ts, ok
	}
	return "", false
}

func zarrField(_ context.Context, m *g.Model) tsspec.Issues {
	raw, ok := m.Path("metadata", "dtype")
	if !ok {
		return nil
	}
	field := m.String("field")
	members, structured := raw.([]any)
	switch {
	case field != "" && !structured:
		return tsspec.Issues{g.Inconsistent("/field", "field requires a structured metadata dtype", field)}
	case field != "":
		if _, found := structuredMember(members, field); !found {
			return tsspec.Issues{g.Inconsistent("/field", fmt.Sprintf("structured dtype has no member %q", field), field)}
		}
	case structured && len(members) > 1:
		return tsspec.Issues{g.Inconsistent("/field", "a structured dtype with several members requires field", nil)}
	}
	return nil
}

// ZarrDataType returns the data type a zarr model's metadata declares,
// following field into structured dtypes.
func ZarrDataType(m *g.Model) (dtype.DataType, bool) {
	raw, ok := m.Path("metadata", "dtype")
	if !ok {
		return "", false
	}
	ts, _ := raw.(string)
	if members, structured := raw.([]any); structured {
		name := m.String("field")
		if name == "" && len(members) == 1 {
			if entry, ok := members[0].([]any); ok {
				name, _ = entry[0].(string)
			}
		}
		ts, _ = structuredMember(members, name)
	}
	return dtype.FromZarrTypestr(ts)
}
