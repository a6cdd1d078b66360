// Package dtype lists TensorStore data types and the per-format subsets
// drivers accept.
package dtype

import (
	"regexp"
	"sort"

	g "github.com/reoring/tsspec/dsl"
)

// DataType is a TensorStore data type name such as "float32".
type DataType string

const (
	Bool              DataType = "bool"
	Char              DataType = "char"
	Byte              DataType = "byte"
	Int4              DataType = "int4"
	Int8              DataType = "int8"
	Uint8             DataType = "uint8"
	Int16             DataType = "int16"
	Uint16            DataType = "uint16"
	Int32             DataType = "int32"
	Uint32            DataType = "uint32"
	Int64             DataType = "int64"
	Uint64            DataType = "uint64"
	Float8E3M4        DataType = "float8_e3m4"
	Float8E4M3FN      DataType = "float8_e4m3fn"
	Float8E4M3FNUZ    DataType = "float8_e4m3fnuz"
	Float8E4M3B11FNUZ DataType = "float8_e4m3b11fnuz"
	Float8E5M2        DataType = "float8_e5m2"
	Float8E5M2FNUZ    DataType = "float8_e5m2fnuz"
	Float16           DataType = "float16"
	BFloat16          DataType = "bfloat16"
	Float32           DataType = "float32"
	Float64           DataType = "float64"
	Complex64         DataType = "complex64"
	Complex128        DataType = "complex128"
	String            DataType = "string"
	UString           DataType = "ustring"
	JSON              DataType = "json"
)

// Set is an ordered set of data types.
type Set []DataType

// Contains reports whether dt is in the set.
func (s Set) Contains(dt DataType) bool {
	for _, d := range s {
		if d == dt {
			return true
		}
	}
	return false
}

// Strings returns the names in set order.
func (s Set) Strings() []string {
	out := make([]string, len(s))
	for i, d := range s {
		out[i] = string(d)
	}
	return out
}

// Constraint accepts exactly the names in the set.
func (s Set) Constraint() *g.Constraint { return g.Enum(s.Strings()...) }

var (
	// All is every data type TensorStore knows.
	All = Set{Bool, Char, Byte, Int4, Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64,
		Float8E3M4, Float8E4M3FN, Float8E4M3FNUZ, Float8E4M3B11FNUZ, Float8E5M2, Float8E5M2FNUZ,
		Float16, BFloat16, Float32, Float64, Complex64, Complex128, String, UString, JSON}

	// N5 is the set the n5 driver supports.
	N5 = Set{Uint8, Uint16, Uint32, Uint64, Int8, Int16, Int32, Int64, Float32, Float64}

	// Zarr3 is the set of zarr v3 core data types.
	Zarr3 = Set{Bool, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64,
		Float16, BFloat16, Float32, Float64, Complex64, Complex128}

	// Neuroglancer is the set the neuroglancer_precomputed driver supports.
	Neuroglancer = Set{Uint8, Int8, Uint16, Int16, Uint32, Int32, Uint64, Float32}

	// Tiff is the set the tiff driver supports.
	Tiff = Set{Uint8}
)

// Numeric reports whether dt holds numbers (integers, floats or complex).
func Numeric(dt DataType) bool {
	switch dt {
	case Bool, Char, Byte, String, UString, JSON:
		return false
	}
	return All.Contains(dt)
}

// Integer reports whether dt is a signed or unsigned integer type.
func Integer(dt DataType) bool {
	switch dt {
	case Int4, Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64:
		return true
	}
	return false
}

// Field is the constraint for a "dtype" field.
var Field = All.Constraint().Describe("TensorStore data type")

var zarrTypestr = regexp.MustCompile(`^[<>|](b1|i1|u1|i2|u2|i4|u4|i8|u8|f2|f4|f8|c8|c16)$`)

// ZarrTypestrPattern is the pattern of zarr v2 simple typestrings ("<f4").
const ZarrTypestrPattern = `^([<>|](b1|i1|u1|i2|u2|i4|u4|i8|u8|f2|f4|f8|c8|c16)|bfloat16)$`

// IsZarrTypestr reports whether s is a zarr v2 simple typestring.
func IsZarrTypestr(s string) bool { return s == "bfloat16" || zarrTypestr.MatchString(s) }

var zarrTypestrs = map[string]DataType{
	"b1": Bool, "i1": Int8, "u1": Uint8, "i2": Int16, "u2": Uint16, "i4": Int32, "u4": Uint32,
	"i8": Int64, "u8": Uint64, "f2": Float16, "f4": Float32, "f8": Float64, "c8": Complex64, "c16": Complex128,
}

// FromZarrTypestr maps a zarr v2 simple typestring onto a data type.
func FromZarrTypestr(s string) (DataType, bool) {
	if s == "bfloat16" {
		return BFloat16, true
	}
	if !zarrTypestr.MatchString(s) {
		return "", false
	}
	dt, ok := zarrTypestrs[s[1:]]
	return dt, ok
}

// ZarrDType is the constraint for zarr v2 "dtype": a simple typestring or a
// structured list of [name, typestr] / [name, typestr, shape] entries.
var ZarrDType = g.Union(
	g.String().Pattern(ZarrTypestrPattern),
	g.Array(g.Union(
		g.Tuple(g.String().NonEmpty(), g.String().Pattern(ZarrTypestrPattern)),
		g.Tuple(g.String().NonEmpty(), g.String().Pattern(ZarrTypestrPattern), g.Array(g.Int().NonNegative())),
	)).NonEmpty(),
).Describe("zarr v2 typestring or structured dtype")

// Sorted returns the set's names sorted alphabetically.
func (s Set) Sorted() []string {
	out := s.Strings()
	sort.Strings(out)
	return out
}
