package driver

import (
	"github.com/reoring/tsspec/codec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/kvstore"
)

// Summary is a flat description of a resolved driver spec.
type Summary struct {
	Driver      string  `json:"driver" yaml:"driver"`
	Kind        string  `json:"kind" yaml:"kind"`
	DType       string  `json:"dtype,omitempty" yaml:"dtype,omitempty"`
	Shape       []int64 `json:"shape,omitempty" yaml:"shape,omitempty"`
	Rank        *int    `json:"rank,omitempty" yaml:"rank,omitempty"`
	KvStore     string  `json:"kvstore,omitempty" yaml:"kvstore,omitempty"`
	Path        string  `json:"path,omitempty" yaml:"path,omitempty"`
	Compression string  `json:"compression,omitempty" yaml:"compression,omitempty"`
}

// Summarize describes a model resolved against Category. Fields the driver spec
// leaves open are empty.
func Summarize(m *g.Model) Summary {
	s := Summary{Driver: m.Tag(), Kind: Kind(m.Tag()), DType: DataType(m)}
	s.Shape, _ = Shape(m)
	if r, ok := Rank(m); ok {
		s.Rank = &r
	}
	if kv := m.Sub("kvstore"); kv != nil {
		s.KvStore = kv.Tag()
		if u := kvstore.URL(kv); u != "" {
			s.KvStore = u
		}
		s.Path = EffectivePath(m)
	}
	s.Compression = Compression(m)
	return s
}

// Kind classifies a driver as "in-memory", "chunked" or "kvstore".
func Kind(driver string) string {
	caps, ok := capabilities[driver]
	switch {
	case !ok:
		return ""
	case caps.Chunked:
		return "chunked"
	case caps.KvStore:
		return "kvstore"
	}
	return "in-memory"
}

// DataType returns the data type a driver model states, looking at dtype,
// schema.dtype and then the format metadata.
func DataType(m *g.Model) string {
	if s := m.String("dtype"); s != "" {
		return s
	}
	if s, ok := pathString(m, "schema", "dtype"); ok {
		return s
	}
	switch m.Tag() {
	case "zarr":
		if dt, ok := ZarrDataType(m); ok {
			return string(dt)
		}
	case "zarr3":
		s, _ := pathString(m, "metadata", "data_type")
		return s
	case "n5":
		s, _ := pathString(m, "metadata", "dataType")
		return s
	case "neuroglancer_precomputed":
		s, _ := pathString(m, "multiscale_metadata", "data_type")
		return s
	}
	return ""
}

func pathString(m *g.Model, path ...string) (string, bool) {
	v, _ := m.Path(path...)
	s, ok := v.(string)
	return s, ok
}

// Shape returns the array shape a driver model states.
func Shape(m *g.Model) ([]int64, bool) {
	switch m.Tag() {
	case "array":
		dims, ok := ArrayDims(m)
		if !ok {
			return nil, false
		}
		out := make([]int64, len(dims))
		for i, d := range dims {
			out[i] = int64(d)
		}
		return out, true
	case "zarr", "zarr3":
		if s, ok := m.Sub("metadata").Ints("shape"); ok {
			return s, true
		}
	case "n5":
		if s, ok := m.Sub("metadata").Ints("dimensions"); ok {
			return s, true
		}
	case "neuroglancer_precomputed":
		if s, ok := m.Sub("scale_metadata").Ints("size"); ok {
			channels, found := m.Sub("multiscale_metadata").Int("num_channels")
			if !found {
				channels = 1
			}
			return append(s, channels), true
		}
	}
	return m.Sub("schema").Sub("domain").Ints("shape")
}

// Rank returns the rank a driver model states or implies.
func Rank(m *g.Model) (int, bool) {
	if src := baseRanks(m); len(src) > 0 {
		return src[0].rank, true
	}
	if m.Tag() == "neuroglancer_precomputed" {
		return NeuroglancerRank, true
	}
	if s, ok := Shape(m); ok {
		return len(s), true
	}
	return 0, false
}

// Compression summarizes the compression of a driver model, from its
// format metadata or its schema codec.
func Compression(m *g.Model) string {
	var c string
	switch m.Tag() {
	case "zarr":
		c = codec.DescribeCompressor(m.Sub("metadata").Sub("compressor"))
	case "zarr3":
		c = codec.DescribeChain(m.Sub("metadata").Subs("codecs"))
	case "n5":
		c = codec.DescribeCompressor(m.Sub("metadata").Sub("compression"))
	case "neuroglancer_precomputed":
		if enc := m.Sub("scale_metadata").String("encoding"); enc != "" && enc != "raw" {
			c = enc
		}
	}
	if c == "" {
		c = codec.Compression(m.Sub("schema").Sub("codec"))
	}
	return c
}
