package driver

import (
	json "github.com/goccy/go-json"

	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/spec"
)

// Common holds the typed members every driver accepts. It is embedded in
// the typed drivers below and marshaled as a member group of its own, so
// the embedding carries `json:"-"`.
type Common struct {
	Context   *spec.Context        `json:"context,omitempty"`
	DType     string               `json:"dtype,omitempty"`
	Rank      *int                 `json:"rank,omitempty"`
	Transform *spec.IndexTransform `json:"transform,omitempty"`
	Schema    *spec.Schema         `json:"schema,omitempty"`
}

// Store holds the typed members of the chunked drivers. KvStore takes a
// typed kvstore such as kvstore.File, or a URL string.
type Store struct {
	Common `json:"-"`

	KvStore               any    `json:"kvstore"`
	Path                  string `json:"path,omitempty"`
	Open                  *bool  `json:"open,omitempty"`
	Create                *bool  `json:"create,omitempty"`
	DeleteExisting        *bool  `json:"delete_existing,omitempty"`
	AssumeMetadata        *bool  `json:"assume_metadata,omitempty"`
	AssumeCachedMetadata  *bool  `json:"assume_cached_metadata,omitempty"`
	CachePool             any    `json:"cache_pool,omitempty"`
	DataCopyConcurrency   any    `json:"data_copy_concurrency,omitempty"`
	RecheckCachedMetadata any    `json:"recheck_cached_metadata,omitempty"`
	RecheckCachedData     any    `json:"recheck_cached_data,omitempty"`
}

// ArraySpec is a typed "array" driver. Array holds a nested list or scalar.
type ArraySpec struct {
	Common `json:"-"`

	Array               any `json:"array"`
	DataCopyConcurrency any `json:"data_copy_concurrency,omitempty"`
}

func (d ArraySpec) MarshalJSON() ([]byte, error) {
	type plain ArraySpec
	return marshalDriver("array", d.Common, plain(d))
}

type ZarrArrayMetadata struct {
	ZarrFormat         *int    `json:"zarr_format,omitempty"`
	Shape              []int64 `json:"shape,omitempty"`
	Chunks             []int64 `json:"chunks,omitempty"`
	DType              any     `json:"dtype,omitempty"`
	Compressor         any     `json:"compressor,omitempty"`
	FillValue          any     `json:"fill_value,omitempty"`
	Order              string  `json:"order,omitempty"`
	DimensionSeparator string  `json:"dimension_separator,omitempty"`
}

// ZarrSpec is a typed "zarr" driver.
type ZarrSpec struct {
	Store `json:"-"`

	Field    string             `json:"field,omitempty"`
	Metadata *ZarrArrayMetadata `json:"metadata,omitempty"`
}

func (d ZarrSpec) MarshalJSON() ([]byte, error) {
	type plain ZarrSpec
	return marshalDriver("zarr", d.Common, d.Store, plain(d))
}

type Zarr3ArrayMetadata struct {
	ZarrFormat       *int      `json:"zarr_format,omitempty"`
	NodeType         string    `json:"node_type,omitempty"`
	Shape            []int64   `json:"shape,omitempty"`
	DataType         string    `json:"data_type,omitempty"`
	ChunkGrid        any       `json:"chunk_grid,omitempty"`
	ChunkKeyEncoding any       `json:"chunk_key_encoding,omitempty"`
	FillValue        any       `json:"fill_value,omitempty"`
	Codecs           []any     `json:"codecs,omitempty"`
	DimensionNames   []*string `json:"dimension_names,omitempty"`
}

// Zarr3Spec is a typed "zarr3" driver.
type Zarr3Spec struct {
	Store `json:"-"`

	Metadata *Zarr3ArrayMetadata `json:"metadata,omitempty"`
}

func (d Zarr3Spec) MarshalJSON() ([]byte, error) {
	type plain Zarr3Spec
	return marshalDriver("zarr3", d.Common, d.Store, plain(d))
}

type N5DatasetMetadata struct {
	Dimensions  []int64   `json:"dimensions,omitempty"`
	BlockSize   []int64   `json:"blockSize,omitempty"`
	DataType    string    `json:"dataType,omitempty"`
	Compression any       `json:"compression,omitempty"`
	Axes        []string  `json:"axes,omitempty"`
	Units       []string  `json:"units,omitempty"`
	Resolution  []float64 `json:"resolution,omitempty"`
}

// N5Spec is a typed "n5" driver.
type N5Spec struct {
	Store `json:"-"`

	Metadata *N5DatasetMetadata `json:"metadata,omitempty"`
}

func (d N5Spec) MarshalJSON() ([]byte, error) {
	type plain N5Spec
	return marshalDriver("n5", d.Common, d.Store, plain(d))
}

type NeuroglancerMultiscale struct {
	Type        string `json:"type,omitempty"`
	DataType    string `json:"data_type,omitempty"`
	NumChannels *int   `json:"num_channels,omitempty"`
}

type NeuroglancerScale struct {
	Key         string    `json:"key,omitempty"`
	Size        []int64   `json:"size,omitempty"`
	ChunkSize   []int64   `json:"chunk_size,omitempty"`
	Resolution  []float64 `json:"resolution,omitempty"`
	VoxelOffset []int64   `json:"voxel_offset,omitempty"`
	Encoding    string    `json:"encoding,omitempty"`
	JPEGQuality *int      `json:"jpeg_quality,omitempty"`
	PNGLevel    *int      `json:"png_level,omitempty"`
	Sharding    any       `json:"sharding,omitempty"`
}

// NeuroglancerSpec is a typed "neuroglancer_precomputed" driver.
type NeuroglancerSpec struct {
	Store `json:"-"`

	ScaleIndex         *int                    `json:"scale_index,omitempty"`
	MultiscaleMetadata *NeuroglancerMultiscale `json:"multiscale_metadata,omitempty"`
	ScaleMetadata      *NeuroglancerScale      `json:"scale_metadata,omitempty"`
}

func (d NeuroglancerSpec) MarshalJSON() ([]byte, error) {
	type plain NeuroglancerSpec
	return marshalDriver("neuroglancer_precomputed", d.Common, d.Store, plain(d))
}

// TiffSpec is a typed "tiff" driver.
type TiffSpec struct {
	Common `json:"-"`

	KvStore             any  `json:"kvstore"`
	Page                *int `json:"page,omitempty"`
	CachePool           any  `json:"cache_pool,omitempty"`
	DataCopyConcurrency any  `json:"data_copy_concurrency,omitempty"`
}

func (d TiffSpec) MarshalJSON() ([]byte, error) {
	type plain TiffSpec
	return marshalDriver("tiff", d.Common, plain(d))
}

// AutoSpec is a typed "auto" driver. Extra carries members of the detected
// driver.
type AutoSpec struct {
	Common `json:"-"`

	KvStore any            `json:"kvstore"`
	Extra   map[string]any `json:"-"`
}

func (d AutoSpec) MarshalJSON() ([]byte, error) {
	type plain AutoSpec
	return marshalDriver("auto", d.Common, plain(d), d.Extra)
}

// marshalDriver encodes {"driver": tag} followed by the members of each
// group in order.
func marshalDriver(tag string, groups ...any) ([]byte, error) {
	body, err := g.MarshalJoined(groups...)
	if err != nil {
		return nil, err
	}
	return g.MarshalTagged("driver", tag, json.RawMessage(body))
}
