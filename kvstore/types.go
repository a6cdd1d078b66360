package kvstore

import (
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/spec"
)

// File is a typed "file" kvstore. Resource fields take a reference string
// or an inline value.
type File struct {
	Path              string        `json:"path"`
	Context           *spec.Context `json:"context,omitempty"`
	FileIOConcurrency any           `json:"file_io_concurrency,omitempty"`
	FileIOSync        any           `json:"file_io_sync,omitempty"`
	FileIOMode        any           `json:"file_io_mode,omitempty"`
	FileIOLocking     any           `json:"file_io_locking,omitempty"`
}

func (s File) MarshalJSON() ([]byte, error) {
	type plain File
	return g.MarshalTagged("driver", "file", plain(s))
}

// Memory is a typed "memory" kvstore.
type Memory struct {
	Path                string        `json:"path,omitempty"`
	Context             *spec.Context `json:"context,omitempty"`
	MemoryKeyValueStore any           `json:"memory_key_value_store,omitempty"`
	Atomic              *bool         `json:"atomic,omitempty"`
}

func (s Memory) MarshalJSON() ([]byte, error) {
	type plain Memory
	return g.MarshalTagged("driver", "memory", plain(s))
}

// S3 is a typed "s3" kvstore.
type S3 struct {
	Bucket               string        `json:"bucket"`
	Path                 string        `json:"path,omitempty"`
	Context              *spec.Context `json:"context,omitempty"`
	RequesterPays        *bool         `json:"requester_pays,omitempty"`
	AWSRegion            string        `json:"aws_region,omitempty"`
	Endpoint             string        `json:"endpoint,omitempty"`
	HostHeader           string        `json:"host_header,omitempty"`
	UseConditionalWrite  *bool         `json:"use_conditional_write,omitempty"`
	AWSCredentials       any           `json:"aws_credentials,omitempty"`
	S3RequestConcurrency any           `json:"s3_request_concurrency,omitempty"`
	S3RequestRetries     any           `json:"s3_request_retries,omitempty"`
	S3RateLimiter        any           `json:"experimental_s3_rate_limiter,omitempty"`
	DataCopyConcurrency  any           `json:"data_copy_concurrency,omitempty"`
}

func (s S3) MarshalJSON() ([]byte, error) {
	type plain S3
	return g.MarshalTagged("driver", "s3", plain(s))
}
