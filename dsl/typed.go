package dsl

import (
	"bytes"
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	tsspec "github.com/reoring/tsspec"
)

// MarshalTagged marshals v as a JSON object whose first member is
// key:tag. v must marshal to a JSON object and must not itself implement
// json.Marshaler (pass an alias type to avoid recursion).
func MarshalTagged(key, tag string, v any) ([]byte, error) {
	return MarshalJoined(map[string]string{key: tag}, v)
}

// MarshalMerged marshals v, which must encode as a JSON object, followed by
// the members of extra in key order. extra must not repeat members of v.
func MarshalMerged(v any, extra map[string]any) ([]byte, error) {
	return MarshalJoined(v, extra)
}

// MarshalJoined marshals each group, which must encode as a JSON object or
// null, and joins their members in order into one object. Groups must not
// repeat members.
func MarshalJoined(groups ...any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, v := range groups {
		b, err := json.MarshalNoEscape(v)
		if err != nil {
			return nil, err
		}
		b = bytes.TrimSpace(b)
		if bytes.Equal(b, []byte("null")) {
			continue
		}
		if len(b) < 2 || b[0] != '{' {
			return nil, fmt.Errorf("%T does not encode as a JSON object", v)
		}
		members := bytes.TrimSpace(b[1 : len(b)-1])
		if len(members) == 0 {
			continue
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(members)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalNamed marshals v in the {"name": tag, "configuration": {...}} form
// used by zarr v3 extension points. An empty configuration is omitted.
func MarshalNamed(tag string, v any) ([]byte, error) {
	var conf json.RawMessage
	if v != nil {
		b, err := json.MarshalNoEscape(v)
		if err != nil {
			return nil, err
		}
		b = bytes.TrimSpace(b)
		if !bytes.Equal(b, []byte("{}")) && !bytes.Equal(b, []byte("null")) {
			conf = b
		}
	}
	return json.MarshalNoEscape(struct {
		Name          string          `json:"name"`
		Configuration json.RawMessage `json:"configuration,omitempty"`
	}{Name: tag, Configuration: conf})
}

// Build marshals a typed value and resolves it against cat, producing the
// same model the raw path produces.
func Build(ctx context.Context, cat *Category, v any) (*Model, error) {
	raw, err := toRaw(ctx, v)
	if err != nil {
		return nil, err
	}
	return cat.Resolve(ctx, raw)
}

// BuildObject is Build for a plain object.
func BuildObject(ctx context.Context, o *Schema, v any) (*Model, error) {
	raw, err := toRaw(ctx, v)
	if err != nil {
		return nil, err
	}
	return o.Resolve(ctx, raw)
}

func toRaw(ctx context.Context, v any) (any, error) {
	b, err := json.MarshalNoEscape(v)
	if err != nil {
		return nil, tsspec.ToIssues(err)
	}
	return tsspec.DecodeJSON(ctx, b)
}

// Into decodes a model into a typed value through its plain mapping.
func Into(m *Model, dst any) error {
	b, err := json.Marshal(m.ToPlainMapping())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
