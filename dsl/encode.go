package dsl

type encodeConfig struct {
	includeDefaults bool
}

// EncodeOption configures Encode.
type EncodeOption func(*encodeConfig)

// IncludeDefaults emits every non-nil field, including defaults that were not
// present in the input.
func IncludeDefaults() EncodeOption {
	return func(c *encodeConfig) { c.includeDefaults = true }
}

// Encode converts a model into a raw mapping. Explicit fields are always
// emitted (explicit null included), defaulted fields are omitted unless
// IncludeDefaults is given, and passthrough extras are re-emitted.
func Encode(m *Model, opts ...EncodeOption) map[string]any {
	var cfg encodeConfig
	for _, o := range opts {
		o(&cfg)
	}
	return encodeModel(m, cfg)
}

func encodeModel(m *Model, cfg encodeConfig) map[string]any {
	entries := m.entries(cfg)
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		out[e.key] = encodeValue(e.value, cfg)
	}
	return out
}

func encodeValue(v any, cfg encodeConfig) any {
	switch x := v.(type) {
	case *Model:
		return encodeModel(x, cfg)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = encodeValue(e, cfg)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = encodeValue(e, cfg)
		}
		return out
	}
	return v
}
