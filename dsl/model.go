package dsl

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"
)

// Model is an immutable validated instance of a Schema. Every declared
// field holds its explicit value, its declared default, or nil.
type Model struct {
	object   *Schema
	category *Category
	tag      string
	values   map[string]any
	explicit map[string]bool
	extra    map[string]any
}

// Schema returns the variant the model was validated against.
func (m *Model) Schema() *Schema { return m.object }

// Category returns the category the model was resolved through, or nil.
func (m *Model) Category() *Category { return m.category }

// Tag returns the discriminator value, or "" for plain objects.
func (m *Model) Tag() string {
	if m == nil {
		return ""
	}
	return m.tag
}

// value reads a field; reads through a nil model see unset fields.
func (m *Model) value(name string) any {
	if m == nil {
		return nil
	}
	return m.values[name]
}

// Get returns a declared field's value. ok is false for undeclared names.
func (m *Model) Get(name string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if _, declared := m.object.index[name]; !declared {
		return nil, false
	}
	return cloneValue(m.values[name]), true
}

// Has reports whether a declared field holds a non-nil value.
func (m *Model) Has(name string) bool { return m.value(name) != nil }

// IsSet reports whether the field was present in the input.
func (m *Model) IsSet(name string) bool { return m != nil && m.explicit[name] }

func (m *Model) String(name string) string {
	s, _ := m.value(name).(string)
	return s
}

func (m *Model) Int(name string) (int64, bool) {
	i, ok := m.value(name).(int64)
	return i, ok
}

func (m *Model) Float(name string) (float64, bool) {
	switch v := m.value(name).(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (m *Model) Bool(name string) (bool, bool) {
	b, ok := m.value(name).(bool)
	return b, ok
}

// Ints returns an integer array field.
func (m *Model) Ints(name string) ([]int64, bool) {
	arr, ok := m.value(name).([]any)
	if !ok {
		return nil, false
	}
	out := make([]int64, len(arr))
	for i, e := range arr {
		n, ok := e.(int64)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// Strings returns a string array field.
func (m *Model) Strings(name string) ([]string, bool) {
	arr, ok := m.value(name).([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// Len returns the length of an array field, or -1 when it is not set.
func (m *Model) Len(name string) int {
	arr, ok := m.value(name).([]any)
	if !ok {
		return -1
	}
	return len(arr)
}

// Sub returns a nested model field, or nil.
func (m *Model) Sub(name string) *Model {
	s, _ := m.value(name).(*Model)
	return s
}

// Subs returns the models of an array-of-objects field.
func (m *Model) Subs(name string) []*Model {
	arr, _ := m.value(name).([]any)
	var out []*Model
	for _, e := range arr {
		if s, ok := e.(*Model); ok {
			out = append(out, s)
		}
	}
	return out
}

// Path walks nested models by field name.
func (m *Model) Path(names ...string) (any, bool) {
	cur := m
	for i, n := range names {
		if cur == nil {
			return nil, false
		}
		if i == len(names)-1 {
			if v, ok := cur.values[n]; ok && v != nil {
				return cloneValue(v), true
			}
			if v, ok := cur.extra[n]; ok {
				return cloneValue(v), true
			}
			return nil, false
		}
		cur = cur.Sub(n)
	}
	return nil, false
}

// Extra returns passthrough keys that the object does not declare.
func (m *Model) Extra() map[string]any {
	if m == nil || len(m.extra) == 0 {
		return nil
	}
	return cloneValue(m.extra).(map[string]any)
}

// Fields returns the declared field names in declaration order.
func (m *Model) Fields() []string { return m.object.fieldNames() }

// Equal reports whether two models carry the same variant, field values and
// extras. Explicit presence is not compared.
func (m *Model) Equal(o *Model) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.object != o.object || m.tag != o.tag {
		return false
	}
	for _, f := range m.object.fields {
		if !valuesEqual(m.values[f.name], o.values[f.name]) {
			return false
		}
	}
	if len(m.extra) != len(o.extra) {
		return false
	}
	for k, v := range m.extra {
		if !valuesEqual(v, o.extra[k]) {
			return false
		}
	}
	return true
}

// ToPlainMapping serializes the model to a raw mapping TensorStore accepts.
func (m *Model) ToPlainMapping() map[string]any {
	if m == nil {
		return nil
	}
	return Encode(m)
}

// MarshalJSON emits the discriminator first, then declared fields in
// declaration order, then extras sorted by key.
func (m *Model) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries(encodeConfig{}) {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.MarshalNoEscape(e.key)
		if err != nil {
			return nil, err
		}
		v, err := json.MarshalNoEscape(e.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type entry struct {
	key   string
	value any
}

// entries lists the serialized key/value pairs in emission order. Nested
// models stay *Model so MarshalJSON recurses with ordering intact.
func (m *Model) entries(cfg encodeConfig) []entry {
	out := make([]entry, 0, len(m.values)+len(m.extra)+1)
	if m.category != nil {
		out = append(out, entry{key: m.category.key, value: m.tag})
	}
	for _, f := range m.object.fields {
		v := m.values[f.name]
		// values that were not explicit can only be defaults
		switch {
		case m.explicit[f.name]:
		case v == nil, !cfg.includeDefaults:
			continue
		}
		out = append(out, entry{key: f.name, value: v})
	}
	keys := make([]string, 0, len(m.extra))
	for k := range m.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, entry{key: k, value: m.extra[k]})
	}
	return out
}
