package dsl

import (
	"context"
	"errors"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/i18n"
)

// RefineFunc is a cross-field rule run after every field check passed.
// Issue paths are relative to the object.
type RefineFunc func(ctx context.Context, m *Model) tsspec.Issues

type objRefine struct {
	name string
	fn   RefineFunc
}

// Field is one declared field of a Schema.
type Field struct {
	name       string
	c          *Constraint
	required   bool
	hasDefault bool
	def        any
	desc       string
}

func (f *Field) Name() string             { return f.name }
func (f *Field) Constraint() *Constraint  { return f.c }
func (f *Field) IsRequired() bool         { return f.required }
func (f *Field) Default() (any, bool)     { return cloneValue(f.def), f.hasDefault }
func (f *Field) Description() string      { return f.desc }
func (f *Field) acceptsNullAsUnset() bool { return !f.required && f.def == nil }

// Schema is a built, immutable object variant: declared fields in
// declaration order, an unknown-key policy and refinements.
type Schema struct {
	name    string
	desc    string
	fields  []*Field
	index   map[string]*Field
	unknown tsspec.UnknownPolicy
	refines []objRefine
}

func (o *Schema) Name() string                       { return o.name }
func (o *Schema) Description() string                { return o.desc }
func (o *Schema) UnknownPolicy() tsspec.UnknownPolicy { return o.unknown }

// Fields returns the declared fields in declaration order.
func (o *Schema) Fields() []*Field { return append([]*Field(nil), o.fields...) }

// Field returns a declared field by name.
func (o *Schema) Field(name string) (*Field, bool) {
	f, ok := o.index[name]
	return f, ok
}

func (o *Schema) fieldNames() []string {
	names := make([]string, len(o.fields))
	for i, f := range o.fields {
		names[i] = f.name
	}
	return names
}

// Resolve validates a raw mapping against the object and returns the model.
// A nil ctx is treated as context.Background.
func (o *Schema) Resolve(ctx context.Context, v any) (*Model, error) {
	m, iss := o.resolve(orBackground(ctx), v, "")
	if len(iss) > 0 {
		return nil, iss
	}
	return m, nil
}

// resolve visits every declared field in order, then unknown keys (sorted),
// then refinements. skip names the discriminator key of the enclosing
// category, which is not a declared field.
func (o *Schema) resolve(ctx context.Context, v any, skip string) (*Model, tsspec.Issues) {
	src, ok := asMap(v)
	if !ok {
		return nil, tsspec.Issues{typeIssue(o.expected(), v)}
	}
	failFast := tsspec.IsFailFast(ctx)
	m := &Model{object: o, values: make(map[string]any, len(o.fields)), explicit: map[string]bool{}}
	var iss tsspec.Issues
	for _, f := range o.fields {
		raw, present := src[f.name]
		switch {
		case present && raw == nil && f.acceptsNullAsUnset():
			m.values[f.name] = nil
			m.explicit[f.name] = true
		case present:
			out, fi := f.c.check(ctx, raw)
			if len(fi) > 0 {
				iss = append(iss, fi.Rebase(tsspec.JoinPointer("", f.name))...)
				if failFast {
					return nil, iss
				}
				continue
			}
			m.values[f.name] = out
			m.explicit[f.name] = true
		case f.required:
			iss = append(iss, requiredIssue(f))
			if failFast {
				return nil, iss
			}
		case f.hasDefault && f.def != nil:
			out, fi := f.c.check(ctx, f.def)
			if len(fi) > 0 {
				iss = append(iss, fi.Rebase(tsspec.JoinPointer("", f.name))...)
				continue
			}
			m.values[f.name] = out
		default:
			m.values[f.name] = nil
		}
	}
	for _, k := range sortedKeys(src) {
		if k == skip {
			continue
		}
		if _, declared := o.index[k]; declared {
			continue
		}
		switch o.unknown {
		case tsspec.UnknownPassthrough:
			n, ok := normalizeJSON(src[k])
			if !ok {
				it := typeIssue("JSON value", src[k])
				it.Path = tsspec.JoinPointer("", k)
				iss = append(iss, it)
				continue
			}
			if m.extra == nil {
				m.extra = map[string]any{}
			}
			m.extra[k] = n
		case tsspec.UnknownStrip:
		default:
			iss = append(iss, unknownKeyIssue(k, src[k], o.fieldNames()))
			if failFast {
				return nil, iss
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	for _, r := range o.refines {
		if ri := r.fn(ctx, m); len(ri) > 0 {
			iss = append(iss, ri...)
			if failFast {
				return nil, iss
			}
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return m, nil
}

func (o *Schema) expected() string {
	if o.name != "" {
		return o.name + " object"
	}
	return "object"
}

func requiredIssue(f *Field) tsspec.Issue {
	return tsspec.Issue{
		Path:     tsspec.JoinPointer("", f.name),
		Code:     tsspec.CodeRequired,
		Message:  i18n.T(tsspec.CodeRequired, nil),
		Expected: f.c.Expected(),
	}
}

func unknownKeyIssue(key string, v any, declared []string) tsspec.Issue {
	return tsspec.Issue{
		Path:    tsspec.JoinPointer("", key),
		Code:    tsspec.CodeUnknownKey,
		Message: i18n.T(tsspec.CodeUnknownKey, map[string]string{"key": key}),
		Hint:    didYouMean(key, declared),
		Value:   v,
		Params:  map[string]any{"key": key},
	}
}

// objectBuilder declares a Schema.
type objectBuilder struct {
	name    string
	desc    string
	fields  []*Field
	unknown tsspec.UnknownPolicy
	refines []objRefine
}

type fieldStep struct {
	b *objectBuilder
	f *Field
}

// Object creates a builder for a named object with UnknownStrict semantics.
func Object(name string) *objectBuilder {
	return &objectBuilder{name: name, unknown: tsspec.UnknownStrict}
}

// Describe sets the object description exported to JSON Schema.
func (b *objectBuilder) Describe(desc string) *objectBuilder {
	b.desc = desc
	return b
}

// Extend copies the fields, unknown policy and refinements of base. Fields
// declared later with the same name replace the inherited ones in place.
func (b *objectBuilder) Extend(base *Schema) *objectBuilder {
	for _, f := range base.fields {
		cp := *f
		b.put(&cp)
	}
	b.unknown = base.unknown
	b.refines = append(b.refines, base.refines...)
	return b
}

func (b *objectBuilder) put(f *Field) {
	for i, existing := range b.fields {
		if existing.name == f.name {
			b.fields[i] = f
			return
		}
	}
	b.fields = append(b.fields, f)
}

// Field declares an optional field; chain Required or Default to change it.
func (b *objectBuilder) Field(name string, c *Constraint) *fieldStep {
	f := &Field{name: name, c: c}
	b.put(f)
	return &fieldStep{b: b, f: f}
}

// Without removes inherited fields.
func (b *objectBuilder) Without(names ...string) *objectBuilder {
	for _, n := range names {
		for i, f := range b.fields {
			if f.name == n {
				b.fields = append(b.fields[:i], b.fields[i+1:]...)
				break
			}
		}
	}
	return b
}

// UnknownStrict rejects undeclared keys (the default).
func (b *objectBuilder) UnknownStrict() *objectBuilder {
	b.unknown = tsspec.UnknownStrict
	return b
}

// UnknownStrip drops undeclared keys.
func (b *objectBuilder) UnknownStrip() *objectBuilder {
	b.unknown = tsspec.UnknownStrip
	return b
}

// UnknownPassthrough keeps undeclared keys on the model and re-emits them.
func (b *objectBuilder) UnknownPassthrough() *objectBuilder {
	b.unknown = tsspec.UnknownPassthrough
	return b
}

// Refine adds an object-level rule executed after field checks succeed.
func (b *objectBuilder) Refine(name string, fn RefineFunc) *objectBuilder {
	if fn == nil {
		return b
	}
	b.refines = append(b.refines, objRefine{name: name, fn: fn})
	return b
}

// Build validates the declarations and returns the Schema.
func (b *objectBuilder) Build() (*Schema, error) {
	o := &Schema{
		name:    b.name,
		desc:    b.desc,
		fields:  append([]*Field(nil), b.fields...),
		index:   make(map[string]*Field, len(b.fields)),
		unknown: b.unknown,
		refines: append([]objRefine(nil), b.refines...),
	}
	for _, f := range o.fields {
		if f.name == "" {
			return nil, errors.New("dsl: object " + b.name + ": empty field name")
		}
		if f.c == nil {
			return nil, errors.New("dsl: object " + b.name + ": field " + f.name + " has no constraint")
		}
		o.index[f.name] = f
	}
	return o, nil
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() *Schema {
	o, err := b.Build()
	if err != nil {
		panic(err)
	}
	return o
}

// Required marks the current field as required.
func (s *fieldStep) Required() *objectBuilder {
	s.f.required, s.f.hasDefault, s.f.def = true, false, nil
	return s.b
}

// Optional marks the current field as optional without a default.
func (s *fieldStep) Optional() *objectBuilder {
	s.f.required = false
	return s.b
}

// Default makes the current field optional with a declared default. The
// default is validated by the field constraint whenever it is applied.
func (s *fieldStep) Default(v any) *objectBuilder {
	n, ok := normalizeJSON(v)
	if !ok {
		panic("dsl: unsupported default for " + s.f.name)
	}
	s.f.required, s.f.hasDefault, s.f.def = false, true, n
	return s.b
}

// Describe documents the current field.
func (s *fieldStep) Describe(desc string) *fieldStep {
	s.f.desc = desc
	return s
}

func (s *fieldStep) Field(name string, c *Constraint) *fieldStep { return s.b.Field(name, c) }
func (s *fieldStep) Refine(name string, fn RefineFunc) *objectBuilder {
	return s.b.Refine(name, fn)
}
func (s *fieldStep) UnknownPassthrough() *objectBuilder { return s.b.UnknownPassthrough() }
func (s *fieldStep) Build() (*Schema, error)            { return s.b.Build() }
func (s *fieldStep) MustBuild() *Schema                 { return s.b.MustBuild() }
