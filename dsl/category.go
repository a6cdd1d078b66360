package dsl

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/i18n"
)

// ShorthandFunc expands a string form of a category member (for example a
// kvstore URL) into its mapping form.
type ShorthandFunc func(s string) (map[string]any, error)

// Category is a discriminated set of variants sharing one discriminator key.
// Variants are registered during initialization; the first lookup or
// resolution freezes the category and later registrations panic.
type Category struct {
	name      string
	key       string
	desc      string
	variants  map[string]*Schema
	tags      []string
	shorthand ShorthandFunc
	shortDesc string
	frozen    atomic.Bool
}

// NewCategory creates an empty category discriminated by key.
func NewCategory(name, key string) *Category {
	return &Category{name: name, key: key, variants: map[string]*Schema{}}
}

// Describe sets the category description.
func (c *Category) Describe(desc string) *Category {
	c.desc = desc
	return c
}

// Shorthand declares a string form accepted in place of a mapping. desc
// names the accepted forms in error messages.
func (c *Category) Shorthand(desc string, fn ShorthandFunc) *Category {
	c.mustNotBeFrozen("shorthand")
	c.shortDesc, c.shorthand = desc, fn
	return c
}

// Register adds a variant under tag and returns it. It panics on a duplicate
// tag or after the category is frozen.
func (c *Category) Register(tag string, o *Schema) *Schema {
	c.mustNotBeFrozen(tag)
	if tag == "" || o == nil {
		panic("dsl: category " + c.name + ": empty variant")
	}
	if _, dup := c.variants[tag]; dup {
		panic("dsl: category " + c.name + ": duplicate variant " + tag)
	}
	c.variants[tag] = o
	c.tags = append(c.tags, tag)
	sort.Strings(c.tags)
	return o
}

func (c *Category) mustNotBeFrozen(what string) {
	if c.frozen.Load() {
		panic("dsl: category " + c.name + " is frozen; cannot register " + what)
	}
}

func (c *Category) freeze() { c.frozen.Store(true) }

// Frozen reports whether the category still accepts registrations.
func (c *Category) Frozen() bool { return c.frozen.Load() }

func (c *Category) Name() string          { return c.name }
func (c *Category) Discriminator() string { return c.key }
func (c *Category) Description() string   { return c.desc }

// Tags returns the registered discriminator values, sorted.
func (c *Category) Tags() []string {
	c.freeze()
	return append([]string(nil), c.tags...)
}

// Lookup returns the variant registered under tag.
func (c *Category) Lookup(tag string) (*Schema, bool) {
	c.freeze()
	o, ok := c.variants[tag]
	return o, ok
}

func (c *Category) expected() string {
	s := c.name + " object (" + c.key + ")"
	if c.shorthand != nil {
		s += " or " + c.shortDesc
	}
	return s
}

// Resolve selects the variant named by the discriminator and validates the
// rest of the mapping against it. Errors are tsspec.Issues.
func (c *Category) Resolve(ctx context.Context, v any) (*Model, error) {
	ctx = orBackground(ctx)
	start := time.Now()
	m, iss := c.resolve(ctx, v)
	if obs := observerFrom(ctx); obs != nil {
		tag := UnknownVariant
		if m != nil {
			tag = m.tag
		} else if raw, ok := asMap(v); ok {
			if s, _ := raw[c.key].(string); s != "" {
				if _, known := c.Lookup(s); known {
					tag = s
				}
			}
		}
		obs.ObserveResolve(c.name, tag, time.Since(start), iss)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return m, nil
}

func (c *Category) resolve(ctx context.Context, v any) (*Model, tsspec.Issues) {
	c.freeze()
	if s, ok := v.(string); ok && c.shorthand != nil {
		expanded, err := c.shorthand(s)
		if err != nil {
			it := Violation(tsspec.CodeInvalidFormat, c.shortDesc, s)
			it.Cause = err
			it.Hint = err.Error()
			return nil, tsspec.Issues{it}
		}
		v = expanded
	}
	src, ok := asMap(v)
	if !ok {
		return nil, tsspec.Issues{typeIssue(c.expected(), v)}
	}
	raw, present := src[c.key]
	if !present || raw == nil {
		return nil, tsspec.Issues{{
			Path:     tsspec.JoinPointer("", c.key),
			Code:     tsspec.CodeDiscriminatorMissing,
			Message:  i18n.T(tsspec.CodeDiscriminatorMissing, map[string]string{"key": c.key}),
			Expected: c.oneOf(),
		}}
	}
	tag, ok := raw.(string)
	if !ok {
		it := typeIssue("string", raw)
		it.Path = tsspec.JoinPointer("", c.key)
		return nil, tsspec.Issues{it}
	}
	o, ok := c.variants[tag]
	if !ok {
		return nil, tsspec.Issues{{
			Path:     tsspec.JoinPointer("", c.key),
			Code:     tsspec.CodeDiscriminatorUnknown,
			Message:  i18n.T(tsspec.CodeDiscriminatorUnknown, map[string]string{"expected": c.oneOf(), "actual": formatValue(tag)}),
			Hint:     didYouMean(tag, c.tags),
			Expected: c.oneOf(),
			Value:    tag,
			Params:   map[string]any{"category": c.name, "value": tag, "registered": append([]string(nil), c.tags...)},
		}}
	}
	m, iss := o.resolve(ctx, src, c.key)
	if len(iss) > 0 {
		return nil, iss
	}
	m.category, m.tag = c, tag
	return m, nil
}

func (c *Category) oneOf() string {
	return "[" + strings.Join(c.tags, " ") + "]"
}

// Registry indexes categories by name. It freezes on first lookup.
type Registry struct {
	byName map[string]*Category
	names  []string
	frozen atomic.Bool
}

// NewRegistry creates a registry holding cats and every category reachable
// from their variants.
func NewRegistry(cats ...*Category) *Registry {
	r := &Registry{byName: map[string]*Category{}}
	for _, c := range cats {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds c and the categories its variants reference. Registering the
// same category twice is a no-op; two different categories with one name are
// an error.
func (r *Registry) Register(c *Category) error {
	if r.frozen.Load() {
		return &RegistryError{Category: c.name, Reason: "registry is frozen"}
	}
	return r.walk(c, map[*Schema]bool{})
}

func (r *Registry) walk(c *Category, seen map[*Schema]bool) error {
	if existing, ok := r.byName[c.name]; ok {
		if existing != c {
			return &RegistryError{Category: c.name, Reason: "duplicate category name"}
		}
		return nil
	}
	r.byName[c.name] = c
	r.names = append(r.names, c.name)
	sort.Strings(r.names)
	for _, tag := range c.tags {
		if err := r.walkObject(c.variants[tag], seen); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) walkObject(o *Schema, seen map[*Schema]bool) error {
	if seen[o] {
		return nil
	}
	seen[o] = true
	for _, f := range o.fields {
		if err := r.walkConstraint(f.c, seen); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) walkConstraint(c *Constraint, seen map[*Schema]bool) error {
	if c == nil {
		return nil
	}
	switch c.kind {
	case KindCategory:
		return r.walk(c.category, seen)
	case KindObject:
		return r.walkObject(c.object, seen)
	}
	for _, sub := range append(append([]*Constraint{c.elem}, c.items...), c.alts...) {
		if err := r.walkConstraint(sub, seen); err != nil {
			return err
		}
	}
	return nil
}

// RegistryError reports an invalid registration.
type RegistryError struct {
	Category string
	Reason   string
}

func (e *RegistryError) Error() string { return "dsl: category " + e.Category + ": " + e.Reason }

// Freeze stops further registrations.
func (r *Registry) Freeze() { r.frozen.Store(true) }

// Category returns the category registered under name.
func (r *Registry) Category(name string) (*Category, bool) {
	r.Freeze()
	c, ok := r.byName[name]
	return c, ok
}

// Names returns the registered category names, sorted.
func (r *Registry) Names() []string {
	r.Freeze()
	return append([]string(nil), r.names...)
}

// Lookup returns the variant tag of the named category.
func (r *Registry) Lookup(category, tag string) (*Schema, bool) {
	c, ok := r.Category(category)
	if !ok {
		return nil, false
	}
	return c.Lookup(tag)
}

// Resolve resolves v against the named category.
func (r *Registry) Resolve(ctx context.Context, category string, v any) (*Model, error) {
	c, ok := r.Category(category)
	if !ok {
		return nil, &UnknownCategoryError{Name: category, Known: r.Names()}
	}
	return c.Resolve(ctx, v)
}

// UnknownCategoryError is returned when a category name is not registered.
type UnknownCategoryError struct {
	Name  string
	Known []string
}

func (e *UnknownCategoryError) Error() string {
	return "dsl: unknown category " + e.Name + " (known: " + strings.Join(e.Known, ", ") + ")"
}

// UnknownVariant is the variant reported to an Observer when the input
// names no registered variant.
const UnknownVariant = "unknown"

// Observer is notified once per top-level category resolution. variant is
// a registered tag or UnknownVariant, never raw input.
type Observer interface {
	ObserveResolve(category, variant string, d time.Duration, iss tsspec.Issues)
}

type observerKey struct{}

// WithObserver attaches obs to ctx; Category.Resolve reports to it.
func WithObserver(ctx context.Context, obs Observer) context.Context {
	return context.WithValue(ctx, observerKey{}, obs)
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func observerFrom(ctx context.Context) Observer {
	if ctx == nil {
		return nil
	}
	obs, _ := ctx.Value(observerKey{}).(Observer)
	return obs
}
