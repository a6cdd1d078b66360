package dsl

import (
	tsspec "github.com/reoring/tsspec"
	js "github.com/reoring/tsspec/jsonschema"
)

// schemaGen collects nested categories into $defs so recursive categories
// (sharding codecs) terminate.
type schemaGen struct {
	defs map[string]*js.Schema
	refs map[string]bool
}

// JSONSchema projects the category onto JSON Schema: a oneOf over variants,
// each pinning the discriminator with const.
func (c *Category) JSONSchema() *js.Schema {
	g := &schemaGen{defs: map[string]*js.Schema{}, refs: map[string]bool{}}
	s := g.category(c)
	if !g.refs[c.name] {
		delete(g.defs, c.name)
	}
	return g.root(s)
}

// JSONSchema projects the object onto JSON Schema.
func (o *Schema) JSONSchema() *js.Schema {
	g := &schemaGen{defs: map[string]*js.Schema{}, refs: map[string]bool{}}
	return g.root(g.object(o, ""))
}

// root attaches $defs to a copy of s; definitions may point back at s.
func (g *schemaGen) root(s *js.Schema) *js.Schema {
	if len(g.defs) == 0 {
		return s
	}
	cp := *s
	cp.Defs = g.defs
	return &cp
}

func (g *schemaGen) category(c *Category) *js.Schema {
	g.defs[c.name] = &js.Schema{}
	s := &js.Schema{Title: c.name, Description: c.desc, Discriminator: &js.Discriminator{PropertyName: c.key}}
	for _, tag := range c.tags {
		s.OneOf = append(s.OneOf, g.object(c.variants[tag], c.key, tag))
	}
	if c.shorthand != nil {
		s = &js.Schema{Title: c.name, AnyOf: []*js.Schema{s, {Type: "string", Description: c.shortDesc}}}
	}
	g.defs[c.name] = s
	return s
}

func (g *schemaGen) ref(c *Category) *js.Schema {
	if _, ok := g.defs[c.name]; !ok {
		g.category(c)
	}
	g.refs[c.name] = true
	return &js.Schema{Ref: "#/$defs/" + c.name}
}

func (g *schemaGen) object(o *Schema, key string, tag ...string) *js.Schema {
	s := &js.Schema{Type: "object", Title: o.name, Description: o.desc, Properties: map[string]*js.Schema{}}
	if key != "" && len(tag) > 0 {
		s.Properties[key] = &js.Schema{Type: "string", Const: tag[0]}
		s.Required = append(s.Required, key)
	}
	for _, f := range o.fields {
		fs := g.constraint(f.c)
		if f.desc != "" {
			fs.Description = f.desc
		}
		if f.hasDefault {
			fs.Default = f.def
		}
		s.Properties[f.name] = fs
		if f.required {
			s.Required = append(s.Required, f.name)
		}
	}
	if o.unknown == tsspec.UnknownStrict {
		s.AdditionalProperties = false
	}
	return s
}

func (g *schemaGen) constraint(c *Constraint) *js.Schema {
	s := &js.Schema{Description: c.desc}
	switch c.kind {
	case KindString:
		s.Type = "string"
		s.MinLength, s.MaxLength = c.minLen, c.maxLen
		if c.pattern != nil {
			s.Pattern = c.pattern.String()
		}
	case KindInt, KindNumber:
		s.Type = "number"
		if c.kind == KindInt {
			s.Type = "integer"
		}
		if c.min != nil {
			if c.exclusiveMin {
				s.ExclusiveMinimum = js.Float(*c.min)
			} else {
				s.Minimum = js.Float(*c.min)
			}
		}
		if c.max != nil {
			s.Maximum = js.Float(*c.max)
		}
	case KindBool:
		s.Type = "boolean"
	case KindLiteral:
		if len(c.literals) == 1 {
			s.Const = c.literals[0]
		}
	case KindArray:
		s.Type = "array"
		s.MinItems, s.MaxItems = c.minLen, c.maxLen
		if c.elem != nil {
			s.Items = g.constraint(c.elem)
		}
	case KindTuple:
		s.Type = "array"
		s.MinItems, s.MaxItems = js.Int(len(c.items)), js.Int(len(c.items))
		for _, it := range c.items {
			s.PrefixItems = append(s.PrefixItems, g.constraint(it))
		}
	case KindObject:
		o := g.object(c.object, "")
		o.Description = firstNonEmpty(c.desc, o.Description)
		s = o
	case KindCategory:
		r := g.ref(c.category)
		r.Description = c.desc
		s = r
	case KindUnion:
		for _, a := range c.alts {
			s.AnyOf = append(s.AnyOf, g.constraint(a))
		}
	}
	if len(c.literals) > 1 || (len(c.literals) == 1 && c.kind != KindLiteral) {
		s.Enum = append([]any(nil), c.literals...)
	}
	if c.nullable {
		s = &js.Schema{Description: s.Description, AnyOf: []*js.Schema{s, {Type: "null"}}}
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
