package dsl

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/i18n"
)

// Kind is the semantic type of a Constraint.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindInt
	KindNumber
	KindBool
	KindLiteral
	KindArray
	KindTuple
	KindObject
	KindCategory
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindLiteral:
		return "literal"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindObject:
		return "object"
	case KindCategory:
		return "category"
	case KindUnion:
		return "union"
	default:
		return "any"
	}
}

// CheckFunc is a custom named check run on the coerced value. Returned issue
// paths are relative to the value.
type CheckFunc func(v any) tsspec.Issues

type namedCheck struct {
	name string
	fn   CheckFunc
}

// Constraint describes the accepted values of one field. Constraints are
// immutable: every modifier returns a copy, so shared constraints can be
// specialized safely.
type Constraint struct {
	kind     Kind
	nullable bool
	desc     string

	min, max     *float64
	exclusiveMin bool
	minLen       *int
	maxLen       *int
	literals     []any
	pattern      *regexp.Regexp

	elem     *Constraint
	items    []*Constraint
	object   *Schema
	category *Category
	alts     []*Constraint
	checks   []namedCheck
}

func newConstraint(k Kind) *Constraint { return &Constraint{kind: k} }

// String accepts JSON strings.
func String() *Constraint { return newConstraint(KindString) }

// Int accepts integral numbers; a fractional value is a type mismatch.
func Int() *Constraint { return newConstraint(KindInt) }

// Number accepts any finite number and coerces it to float64.
func Number() *Constraint { return newConstraint(KindNumber) }

// Bool accepts booleans.
func Bool() *Constraint { return newConstraint(KindBool) }

// Any accepts any JSON value, including null.
func Any() *Constraint { return newConstraint(KindAny) }

// Literal accepts exactly one of the given values. Strings compare
// case-sensitively; numbers compare after normalization.
func Literal(values ...any) *Constraint {
	c := newConstraint(KindLiteral)
	for _, v := range values {
		n, ok := normalizeJSON(v)
		if !ok {
			panic("dsl: unsupported literal " + formatValue(v))
		}
		c.literals = append(c.literals, n)
	}
	return c
}

// Enum is Literal over strings.
func Enum(values ...string) *Constraint {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return Literal(vals...)
}

// Array accepts a list whose elements satisfy elem.
func Array(elem *Constraint) *Constraint {
	c := newConstraint(KindArray)
	c.elem = elem
	return c
}

// Tuple accepts a list with exactly len(items) positional elements.
func Tuple(items ...*Constraint) *Constraint {
	c := newConstraint(KindTuple)
	c.items = items
	return c
}

// Nested accepts a mapping resolved against o.
func Nested(o *Schema) *Constraint {
	c := newConstraint(KindObject)
	c.object = o
	return c
}

// OneOf accepts a mapping resolved through the category's discriminator.
func OneOf(cat *Category) *Constraint {
	c := newConstraint(KindCategory)
	c.category = cat
	return c
}

// Union accepts a value matching any alternative, tried in order.
func Union(alts ...*Constraint) *Constraint {
	c := newConstraint(KindUnion)
	c.alts = alts
	return c
}

func (c *Constraint) clone() *Constraint {
	cc := *c
	cc.checks = append([]namedCheck(nil), c.checks...)
	return &cc
}

// Min sets an inclusive lower bound for numbers.
func (c *Constraint) Min(n float64) *Constraint {
	cc := c.clone()
	cc.min, cc.exclusiveMin = &n, false
	return cc
}

// ExclusiveMin sets an exclusive lower bound for numbers.
func (c *Constraint) ExclusiveMin(n float64) *Constraint {
	cc := c.clone()
	cc.min, cc.exclusiveMin = &n, true
	return cc
}

// Max sets an inclusive upper bound for numbers.
func (c *Constraint) Max(n float64) *Constraint {
	cc := c.clone()
	cc.max = &n
	return cc
}

// Range is Min(lo).Max(hi).
func (c *Constraint) Range(lo, hi float64) *Constraint { return c.Min(lo).Max(hi) }

// NonNegative is Min(0).
func (c *Constraint) NonNegative() *Constraint { return c.Min(0) }

// Positive is Min(1) for integers and ExclusiveMin(0) otherwise.
func (c *Constraint) Positive() *Constraint {
	if c.kind == KindInt {
		return c.Min(1)
	}
	return c.ExclusiveMin(0)
}

// MinLen bounds string length or array item count from below.
func (c *Constraint) MinLen(n int) *Constraint {
	cc := c.clone()
	cc.minLen = &n
	return cc
}

// MaxLen bounds string length or array item count from above.
func (c *Constraint) MaxLen(n int) *Constraint {
	cc := c.clone()
	cc.maxLen = &n
	return cc
}

// Len requires an exact string length or array item count.
func (c *Constraint) Len(n int) *Constraint { return c.MinLen(n).MaxLen(n) }

// NonEmpty is MinLen(1).
func (c *Constraint) NonEmpty() *Constraint { return c.MinLen(1) }

// OneOfValues restricts the coerced value to the given literals.
func (c *Constraint) OneOfValues(values ...any) *Constraint {
	cc := c.clone()
	cc.literals = Literal(values...).literals
	return cc
}

// Pattern requires strings to match the regular expression.
func (c *Constraint) Pattern(expr string) *Constraint {
	cc := c.clone()
	cc.pattern = regexp.MustCompile(expr)
	return cc
}

// Nullable accepts JSON null in addition to the constrained values.
func (c *Constraint) Nullable() *Constraint {
	cc := c.clone()
	cc.nullable = true
	return cc
}

// Check appends a named custom check.
func (c *Constraint) Check(name string, fn CheckFunc) *Constraint {
	cc := c.clone()
	cc.checks = append(cc.checks, namedCheck{name: name, fn: fn})
	return cc
}

// Describe attaches a human description, exported to JSON Schema.
func (c *Constraint) Describe(desc string) *Constraint {
	cc := c.clone()
	cc.desc = desc
	return cc
}

func (c *Constraint) Kind() Kind                  { return c.kind }
func (c *Constraint) Description() string         { return c.desc }
func (c *Constraint) IsNullable() bool            { return c.nullable }
func (c *Constraint) Elem() *Constraint           { return c.elem }
func (c *Constraint) Object() *Schema             { return c.object }
func (c *Constraint) Category() *Category         { return c.category }
func (c *Constraint) Alternatives() []*Constraint { return c.alts }

// Expected describes the accepted values, e.g. "integer", "one of [C F]".
func (c *Constraint) Expected() string {
	var s string
	switch c.kind {
	case KindLiteral:
		s = "one of " + formatLiterals(c.literals)
	case KindArray:
		s = "array"
		if c.elem != nil && c.elem.kind != KindAny {
			s = "array of " + c.elem.Expected()
		}
	case KindTuple:
		s = "array of " + strconv.Itoa(len(c.items)) + " items"
	case KindObject:
		s = "object"
		if c.object != nil && c.object.name != "" {
			s = c.object.name + " object"
		}
	case KindCategory:
		s = c.category.expected()
	case KindUnion:
		parts := make([]string, len(c.alts))
		for i, a := range c.alts {
			parts[i] = a.Expected()
		}
		s = strings.Join(parts, " or ")
	case KindAny:
		s = "JSON value"
	default:
		s = c.kind.String()
	}
	if c.nullable && c.kind != KindAny {
		s += " or null"
	}
	return s
}

// accepts reports whether values of the given JSON type may satisfy c.
func (c *Constraint) accepts(typ string) bool {
	if typ == "null" {
		return c.nullable || c.kind == KindAny
	}
	switch c.kind {
	case KindAny:
		return true
	case KindString:
		return typ == "string"
	case KindInt, KindNumber:
		return typ == "number"
	case KindBool:
		return typ == "boolean"
	case KindLiteral:
		for _, l := range c.literals {
			if jsonType(l) == typ {
				return true
			}
		}
		return false
	case KindArray, KindTuple:
		return typ == "array"
	case KindObject:
		return typ == "object"
	case KindCategory:
		return typ == "object" || (typ == "string" && c.category.shorthand != nil)
	case KindUnion:
		for _, a := range c.alts {
			if a.accepts(typ) {
				return true
			}
		}
	}
	return false
}

// Validate checks v and returns the coerced value or tsspec.Issues whose
// paths are relative to v.
func (c *Constraint) Validate(ctx context.Context, v any) (any, error) {
	out, iss := c.check(ctx, v)
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (c *Constraint) check(ctx context.Context, v any) (any, tsspec.Issues) {
	if v == nil {
		if c.nullable || c.kind == KindAny {
			return nil, nil
		}
		return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
	}
	var (
		out any
		iss tsspec.Issues
	)
	switch c.kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
		}
		out, iss = s, c.checkLength(len([]rune(s)), "characters", s)
		if c.pattern != nil && !c.pattern.MatchString(s) {
			iss = append(iss, Violation(tsspec.CodePattern, c.pattern.String(), s))
		}
	case KindInt:
		i, ok := asInt(v)
		if !ok {
			return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
		}
		out, iss = i, c.checkRange(float64(i), i)
	case KindNumber:
		f, ok := asFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
		}
		out, iss = f, c.checkRange(f, f)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
		}
		out = b
	case KindLiteral:
		n, _ := normalizeJSON(v)
		if !c.accepts(jsonType(v)) {
			return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
		}
		out = n
	case KindArray:
		return c.checkArray(ctx, v)
	case KindTuple:
		return c.checkTuple(ctx, v)
	case KindObject:
		if m, ok := v.(*Model); ok && m.object == c.object {
			return m, nil
		}
		m, oi := c.object.resolve(ctx, v, "")
		if len(oi) > 0 {
			return nil, oi
		}
		out = m
	case KindCategory:
		if m, ok := v.(*Model); ok && m.category == c.category {
			return m, nil
		}
		m, ci := c.category.resolve(ctx, v)
		if len(ci) > 0 {
			return nil, ci
		}
		out = m
	case KindUnion:
		return c.checkUnion(ctx, v)
	default:
		n, ok := normalizeJSON(v)
		if !ok {
			return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
		}
		out = n
	}
	if len(c.literals) > 0 && len(iss) == 0 && !containsValue(c.literals, out) {
		iss = append(iss, Violation(tsspec.CodeInvalidEnum, formatLiterals(c.literals), out))
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return c.runChecks(out)
}

func (c *Constraint) runChecks(out any) (any, tsspec.Issues) {
	var iss tsspec.Issues
	for _, chk := range c.checks {
		iss = append(iss, chk.fn(out)...)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (c *Constraint) checkRange(f float64, actual any) tsspec.Issues {
	var iss tsspec.Issues
	if c.min != nil {
		switch {
		case c.exclusiveMin && f <= *c.min:
			iss = append(iss, Violation(tsspec.CodeTooSmall, "> "+formatNumber(*c.min), actual))
		case !c.exclusiveMin && f < *c.min:
			iss = append(iss, Violation(tsspec.CodeTooSmall, ">= "+formatNumber(*c.min), actual))
		}
	}
	if c.max != nil && f > *c.max {
		iss = append(iss, Violation(tsspec.CodeTooBig, "<= "+formatNumber(*c.max), actual))
	}
	return iss
}

func (c *Constraint) checkLength(n int, unit string, actual any) tsspec.Issues {
	switch {
	case c.minLen != nil && c.maxLen != nil && *c.minLen == *c.maxLen && n != *c.minLen:
		return tsspec.Issues{Violation(tsspec.CodeLengthMismatch, "exactly "+strconv.Itoa(*c.minLen)+" "+unit, actual)}
	case c.minLen != nil && n < *c.minLen:
		return tsspec.Issues{Violation(tsspec.CodeTooShort, "at least "+strconv.Itoa(*c.minLen)+" "+unit, actual)}
	case c.maxLen != nil && n > *c.maxLen:
		return tsspec.Issues{Violation(tsspec.CodeTooLong, "at most "+strconv.Itoa(*c.maxLen)+" "+unit, actual)}
	}
	return nil
}

func (c *Constraint) checkArray(ctx context.Context, v any) (any, tsspec.Issues) {
	arr, ok := asSlice(v)
	if !ok {
		return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
	}
	if iss := c.checkLength(len(arr), "items", len(arr)); len(iss) > 0 {
		return nil, iss
	}
	out := make([]any, len(arr))
	var iss tsspec.Issues
	elem := c.elem
	if elem == nil {
		elem = Any()
	}
	for i, e := range arr {
		ev, ei := elem.check(ctx, e)
		if len(ei) > 0 {
			iss = append(iss, ei.Rebase("/"+strconv.Itoa(i))...)
			if tsspec.IsFailFast(ctx) {
				return nil, iss
			}
			continue
		}
		out[i] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return c.runChecks(out)
}

func (c *Constraint) checkTuple(ctx context.Context, v any) (any, tsspec.Issues) {
	arr, ok := asSlice(v)
	if !ok {
		return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
	}
	if len(arr) != len(c.items) {
		return nil, tsspec.Issues{Violation(tsspec.CodeLengthMismatch, "exactly "+strconv.Itoa(len(c.items))+" items", len(arr))}
	}
	out := make([]any, len(arr))
	var iss tsspec.Issues
	for i, e := range arr {
		ev, ei := c.items[i].check(ctx, e)
		if len(ei) > 0 {
			iss = append(iss, ei.Rebase("/"+strconv.Itoa(i))...)
			continue
		}
		out[i] = ev
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return c.runChecks(out)
}

// checkUnion reports the issues of the single alternative that accepts the
// value's JSON type, or a type mismatch listing every alternative.
func (c *Constraint) checkUnion(ctx context.Context, v any) (any, tsspec.Issues) {
	typ := jsonType(v)
	var first tsspec.Issues
	matched := 0
	for _, a := range c.alts {
		if !a.accepts(typ) {
			continue
		}
		matched++
		out, iss := a.check(ctx, v)
		if len(iss) == 0 {
			return c.runChecks(out)
		}
		if first == nil {
			first = iss
		}
	}
	if matched == 1 {
		return nil, first
	}
	return nil, tsspec.Issues{typeIssue(c.Expected(), v)}
}

func containsValue(vals []any, v any) bool {
	for _, l := range vals {
		if valuesEqual(l, v) {
			return true
		}
		// 1 and 1.0 are the same JSON number.
		if lf, ok := asFloat(l); ok {
			if vf, ok := asFloat(v); ok && lf == vf {
				return true
			}
		}
	}
	return false
}

func typeIssue(expected string, v any) tsspec.Issue {
	actual := jsonType(v)
	if actual != "null" && actual != "unknown" {
		actual += " " + formatValue(v)
	}
	return tsspec.Issue{
		Path:     "/",
		Code:     tsspec.CodeInvalidType,
		Message:  i18n.T(tsspec.CodeInvalidType, map[string]string{"expected": expected, "actual": actual}),
		Expected: expected,
		Value:    v,
	}
}

// Violation builds a constraint issue at the value root. expected describes
// the violated constraint; actual is the offending value.
func Violation(code, expected string, actual any) tsspec.Issue {
	return tsspec.Issue{
		Path:     "/",
		Code:     code,
		Message:  i18n.T(code, map[string]string{"expected": expected, "actual": formatValue(actual)}),
		Expected: expected,
		Value:    actual,
	}
}

// Inconsistent builds a cross-field issue at pointer.
func Inconsistent(pointer, detail string, actual any) tsspec.Issue {
	return tsspec.Issue{
		Path:     pointer,
		Code:     tsspec.CodeInconsistent,
		Message:  i18n.T(tsspec.CodeInconsistent, map[string]string{"detail": detail}),
		Expected: detail,
		Value:    actual,
	}
}
