// Package dsl is the discriminated schema validation engine behind tsspec.
//
// Overview
//   - Constraints: String/Int/Number/Bool/Literal/Enum/Array/Tuple/Nested/OneOf/Union/Any,
//     refined with Min/Max/MinLen/MaxLen/Len/Pattern/OneOfValues/Nullable/Check.
//   - Objects: Object(name).Field(...).Required()/Default(v), Unknown*(), Refine(...), MustBuild().
//   - Categories: NewCategory(name, key).Register(tag, object); the discriminator
//     key selects the variant. Categories freeze on first use.
//   - Models: immutable results with typed accessors, Equal and ToPlainMapping.
//
// Resolution order
//  1. Shorthand expansion (string forms such as kvstore URLs).
//  2. Mapping check, then the discriminator (missing short-circuits).
//  3. Declared fields in declaration order; absent optional fields take defaults.
//  4. Unknown keys per policy, sorted.
//  5. Refinements, only when everything above passed.
//
// Issues from independent fields are aggregated into one tsspec.Issues with
// JSON Pointer paths from the resolved value's root. tsspec.WithFailFast stops
// at the first one.
//
// Quickstart
//
//	kv := dsl.NewCategory("kvstore", "driver")
//	kv.Register("memory", dsl.Object("memory").
//		Field("path", dsl.String()).Default("").
//		MustBuild())
//	m, err := kv.Resolve(ctx, map[string]any{"driver": "memory"})
//	_ = m.ToPlainMapping() // {"driver":"memory"}
package dsl
