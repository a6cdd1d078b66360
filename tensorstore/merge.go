package tensorstore

import (
	"context"
	"strings"

	"github.com/google/go-cmp/cmp"
	g "github.com/reoring/tsspec/dsl"
)

// mergedKeys are the members whose mappings are merged key by key instead
// of replaced.
var mergedKeys = []string{"schema", "context", "metadata"}

// Normalize resolves a driver spec and serializes it back, dropping
// defaults that were not given explicitly.
func (v *Validator) Normalize(ctx context.Context, raw any) (map[string]any, error) {
	m, err := v.Validate(ctx, raw)
	if err != nil {
		return nil, err
	}
	return m.ToPlainMapping(), nil
}

// Merge overlays override onto the normalized base and validates the
// result. Top-level members of override replace those of base, except
// schema, context and metadata, whose members are merged one level deep.
// Override need not be a complete spec.
func (v *Validator) Merge(ctx context.Context, base, override map[string]any) (*g.Model, error) {
	b, err := v.Normalize(ctx, base)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(b)+len(override))
	for k, val := range b {
		merged[k] = val
	}
	for k, val := range override {
		merged[k] = val
	}
	for _, k := range mergedKeys {
		bm, ok1 := b[k].(map[string]any)
		om, ok2 := override[k].(map[string]any)
		if !ok1 || !ok2 {
			continue
		}
		nested := make(map[string]any, len(bm)+len(om))
		for nk, nv := range bm {
			nested[nk] = nv
		}
		for nk, nv := range om {
			nested[nk] = nv
		}
		merged[k] = nested
	}
	return v.Validate(ctx, merged)
}

// Compare reports whether a and b normalize to the same mapping. Each
// ignore entry is a dotted member path such as "kvstore.path" removed from
// both sides first.
func (v *Validator) Compare(ctx context.Context, a, b any, ignore ...string) (bool, error) {
	na, nb, err := v.normalizePair(ctx, a, b)
	if err != nil {
		return false, err
	}
	for _, p := range ignore {
		drop(na, strings.Split(p, "."))
		drop(nb, strings.Split(p, "."))
	}
	return cmp.Equal(na, nb), nil
}

// Diff renders the difference between the normalized forms of a and b in
// go-cmp's (-a +b) notation. Equal specs produce "".
func (v *Validator) Diff(ctx context.Context, a, b any) (string, error) {
	na, nb, err := v.normalizePair(ctx, a, b)
	if err != nil {
		return "", err
	}
	return cmp.Diff(na, nb), nil
}

func (v *Validator) normalizePair(ctx context.Context, a, b any) (map[string]any, map[string]any, error) {
	na, err := v.Normalize(ctx, a)
	if err != nil {
		return nil, nil, err
	}
	nb, err := v.Normalize(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return na, nb, nil
}

func drop(m map[string]any, path []string) {
	for len(path) > 1 {
		next, ok := m[path[0]].(map[string]any)
		if !ok {
			return
		}
		m, path = next, path[1:]
	}
	delete(m, path[0])
}
