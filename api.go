package tsspec

import "context"

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyWarnings
)

// WithFailFast returns a child context that marks fail-fast resolution.
// Schema implementations stop at the first issue when it is set.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current resolution should stop on the first issue.
// A nil ctx reports false.
func IsFailFast(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}

// WithWarnings attaches a sink that receives non-fatal issues (for example
// duplicate keys under Severity Warn).
func WithWarnings(ctx context.Context, sink func(Issue)) context.Context {
	return context.WithValue(ctx, _ctxKeyWarnings, sink)
}

func warn(ctx context.Context, it Issue) {
	if ctx == nil {
		return
	}
	if sink, ok := ctx.Value(_ctxKeyWarnings).(func(Issue)); ok && sink != nil {
		sink(it)
	}
}
