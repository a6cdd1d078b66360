package engine

import (
	"strconv"
	"strings"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives non-fatal issues (duplicate keys under DupWarn).
	IssueSink func(SimpleIssue)
}

// Enabled reports whether any enforcement is configured.
func (o EnforceOptions) Enabled() bool {
	return o.OnDuplicate != DupIgnore || o.MaxDepth > 0 || o.MaxBytes > 0
}

type frame struct {
	object    bool
	path      string
	keys      map[string]struct{}
	key       string // pending key of an object frame
	nextIndex int
}

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy, maximum nesting depth and maximum consumed bytes.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if !opt.Enabled() {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		path := e.valuePath()
		e.stack = append(e.stack, frame{object: tok.Kind == KindBeginObject, path: path, keys: map[string]struct{}{}})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, IssueError{SimpleIssue{Code: "parse_error", Path: rootIfEmpty(path), Message: "max depth " + strconv.Itoa(e.opt.MaxDepth) + " exceeded"}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.valueDone()
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
				si := SimpleIssue{Code: "duplicate_key", Path: joinPointer(top.path, tok.String), Message: "key '" + tok.String + "' duplicated"}
				if e.opt.OnDuplicate == DupError {
					return Token{}, IssueError{si}
				}
				if e.opt.IssueSink != nil {
					e.opt.IssueSink(si)
				}
			}
			top.keys[tok.String] = struct{}{}
			top.key = tok.String
		}
	default:
		e.valuePath()
		e.valueDone()
	}
	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return Token{}, IssueError{SimpleIssue{Code: "truncated", Path: "/", Message: "max bytes " + strconv.FormatInt(e.opt.MaxBytes, 10) + " exceeded"}}
		}
	}
	return tok, nil
}

// valuePath returns the pointer of the value starting at the current token and
// advances array indices.
func (e *enforcingTokenSource) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.object {
		return joinPointer(top.path, top.key)
	}
	p := top.path + "/" + strconv.Itoa(top.nextIndex)
	top.nextIndex++
	return p
}

// valueDone clears the pending key once an object member value completes.
func (e *enforcingTokenSource) valueDone() {
	if n := len(e.stack); n > 0 && e.stack[n-1].object {
		e.stack[n-1].key = ""
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, key string) string { return base + "/" + pointerEscaper.Replace(key) }

func rootIfEmpty(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
