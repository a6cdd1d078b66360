package tsspec

import (
	"fmt"
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, msg string, kv ...any) Issue
}

// Root returns an empty PathRef pointing at the document root.
func Root() PathRef { return &pathRef{} }

// At parses a JSON Pointer into a PathRef.
func At(pointer string) PathRef {
	if pointer == "" || pointer == "/" {
		return Root()
	}
	parts := []string{}
	for _, p := range strings.Split(pointer, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return &pathRef{parts: parts}
}

type pathRef struct {
	parts []string
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func (p *pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return &pathRef{parts: append(append([]string{}, p.parts...), pointerEscaper.Replace(name))}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p *pathRef) Issue(code, msg string, kv ...any) Issue {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: m}
}

// IssueAt creates an Issue at the given path with provided code, message and params map.
func IssueAt(p PathRef, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}

// JoinPointer appends a single unescaped key to a JSON Pointer.
func JoinPointer(base, key string) string {
	if base == "" || base == "/" {
		return "/" + pointerEscaper.Replace(key)
	}
	return base + "/" + pointerEscaper.Replace(key)
}

// DottedPath converts a JSON Pointer into the dotted form used in messages.
// Numeric segments render as indices: /metadata/chunks/1 -> metadata.chunks[1].
func DottedPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "(root)"
	}
	b := &strings.Builder{}
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		seg = pointerUnescaper.Replace(seg)
		if _, err := strconv.Atoi(seg); err == nil && b.Len() > 0 {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}
