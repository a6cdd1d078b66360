package tsspec

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// StrictYAMLReader decodes a multi-document YAML stream through yaml.Node so
// duplicate keys can be reported with positions. Documents come back as
// JSON-like values (map[string]any, []any, string, int64, float64, bool, nil).
//
// Aliases are expanded in place. A self-referencing anchor is a parse
// error, and so is a document whose alias expansion outgrows its own size
// by the ratio yaml.v3 allows when decoding into values.
type StrictYAMLReader struct {
	dec  *yaml.Decoder
	opt  ParseOpt
	warn func(Issue)

	// per document
	expanding  map[*yaml.Node]bool
	nodes      int
	aliasNodes int
	aliasDepth int
}

// NewStrictYAMLReader constructs a StrictYAMLReader.
func NewStrictYAMLReader(r io.Reader, opt ParseOpt) *StrictYAMLReader {
	return &StrictYAMLReader{dec: yaml.NewDecoder(r), opt: opt}
}

// Next returns the next document. It returns (nil, io.EOF) when the stream is
// exhausted.
func (s *StrictYAMLReader) Next() (any, error) {
	var root yaml.Node
	if err := s.dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	s.expanding = map[*yaml.Node]bool{}
	s.nodes, s.aliasNodes, s.aliasDepth = 0, 0, 0
	return s.convert(&root, "", 0)
}

// ReadAll reads all documents from the YAML stream.
func (s *StrictYAMLReader) ReadAll() ([]any, error) {
	var out []any
	for {
		v, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

func (s *StrictYAMLReader) convert(n *yaml.Node, path string, depth int) (any, error) {
	if s.opt.MaxDepth > 0 && depth > s.opt.MaxDepth {
		return nil, Issues{{Path: rootPointer(path), Code: CodeParseError, Message: "max depth " + strconv.Itoa(s.opt.MaxDepth) + " exceeded"}}
	}
	s.nodes++
	if s.aliasDepth > 0 {
		s.aliasNodes++
	}
	if s.aliasNodes > 100 && s.nodes > 1000 && float64(s.aliasNodes)/float64(s.nodes) > allowedAliasRatio(s.nodes) {
		return nil, Issues{{Path: rootPointer(path), Code: CodeParseError, Message: "document contains excessive aliasing"}}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return s.convert(n.Content[0], path, depth)
	case yaml.AliasNode:
		if s.expanding[n] {
			return nil, Issues{{Path: rootPointer(path), Code: CodeParseError, Message: "anchor " + strconv.Quote(n.Value) + " refers to itself"}}
		}
		s.expanding[n] = true
		s.aliasDepth++
		v, err := s.convert(n.Alias, path, depth)
		s.aliasDepth--
		delete(s.expanding, n)
		return v, err
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			key := k.Value
			child := JoinPointer(path, key)
			if pos, dup := first[key]; dup && s.opt.Strictness.OnDuplicateKey != Ignore {
				de := &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
				it := Issue{Path: child, Code: CodeDuplicateKey, Message: de.Error(), Cause: de}
				if s.opt.Strictness.OnDuplicateKey == Error {
					return nil, Issues{it}
				}
				if s.warn != nil {
					s.warn(it)
				}
			}
			first[key] = [2]int{k.Line, k.Column}
			val, err := s.convert(v, child, depth+1)
			if err != nil {
				return nil, err
			}
			m[key] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := s.convert(c, path+"/"+strconv.Itoa(i), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarValue(n), nil
	default:
		return nil, nil
	}
}

// allowedAliasRatio is the share of a document's decoded nodes that may
// come from alias expansion: 99% up to 400k nodes, falling linearly to 10%
// at 4M. The bounds match yaml.v3.
func allowedAliasRatio(nodes int) float64 {
	const low, high = 400000, 4000000
	switch {
	case nodes <= low:
		return 0.99
	case nodes >= high:
		return 0.10
	default:
		return 0.99 - 0.89*float64(nodes-low)/float64(high-low)
	}
}

func scalarValue(n *yaml.Node) any {
	switch n.Tag {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}

func rootPointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
