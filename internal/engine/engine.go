package engine

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrTrailingData is returned when a document is followed by more tokens.
var ErrTrailingData = errors.New("trailing data after document")

// DecodeDocument builds a single JSON-compatible value from the source and
// requires the source to be exhausted afterwards. Numbers decode to int64 when
// integral and representable, float64 otherwise. Malformed input yields an
// IssueError pointing at the member being decoded.
func DecodeDocument(src TokenSource) (any, error) {
	d := &decoder{src: src}
	tok, err := d.next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, d.fail(io.ErrUnexpectedEOF)
		}
		return nil, d.fail(err)
	}
	v, err := d.value(tok)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err == nil {
		return nil, d.fail(ErrTrailingData)
	} else if !errors.Is(err, io.EOF) {
		return nil, d.fail(err)
	}
	return v, nil
}

// ParseNumber converts JSON number text into int64 or float64.
func ParseNumber(text string) (any, error) {
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// decoder tracks the pointer of the value under construction.
type decoder struct {
	src  TokenSource
	path []string
}

func (d *decoder) next() (Token, error) { return d.src.NextToken() }

// fail converts a source error into an IssueError at the current pointer.
// Errors that already carry an issue (enforcement) pass through.
func (d *decoder) fail(err error) error {
	var ie IssueError
	if errors.As(err, &ie) {
		return err
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	p := "/"
	if len(d.path) > 0 {
		p = "/" + strings.Join(d.path, "/")
	}
	return IssueError{SimpleIssue{Code: "parse_error", Path: p, Message: err.Error()}}
}

func (d *decoder) value(tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return d.object()
	case KindBeginArray:
		return d.array()
	case KindString:
		return tok.String, nil
	case KindNumber:
		n, err := ParseNumber(tok.Number)
		if err != nil {
			return nil, d.fail(err)
		}
		return n, nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	}
	return nil, d.fail(fmt.Errorf("unexpected token kind %d", tok.Kind))
}

func (d *decoder) object() (any, error) {
	m := make(map[string]any)
	for {
		tok, err := d.next()
		if err != nil {
			return nil, d.fail(err)
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, d.fail(errors.New("expected object key"))
		}
		d.path = append(d.path, pointerEscaper.Replace(tok.String))
		vt, err := d.next()
		if err != nil {
			return nil, d.fail(err)
		}
		v, err := d.value(vt)
		if err != nil {
			return nil, err
		}
		d.path = d.path[:len(d.path)-1]
		m[tok.String] = v
	}
}

func (d *decoder) array() (any, error) {
	arr := []any{}
	for {
		d.path = append(d.path, strconv.Itoa(len(arr)))
		tok, err := d.next()
		if err != nil {
			return nil, d.fail(err)
		}
		if tok.Kind == KindEndArray {
			d.path = d.path[:len(d.path)-1]
			return arr, nil
		}
		v, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		d.path = d.path[:len(d.path)-1]
		arr = append(arr, v)
	}
}
