// Package gojson tokenizes JSON input with goccy/go-json for the engine.
package gojson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/tsspec/internal/engine"
)

// container is an open object or array. awaitingKey is only meaningful for
// objects.
type container struct {
	object      bool
	awaitingKey bool
}

type source struct {
	dec   *j.Decoder
	stack []container
}

// NewReader wraps an io.Reader into an engine.TokenSource. Numbers are kept
// as their literal text so integers survive without float rounding.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

// Location reports the byte offset just past the last token read.
func (s *source) Location() int64 { return s.dec.InputOffset() }

func (s *source) top() *container {
	if len(s.stack) == 0 {
		return nil
	}
	return &s.stack[len(s.stack)-1]
}

// valueDone marks the end of an object member so the next string is a key.
func (s *source) valueDone() {
	if c := s.top(); c != nil && c.object {
		c.awaitingKey = true
	}
}

func (s *source) token(k eng.Kind) eng.Token {
	return eng.Token{Kind: k, Offset: s.dec.InputOffset()}
}

func (s *source) NextToken() (eng.Token, error) {
	raw, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, err
	}
	switch v := raw.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, container{object: true, awaitingKey: true})
			return s.token(eng.KindBeginObject), nil
		case '[':
			s.stack = append(s.stack, container{})
			return s.token(eng.KindBeginArray), nil
		case '}', ']':
			if n := len(s.stack); n > 0 {
				s.stack = s.stack[:n-1]
			}
			s.valueDone()
			if v == '}' {
				return s.token(eng.KindEndObject), nil
			}
			return s.token(eng.KindEndArray), nil
		}
	case string:
		if c := s.top(); c != nil && c.object && c.awaitingKey {
			c.awaitingKey = false
			t := s.token(eng.KindKey)
			t.String = v
			return t, nil
		}
		s.valueDone()
		t := s.token(eng.KindString)
		t.String = v
		return t, nil
	case bool:
		s.valueDone()
		t := s.token(eng.KindBool)
		t.Bool = v
		return t, nil
	case j.Number:
		s.valueDone()
		t := s.token(eng.KindNumber)
		t.Number = string(v)
		return t, nil
	case float64:
		s.valueDone()
		t := s.token(eng.KindNumber)
		t.Number = strconv.FormatFloat(v, 'g', -1, 64)
		return t, nil
	case nil:
		s.valueDone()
		return s.token(eng.KindNull), nil
	}
	return eng.Token{}, fmt.Errorf("gojson: unexpected token %v", raw)
}
