package tsspec

import (
	"io"
	"sync"

	eng "github.com/reoring/tsspec/internal/engine"
	"github.com/reoring/tsspec/source/gojson"
)

// TokenKind enumerates JSON token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token = eng.Token

// Source abstracts over token-producing inputs.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The default
// implementation is backed by goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = defaultJSONDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json driver.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = defaultJSONDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the active driver.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

type defaultJSONDriver struct{}

func (defaultJSONDriver) NewReader(r io.Reader) Source { return gojson.NewReader(r) }
func (defaultJSONDriver) NewBytes(b []byte) Source     { return gojson.NewBytes(b) }
func (defaultJSONDriver) Name() string                 { return "go-json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// EnforceSource wraps a Source with duplicate key, depth and size enforcement.
// Duplicate keys under Severity Warn are forwarded to sink.
func EnforceSource(s Source, opt ParseOpt, sink func(Issue)) Source {
	var forward func(eng.SimpleIssue)
	if sink != nil {
		forward = func(si eng.SimpleIssue) {
			sink(Issue{Path: si.Path, Code: si.Code, Message: si.Message})
		}
	}
	return eng.WrapWithEnforcement(s, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink:   forward,
	})
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}
