package tsspec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"

	eng "github.com/reoring/tsspec/internal/engine"
)

var errTooLarge = errors.New("input exceeds max bytes")

// DecodeJSON decodes a single JSON document into a raw value
// (map[string]any, []any, string, int64, float64, bool or nil).
func DecodeJSON(ctx context.Context, data []byte, opts ...ParseOpt) (any, error) {
	opt := pickOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, truncatedIssue(opt.MaxBytes)
	}
	return DecodeSource(ctx, JSONBytes(data), opt)
}

// DecodeJSONReader decodes a single JSON document from r.
func DecodeJSONReader(ctx context.Context, r io.Reader, opts ...ParseOpt) (any, error) {
	opt := pickOpt(opts)
	var lr *limitReader
	if opt.MaxBytes > 0 {
		lr = &limitReader{r: r, max: opt.MaxBytes}
		r = lr
	}
	v, err := DecodeSource(ctx, JSONReader(r), opt)
	if err != nil && lr != nil && lr.n > lr.max {
		return nil, truncatedIssue(opt.MaxBytes)
	}
	return v, err
}

// DecodeSource drains a token Source into a raw value, applying the
// enforcement configured in opt.
func DecodeSource(ctx context.Context, src Source, opt ParseOpt) (any, error) {
	enforced := EnforceSource(src, opt, func(it Issue) { warn(ctx, it) })
	v, err := eng.DecodeDocument(enforced)
	if err != nil {
		return nil, decodeError(err)
	}
	return v, nil
}

// DecodeYAML decodes the first YAML document in data. Duplicate mapping keys
// follow opt.Strictness like JSON input does.
func DecodeYAML(ctx context.Context, data []byte, opts ...ParseOpt) (any, error) {
	opt := pickOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, truncatedIssue(opt.MaxBytes)
	}
	r := NewStrictYAMLReader(bytes.NewReader(data), opt)
	r.warn = func(it Issue) { warn(ctx, it) }
	v, err := r.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, Issues{{Path: "/", Code: CodeParseError, Message: "empty YAML document", Cause: err}}
		}
		return nil, err
	}
	return v, nil
}

// Decode sniffs the format: input whose first non-space byte is '{' or '['
// is JSON, anything else YAML.
func Decode(ctx context.Context, data []byte, opts ...ParseOpt) (any, error) {
	if LooksLikeJSON(data) {
		return DecodeJSON(ctx, data, opts...)
	}
	return DecodeYAML(ctx, data, opts...)
}

// LooksLikeJSON reports whether data starts with a JSON object or array.
func LooksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func pickOpt(opts []ParseOpt) ParseOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return DefaultParseOpt()
}

func decodeError(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return Issues{{Path: ie.Path, Code: ie.Code, Message: ie.Message, Cause: err}}
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
}

func truncatedIssue(max int64) Issues {
	return Issues{{Path: "/", Code: CodeTruncated, Message: "input exceeds " + strconv.FormatInt(max, 10) + " bytes", Expected: "<= " + strconv.FormatInt(max, 10) + " bytes"}}
}

type limitReader struct {
	r   io.Reader
	n   int64
	max int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > l.max {
		return n, errTooLarge
	}
	return n, err
}
