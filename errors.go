package tsspec

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeUnknownKey           = "unknown_key"
	CodeDuplicateKey         = "duplicate_key"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeTooShort             = "too_short"
	CodeTooLong              = "too_long"
	CodeLengthMismatch       = "length_mismatch"
	CodePattern              = "pattern"
	CodeInvalidEnum          = "invalid_enum"
	CodeInvalidFormat        = "invalid_format"
	CodeInconsistent         = "inconsistent"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeParseError           = "parse_error"
	CodeTruncated            = "truncated"
)

// Sentinel kinds. Issues matches them with errors.Is when any contained issue
// belongs to the kind.
var (
	ErrTypeMismatch         = errors.New("tsspec: type mismatch")
	ErrMissingDiscriminator = errors.New("tsspec: missing discriminator")
	ErrUnknownVariant       = errors.New("tsspec: unknown variant")
	ErrMissingField         = errors.New("tsspec: missing field")
	ErrUnknownField         = errors.New("tsspec: unknown field")
	ErrConstraintViolation  = errors.New("tsspec: constraint violation")
	ErrParse                = errors.New("tsspec: parse error")
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /metadata/chunks/1).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints such as "did you mean".
	Cause   error  // Optional: underlying error.
	// Expected describes the violated constraint ("<= 9", "one of [C F]").
	Expected string
	// Value is the offending input value, when there is one.
	Value any
	// Params carries structured parameters for i18n and observability.
	Params map[string]any
}

// Kind maps the issue code onto its sentinel error.
func (it Issue) Kind() error {
	switch it.Code {
	case CodeInvalidType:
		return ErrTypeMismatch
	case CodeDiscriminatorMissing:
		return ErrMissingDiscriminator
	case CodeDiscriminatorUnknown:
		return ErrUnknownVariant
	case CodeRequired:
		return ErrMissingField
	case CodeUnknownKey:
		return ErrUnknownField
	case CodeParseError, CodeDuplicateKey, CodeTruncated:
		return ErrParse
	default:
		return ErrConstraintViolation
	}
}

// Field renders the path in dotted form, e.g. metadata.compressor.clevel or
// metadata.chunks[1]. The root renders as "(root)".
func (it Issue) Field() string { return DottedPath(it.Path) }

// String renders "field: message".
func (it Issue) String() string {
	b := &strings.Builder{}
	b.WriteString(it.Field())
	b.WriteString(": ")
	if it.Message != "" {
		b.WriteString(it.Message)
	} else {
		b.WriteString(it.Code)
	}
	if it.Hint != "" {
		fmt.Fprintf(b, " (%s)", it.Hint)
	}
	return b.String()
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any issue belongs to the target sentinel kind.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if it.Kind() == target {
			return true
		}
	}
	return false
}

// HasCode reports whether an issue with the given code exists.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// At returns the issues whose path equals p.
func (iss Issues) At(p string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Path == p {
			out = append(out, it)
		}
	}
	return out
}

// Rebase prefixes every issue path with base (a JSON Pointer).
func (iss Issues) Rebase(base string) Issues {
	if base == "" || base == "/" {
		return iss
	}
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ToIssues converts any error into Issues, wrapping foreign errors as
// parse_error at the root.
func ToIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return iss
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}
}
