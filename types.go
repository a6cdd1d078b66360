package tsspec

// UnknownPolicy controls how unknown keys are handled.
type UnknownPolicy int

const (
	UnknownStrict      UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownStrip                            // Drop unknown keys.
	UnknownPassthrough                      // Preserve unknown keys on the model.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrip:
		return "strip"
	case UnknownPassthrough:
		return "passthrough"
	default:
		return "strict"
	}
}

// Severity expresses the severity level for input enforcement.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseSeverity maps "ignore", "warn" and "error" onto a Severity. Unknown
// values map to Error.
func ParseSeverity(s string) Severity {
	switch s {
	case "ignore":
		return Ignore
	case "warn":
		return Warn
	default:
		return Error
	}
}

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Ignore, Warn or Error (duplicate JSON/YAML keys).
}

// ParseOpt bundles decoding and resolution options.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // 0 disables the check.
	MaxBytes   int64 // 0 disables the check.
	FailFast   bool
}

// DefaultParseOpt rejects duplicate keys and caps nesting at 64 levels.
func DefaultParseOpt() ParseOpt {
	return ParseOpt{Strictness: Strictness{OnDuplicateKey: Error}, MaxDepth: 64}
}
