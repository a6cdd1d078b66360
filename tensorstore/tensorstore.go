// Package tensorstore is the entry point for validating TensorStore specs.
//
// A Validator resolves raw mappings, JSON or YAML documents against the
// registered categories and returns immutable models:
//
//	m, err := tensorstore.Validate(ctx, map[string]any{
//		"driver":  "zarr",
//		"kvstore": "file:///tmp/data",
//	})
//
// Errors are tsspec.Issues carrying a JSON Pointer per violation.
package tensorstore

import (
	"context"
	"time"

	tsspec "github.com/reoring/tsspec"
	"github.com/reoring/tsspec/codec"
	"github.com/reoring/tsspec/driver"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/kvstore"
	"go.uber.org/zap"
)

// Registry holds every shipped category.
var Registry = g.NewRegistry(driver.Category, kvstore.Category, codec.Codec)

// Validator resolves specs with a fixed set of options. It is safe for
// concurrent use.
type Validator struct {
	logger *zap.Logger
	obs    g.Observer
	opt    tsspec.ParseOpt
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger logs every resolution at debug level and failures at warn.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithObserver reports every resolution to obs, e.g. a metrics.Collector.
func WithObserver(obs g.Observer) Option { return func(v *Validator) { v.obs = obs } }

// WithParseOpt sets the decoding options for JSON and YAML input.
func WithParseOpt(opt tsspec.ParseOpt) Option { return func(v *Validator) { v.opt = opt } }

// WithFailFast stops resolution at the first issue.
func WithFailFast(enabled bool) Option { return func(v *Validator) { v.opt.FailFast = enabled } }

// New returns a Validator. Without options it does not log, rejects
// duplicate keys and reports every issue.
func New(opts ...Option) *Validator {
	v := &Validator{logger: zap.NewNop(), opt: tsspec.DefaultParseOpt()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// ParseOpt returns the decoding options of v.
func (v *Validator) ParseOpt() tsspec.ParseOpt { return v.opt }

// Resolve validates raw against the named category.
func (v *Validator) Resolve(ctx context.Context, category string, raw any) (*g.Model, error) {
	cat, ok := Registry.Category(category)
	if !ok {
		return nil, &g.UnknownCategoryError{Name: category, Known: Registry.Names()}
	}
	return v.resolve(ctx, cat, raw)
}

// Validate validates a driver spec.
func (v *Validator) Validate(ctx context.Context, raw any) (*g.Model, error) {
	return v.resolve(ctx, driver.Category, raw)
}

// ValidateKvStore validates a kvstore spec or URL.
func (v *Validator) ValidateKvStore(ctx context.Context, raw any) (*g.Model, error) {
	return v.resolve(ctx, kvstore.Category, raw)
}

// ValidateJSON decodes a JSON document and validates it as a driver spec.
func (v *Validator) ValidateJSON(ctx context.Context, data []byte) (*g.Model, error) {
	raw, err := tsspec.DecodeJSON(v.context(ctx), data, v.opt)
	if err != nil {
		v.logger.Warn("decode failed", zap.String("format", "json"), zap.Error(err))
		return nil, err
	}
	return v.Validate(ctx, raw)
}

// ValidateYAML decodes a YAML document and validates it as a driver spec.
func (v *Validator) ValidateYAML(ctx context.Context, data []byte) (*g.Model, error) {
	raw, err := tsspec.DecodeYAML(v.context(ctx), data, v.opt)
	if err != nil {
		v.logger.Warn("decode failed", zap.String("format", "yaml"), zap.Error(err))
		return nil, err
	}
	return v.Validate(ctx, raw)
}

// Decode decodes a JSON or YAML document, sniffing the format.
func (v *Validator) Decode(ctx context.Context, data []byte) (any, error) {
	return tsspec.Decode(v.context(ctx), data, v.opt)
}

func (v *Validator) context(ctx context.Context) context.Context {
	if v.opt.FailFast {
		ctx = tsspec.WithFailFast(ctx, true)
	}
	if v.obs != nil {
		ctx = g.WithObserver(ctx, v.obs)
	}
	return tsspec.WithWarnings(ctx, func(it tsspec.Issue) {
		v.logger.Warn("input warning", zap.String("path", it.Path), zap.String("code", it.Code), zap.String("message", it.Message))
	})
}

func (v *Validator) resolve(ctx context.Context, cat *g.Category, raw any) (*g.Model, error) {
	start := time.Now()
	m, err := cat.Resolve(v.context(ctx), raw)
	logger := v.logger.With(zap.String("category", cat.Name()))
	if err != nil {
		iss, _ := tsspec.AsIssues(err)
		logger.Warn("resolve failed", zap.Int("issues", len(iss)), zap.Error(err))
		return nil, err
	}
	logger.Debug("resolved",
		zap.String("variant", m.Tag()),
		zap.Duration("duration", time.Since(start)),
	)
	return m, nil
}

// Summary is a flat description of a driver spec.
type Summary = driver.Summary

// Info summarizes a resolved driver model.
func Info(m *g.Model) Summary { return driver.Summarize(m) }

// Capabilities returns what a driver supports.
func Capabilities(name string) (driver.Capabilities, bool) { return driver.CapabilitiesOf(name) }

// Drivers returns the registered driver names, sorted.
func Drivers() []string { return driver.Drivers() }

// Categories returns the registered category names, sorted.
func Categories() []string { return Registry.Names() }

var std = New()

// Default returns the package-level Validator used by the shortcuts below.
func Default() *Validator { return std }

// Validate validates a driver spec with the default Validator.
func Validate(ctx context.Context, raw any) (*g.Model, error) { return std.Validate(ctx, raw) }

// Resolve validates raw against the named category with the default Validator.
func Resolve(ctx context.Context, category string, raw any) (*g.Model, error) {
	return std.Resolve(ctx, category, raw)
}

// ValidateKvStore validates a kvstore spec or URL with the default Validator.
func ValidateKvStore(ctx context.Context, raw any) (*g.Model, error) {
	return std.ValidateKvStore(ctx, raw)
}

// ValidateJSON validates a JSON driver spec with the default Validator.
func ValidateJSON(ctx context.Context, data []byte) (*g.Model, error) {
	return std.ValidateJSON(ctx, data)
}

// ValidateYAML validates a YAML driver spec with the default Validator.
func ValidateYAML(ctx context.Context, data []byte) (*g.Model, error) {
	return std.ValidateYAML(ctx, data)
}

// Normalize resolves a driver spec and serializes it back.
func Normalize(ctx context.Context, raw any) (map[string]any, error) { return std.Normalize(ctx, raw) }

// Merge overlays override onto base with the default Validator.
func Merge(ctx context.Context, base, override map[string]any) (*g.Model, error) {
	return std.Merge(ctx, base, override)
}

// Compare reports whether two driver specs normalize to the same mapping.
func Compare(ctx context.Context, a, b any, ignore ...string) (bool, error) {
	return std.Compare(ctx, a, b, ignore...)
}

// Diff renders the difference between two normalized driver specs.
func Diff(ctx context.Context, a, b any) (string, error) { return std.Diff(ctx, a, b) }
