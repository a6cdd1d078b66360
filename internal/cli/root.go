// Package cli implements the tsspec command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/reoring/tsspec/i18n"
	"github.com/reoring/tsspec/metrics"
	"github.com/reoring/tsspec/tensorstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

// ErrInvalid is returned when at least one input failed validation; the
// issues have already been printed.
var ErrInvalid = errors.New("validation failed")

// ErrDiffer is returned by diff when the specs are not equivalent.
var ErrDiffer = errors.New("specs differ")

var rootExamples = `
  Validate a spec file:
	tsspec validate spec.json

  Validate a kvstore spec and keep watching it:
	tsspec validate --category kvstore --watch store.yaml

  Print the normalized form as YAML:
	tsspec normalize -o yaml spec.json
`

type app struct {
	logger    *zap.Logger
	cfg       Config
	validator *tensorstore.Validator
	registry  *prometheus.Registry
}

// Root builds the command tree. A nil logger is built from --log-level.
func Root(ctx context.Context, logger *zap.Logger) *cobra.Command {
	cmd, _ := newRoot(ctx, logger)
	return cmd
}

func newRoot(ctx context.Context, logger *zap.Logger) (*cobra.Command, *app) {
	a := &app{logger: logger}
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "tsspec",
		Short:         "Validate and normalize TensorStore specs",
		Example:       rootExamples,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, configPath)
		},
	}
	rootCmd.SetContext(ctx)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate(`{{with .Version}}{{printf "tsspec %s" .}}{{end}}{{"\n"}}`)

	def := DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", DefaultConfigPath, "Path to the YAML config file")
	flags.String("log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("lang", def.Language, "Language of issue messages (en, ja)")
	flags.Bool("fail-fast", def.FailFast, "Stop at the first issue")
	flags.Int("max-depth", def.MaxDepth, "Maximum nesting depth of input documents (0 disables)")
	flags.Int64("max-bytes", def.MaxBytes, "Maximum size of input documents in bytes (0 disables)")
	flags.String("duplicate-keys", def.DuplicateKeys, "Handling of duplicate keys (ignore, warn, error)")
	flags.Bool("color", true, "Colorize output")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		a.validateCmd(),
		a.normalizeCmd(),
		a.mergeCmd(),
		a.diffCmd(),
		a.infoCmd(),
		a.driversCmd(),
		a.schemaCmd(),
		a.versionCmd(),
	)
	return rootCmd, a
}

// setup merges the config file and the flags, then builds the logger and
// the validator.
func (a *app) setup(cmd *cobra.Command, configPath string) error {
	flags := cmd.Flags()
	cfg, err := LoadConfig(configPath, flags.Changed("config"))
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("lang") {
		cfg.Language, _ = flags.GetString("lang")
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast, _ = flags.GetBool("fail-fast")
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("max-bytes") {
		cfg.MaxBytes, _ = flags.GetInt64("max-bytes")
	}
	if flags.Changed("duplicate-keys") {
		cfg.DuplicateKeys, _ = flags.GetString("duplicate-keys")
	}
	if flags.Changed("color") {
		c, _ := flags.GetBool("color")
		cfg.Color = &c
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	a.cfg = cfg

	i18n.SetLanguage(cfg.Language)
	if cfg.Color != nil {
		color.NoColor = !*cfg.Color
	}
	if a.logger == nil {
		if a.logger, err = newLogger(cfg.LogLevel); err != nil {
			return err
		}
	}

	opts := []tensorstore.Option{
		tensorstore.WithLogger(a.logger),
		tensorstore.WithParseOpt(cfg.ParseOpt()),
	}
	if cfg.MetricsFile != "" {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, tensorstore.WithObserver(metrics.NewWithRegistry(a.registry)))
	}
	a.validator = tensorstore.New(opts...)
	a.logger.Debug("initialized with configuration", zap.Any("config", cfg))
	return nil
}

// finish writes the metrics file, if one was requested.
func (a *app) finish() error {
	if a.registry == nil {
		return nil
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsFile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Execute runs the command line with args and returns the process exit
// code: 0 on success, 1 when validation failed or specs differ, 2 on usage
// and I/O errors.
func Execute(ctx context.Context, logger *zap.Logger, args []string, stdout, stderr io.Writer) int {
	rootCmd, a := newRoot(ctx, logger)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	if ferr := a.finish(); ferr != nil && err == nil {
		err = ferr
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrDiffer):
		return 1
	}
	fmt.Fprintln(stderr, color.New(color.FgRed).Sprint("Error: ")+err.Error())
	return 2
}
