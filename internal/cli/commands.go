package cli

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/tensorstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// load decodes a JSON or YAML file and resolves it against category.
func (a *app) load(cmd *cobra.Command, name, category string) (*g.Model, error) {
	data, err := a.readInput(cmd, name)
	if err != nil {
		return nil, err
	}
	raw, err := a.validator.Decode(cmd.Context(), data)
	if err != nil {
		return nil, invalidErr(err)
	}
	m, err := a.validator.Resolve(cmd.Context(), category, raw)
	if err != nil {
		return nil, invalidErr(err)
	}
	return m, nil
}

// loadRaw decodes a JSON or YAML file into a mapping.
func (a *app) loadRaw(cmd *cobra.Command, name string) (map[string]any, error) {
	data, err := a.readInput(cmd, name)
	if err != nil {
		return nil, err
	}
	raw, err := a.validator.Decode(cmd.Context(), data)
	if err != nil {
		return nil, invalidErr(err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a mapping at the top level", name)
	}
	return obj, nil
}

func (a *app) validateCmd() *cobra.Command {
	var (
		category string
		output   string
		watch    bool
	)
	cmd := &cobra.Command{
		Use:     "validate [file...]",
		Short:   "Validate spec files (JSON or YAML, - for stdin)",
		Example: "tsspec validate spec.json other.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			if output != "text" && output != "json" {
				return fmt.Errorf("unknown output format %q (want text or json)", output)
			}
			if _, ok := tensorstore.Registry.Category(category); !ok {
				return fmt.Errorf("unknown category %q (known: %v)", category, tensorstore.Categories())
			}
			run := func(files []string) error { return a.validateFiles(cmd, files, category, output) }
			err := run(args)
			if !watch {
				return err
			}
			if err != nil && !isInvalid(err) {
				return err
			}
			return a.watch(cmd.Context(), args, run)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "driver", "Category to validate against (driver, kvstore, codec, ...)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-validate when the files change")
	return cmd
}

func (a *app) validateFiles(cmd *cobra.Command, files []string, category, output string) error {
	var (
		results []result
		failed  bool
	)
	for _, name := range files {
		m, err := a.load(cmd, name, category)
		if err != nil && !isInvalid(err) {
			return err
		}
		r := newResult(name, m, unwrapInvalid(err))
		failed = failed || !r.Valid
		results = append(results, r)
		a.logger.Debug("validated", zap.String("source", name), zap.Bool("valid", r.Valid))
	}
	if output == "json" {
		if err := printJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if err := printResult(cmd.OutOrStdout(), r); err != nil {
				return err
			}
		}
	}
	if failed {
		return ErrInvalid
	}
	return nil
}

func (a *app) normalizeCmd() *cobra.Command {
	var (
		category string
		output   string
		defaults bool
	)
	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Short: "Print the validated spec with unset defaults removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(cmd, args[0], category)
			if err != nil {
				return a.reportLoad(cmd, args[0], err)
			}
			if defaults {
				return printJSON(cmd.OutOrStdout(), g.Encode(m, g.IncludeDefaults()))
			}
			return printModel(cmd.OutOrStdout(), m, output)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "driver", "Category to validate against")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	cmd.Flags().BoolVar(&defaults, "include-defaults", false, "Emit every default value (JSON only)")
	return cmd
}

func (a *app) mergeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge <base> <override>",
		Short: "Overlay a partial spec onto a base spec and validate the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := a.loadRaw(cmd, args[0])
			if err != nil {
				return a.reportLoad(cmd, args[0], err)
			}
			override, err := a.loadRaw(cmd, args[1])
			if err != nil {
				return a.reportLoad(cmd, args[1], err)
			}
			m, err := a.validator.Merge(cmd.Context(), base, override)
			if err != nil {
				return a.reportLoad(cmd, args[0]+" + "+args[1], invalidErr(err))
			}
			return printModel(cmd.OutOrStdout(), m, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	return cmd
}

func (a *app) diffCmd() *cobra.Command {
	var ignore []string
	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Compare two specs after normalization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := a.loadRaw(cmd, args[0])
			if err != nil {
				return a.reportLoad(cmd, args[0], err)
			}
			right, err := a.loadRaw(cmd, args[1])
			if err != nil {
				return a.reportLoad(cmd, args[1], err)
			}
			ctx := cmd.Context()
			same, err := a.validator.Compare(ctx, left, right, ignore...)
			if err != nil {
				return a.reportLoad(cmd, args[0]+" / "+args[1], invalidErr(err))
			}
			if same {
				fmt.Fprintln(cmd.OutOrStdout(), green("specs are equivalent"))
				return nil
			}
			diff, err := a.validator.Diff(ctx, left, right)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return ErrDiffer
		},
	}
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Dotted member paths to ignore (e.g. kvstore.path)")
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Summarize a driver spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(cmd, args[0], "driver")
			if err != nil {
				return a.reportLoad(cmd, args[0], err)
			}
			s := tensorstore.Info(m)
			if output == "json" {
				return printJSON(cmd.OutOrStdout(), s)
			}
			return printSummary(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

func (a *app) driversCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "List the registered drivers and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var caps []any
			for _, name := range tensorstore.Drivers() {
				c, _ := tensorstore.Capabilities(name)
				caps = append(caps, c)
			}
			if output == "json" {
				return printJSON(cmd.OutOrStdout(), caps)
			}
			table := newTable(cmd.OutOrStdout())
			table.Header("Driver", "KvStore", "Chunked", "Compression", "Metadata", "Description")
			for _, name := range tensorstore.Drivers() {
				c, _ := tensorstore.Capabilities(name)
				row := []string{c.Driver, yesNo(c.KvStore), yesNo(c.Chunked), yesNo(c.Compression), c.MetadataFormat, c.Description}
				if err := table.Append(row); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [category]",
		Short:     "Print the JSON Schema of a category (default driver)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: tensorstore.Categories(),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := "driver"
			if len(args) == 1 {
				category = args[0]
			}
			s, err := tensorstore.JSONSchema(category)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndentWithOption(s, "", "  ", json.DisableHTMLEscape())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tsspec %s\n", Version)
		},
	}
}

// reportLoad prints validation failures and passes other errors through.
func (a *app) reportLoad(cmd *cobra.Command, source string, err error) error {
	if !isInvalid(err) {
		return err
	}
	if perr := printResult(cmd.OutOrStdout(), newResult(source, nil, unwrapInvalid(err))); perr != nil {
		return perr
	}
	return ErrInvalid
}
