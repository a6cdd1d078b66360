package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	tsspec "github.com/reoring/tsspec"
	g "github.com/reoring/tsspec/dsl"
	"github.com/reoring/tsspec/tensorstore"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// issueReport is the JSON form of a tsspec.Issue.
type issueReport struct {
	Path     string `json:"path"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Expected string `json:"expected,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// result is the outcome of validating one input.
type result struct {
	Source  string        `json:"source"`
	Valid   bool          `json:"valid"`
	Variant string        `json:"variant,omitempty"`
	Error   string        `json:"error,omitempty"`
	Issues  []issueReport `json:"issues,omitempty"`
}

func newResult(source string, m *g.Model, err error) result {
	r := result{Source: source, Valid: err == nil}
	if m != nil {
		r.Variant = m.Tag()
	}
	if err == nil {
		return r
	}
	iss, ok := tsspec.AsIssues(err)
	if !ok {
		r.Error = err.Error()
		return r
	}
	for _, it := range iss {
		r.Issues = append(r.Issues, issueReport{
			Path:     it.Path,
			Field:    it.Field(),
			Code:     it.Code,
			Message:  it.Message,
			Expected: it.Expected,
			Hint:     it.Hint,
		})
	}
	return r
}

// printResult writes a human readable result: a status line and, for
// failures, a table of issues.
func printResult(w io.Writer, r result) error {
	if r.Valid {
		_, err := fmt.Fprintf(w, "%s %s (%s)\n", green("ok"), r.Source, r.Variant)
		return err
	}
	fmt.Fprintf(w, "%s %s\n", red("invalid"), r.Source)
	if r.Error != "" {
		_, err := fmt.Fprintf(w, "  %s\n", r.Error)
		return err
	}
	table := newTable(w)
	table.Header("Field", "Code", "Message", "Hint")
	for _, it := range r.Issues {
		if err := table.Append([]string{it.Field, it.Code, it.Message, yellow(it.Hint)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// newTable returns a borderless, left aligned table that never wraps cells.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{Borders: tw.BorderNone})),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndentWithOption(v, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// printModel writes a model as JSON or YAML.
func printModel(w io.Writer, m *g.Model, format string) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case "json":
		b, err = tensorstore.ToJSON(m, "  ")
	case "yaml":
		b, err = tensorstore.ToYAML(m)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(string(b), "\n"))
	return err
}

// printSummary writes a driver summary as a two column table.
func printSummary(w io.Writer, s tensorstore.Summary) error {
	table := newTable(w)
	rows := [][2]string{
		{"driver", s.Driver},
		{"kind", s.Kind},
		{"dtype", s.DType},
		{"shape", formatShape(s.Shape)},
		{"rank", formatRank(s.Rank)},
		{"kvstore", s.KvStore},
		{"path", s.Path},
		{"compression", s.Compression},
	}
	for _, r := range rows {
		if r[1] == "" {
			r[1] = "-"
		}
		if err := table.Append([]string{r[0], r[1]}); err != nil {
			return err
		}
	}
	return table.Render()
}

func formatShape(shape []int64) string {
	if shape == nil {
		return ""
	}
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatRank(r *int) string {
	if r == nil {
		return ""
	}
	return fmt.Sprint(*r)
}

// invalidErr wraps ErrInvalid so that the exit code reflects failure while
// keeping the underlying issues reachable with errors.As.
func invalidErr(err error) error {
	return errors.Join(ErrInvalid, err)
}

func isInvalid(err error) bool { return errors.Is(err, ErrInvalid) }

// unwrapInvalid strips the ErrInvalid marker added by invalidErr.
func unwrapInvalid(err error) error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range j.Unwrap() {
			if e != ErrInvalid {
				return e
			}
		}
	}
	return err
}
