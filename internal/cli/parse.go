package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chainq/internal/compiler"
	"github.com/roach88/chainq/internal/qerr"
	"github.com/roach88/chainq/internal/querymodel"
	"github.com/roach88/chainq/internal/querytext"
	"github.com/roach88/chainq/internal/structure"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Multiline bool
}

// ParsedQuery is the outcome of parsing one query.
type ParsedQuery struct {
	Name     string          `json:"name"`
	Rendered string          `json:"rendered,omitempty"`
	Model    json.RawMessage `json:"model,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Error    *CLIError       `json:"error,omitempty"`
}

// ParseResult holds the parse command's output.
type ParseResult struct {
	Queries []ParsedQuery `json:"queries"`
	Failed  int           `json:"failed"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <specs-dir> [query...]",
		Short: "Parse queries into query models",
		Long: `Parse the queries declared in a CUE specs directory and print their
query models.

With no query names every query is parsed, in declaration order.

Exit codes:
  0 - Every query parsed
  1 - One or more queries failed to parse (or had warnings with --strict)
  2 - Command error (invalid paths, unknown query, etc.)

Examples:
  chainq parse ./specs
  chainq parse ./specs adults enrolled --multiline
  chainq parse ./specs --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Multiline, "multiline", false, "render one clause per line")

	return cmd
}

func runParse(opts *ParseOptions, specsDir string, names []string, cmd *cobra.Command) error {
	formatter, err := newFormatter(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	loadResult, loadErrors := LoadSpecs(specsDir, compiler.LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if !errors.As(loadErrors[0], &loadErr) {
			loadErr = &LoadError{Code: ErrCodeGeneric, Message: loadErrors[0].Error()}
		}
		_ = formatter.Error(loadErr.Code, loadErr.Error(), nil)
		return NewExitError(ExitCommandError, loadErr.Error())
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	defs, err := selectQueries(loadResult.Spec, names)
	if err != nil {
		_ = formatter.Error(ErrCodeNoQuery, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	parser, err := structure.NewQueryParser(
		structure.WithNameGenerator(opts.NameGenerator()),
		structure.WithLogger(opts.Logger(formatter.GetErrWriter())),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create parser", err)
	}

	var renderOpts []querytext.Option
	if opts.Multiline {
		renderOpts = append(renderOpts, querytext.Multiline())
	}

	result := ParseResult{Queries: make([]ParsedQuery, 0, len(defs))}
	for _, def := range defs {
		formatter.VerboseLog("Parsing query: %s", def.Name)
		parsed := parseQuery(parser, def, renderOpts)
		if parsed.Error != nil || (opts.Strict && len(parsed.Warnings) > 0) {
			result.Failed++
		}
		result.Queries = append(result.Queries, parsed)
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    "E_PARSE_FAILED",
				Message: fmt.Sprintf("%d query(ies) failed", result.Failed),
			}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		outputParseText(formatter, result, opts.Multiline)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d query(ies) failed", result.Failed))
	}
	return nil
}

// selectQueries returns the named queries, or every query when names is empty.
func selectQueries(spec *compiler.Spec, names []string) ([]*compiler.QueryDef, error) {
	if len(names) == 0 {
		return spec.Queries, nil
	}
	defs := make([]*compiler.QueryDef, 0, len(names))
	for _, name := range names {
		def, ok := spec.Query(name)
		if !ok {
			return nil, fmt.Errorf("query %q not found in specs", name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseQuery(parser *structure.QueryParser, def *compiler.QueryDef, renderOpts []querytext.Option) ParsedQuery {
	parsed := ParsedQuery{Name: def.Name}

	model, err := parser.Parse(def.Root, def.ItemType)
	if err != nil {
		code := string(qerr.CodeOf(err))
		if code == "" {
			code = ErrCodeGeneric
		}
		parsed.Error = &CLIError{Code: code, Message: err.Error()}
		return parsed
	}

	parsed.Rendered = querytext.Render(model, renderOpts...)
	if data, err := querytext.MarshalSnapshot(model); err == nil {
		parsed.Model = data
	}
	parsed.Warnings = querymodel.Validate(model).Warnings
	return parsed
}

func outputParseText(formatter *OutputFormatter, result ParseResult, multiline bool) {
	w := formatter.Writer
	for _, q := range result.Queries {
		if q.Error != nil {
			fmt.Fprintf(w, "✗ %s: %s\n", q.Name, q.Error.Message)
			continue
		}
		if multiline {
			fmt.Fprintf(w, "%s:\n  %s\n", q.Name, strings.ReplaceAll(q.Rendered, "\n", "\n  "))
		} else {
			fmt.Fprintf(w, "%s: %s\n", q.Name, q.Rendered)
		}
		for _, warning := range q.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}
}
