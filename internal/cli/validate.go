package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/chainq/internal/compiler"
	"github.com/roach88/chainq/internal/qerr"
	"github.com/roach88/chainq/internal/querymodel"
	"github.com/roach88/chainq/internal/structure"
)

// ValidationIssue is one problem found in a specs directory.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Queries  int               `json:"queries"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate specs and the query models they produce",
		Long: `Validate CUE query specs.

Compiles every schema, source, and query, checks that names resolve
(sources, item types, members, operators), then parses each query and
checks the resulting model is fully resolved. With --strict, model
warnings count as errors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter, err := newFormatter(opts, cmd)
	if err != nil {
		return err
	}

	loadResult, loadErrors := LoadSpecs(specsDir, compiler.LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	result := validateLoaded(loadResult, loadErrors, opts.Strict, opts.Logger(formatter.GetErrWriter()))
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateLoaded runs every check over a loaded spec.
func validateLoaded(loadResult *LoadResult, loadErrors []error, strict bool, logger *slog.Logger) ValidationResult {
	result := ValidationResult{Queries: len(loadResult.Spec.Queries)}

	for _, err := range loadErrors {
		loadErr := convertCompileError(err, "load")
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   loadErr.Field,
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    lineOf(loadErr),
		})
	}

	for _, verr := range compiler.Validate(loadResult.Spec) {
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   verr.Field,
			Message: verr.Message,
			Code:    verr.Code,
		})
	}

	parser, err := structure.NewQueryParser(structure.WithLogger(logger))
	if err != nil {
		result.Errors = append(result.Errors, ValidationIssue{Field: "parser", Message: err.Error(), Code: ErrCodeGeneric})
		return result
	}

	for _, def := range loadResult.Spec.Queries {
		field := "query." + def.Name
		logger.Debug("validating query", "query", def.Name)

		model, err := parser.Parse(def.Root, def.ItemType)
		if err != nil {
			code := string(qerr.CodeOf(err))
			if code == "" {
				code = ErrCodeGeneric
			}
			result.Errors = append(result.Errors, ValidationIssue{Field: field, Message: err.Error(), Code: code})
			continue
		}

		for _, warning := range querymodel.Validate(model).Warnings {
			if strict {
				result.Errors = append(result.Errors, ValidationIssue{Field: field, Message: warning, Code: ErrCodeModelWarning})
				continue
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", field, warning))
		}
	}

	if result.Queries == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   "specs",
			Message: "no queries found in specs",
			Code:    ErrCodeNoQueries,
		})
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func lineOf(e *LoadError) int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d queries)\n", result.Queries)
	for _, warning := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", warning)
	}
	return nil
}

// outputValidateError outputs a single command-level error (exit code 2).
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors (exit code 1).
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	first := result.Errors[0]
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))

	if formatter.Format == "json" {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    first.Code,
				Message: first.Message,
			},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range result.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Code, issue.Field, issue.Message)
	}

	return failure
}

// ValidateSpecsDir validates all specs in a directory.
// This is a helper function for external callers.
func ValidateSpecsDir(specsDir string, strict bool) (ValidationResult, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, compiler.LoadModeCollectAll)
	if loadResult == nil {
		return ValidationResult{}, loadErrors[0]
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return validateLoaded(loadResult, loadErrors, strict, logger), nil
}
