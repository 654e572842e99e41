package harness

import (
	"github.com/roach88/chainq/internal/ir"
	"github.com/roach88/chainq/internal/qerr"
	"github.com/roach88/chainq/internal/querymodel"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Query is the name of the parsed query.
	Query string `json:"query"`

	// Model is the parsed query model; nil when parsing failed.
	Model *querymodel.QueryModel `json:"-"`

	// Rendered is the text rendering of Model.
	Rendered string `json:"rendered,omitempty"`

	// Snapshot is the structural snapshot of Model.
	Snapshot ir.IRObject `json:"snapshot,omitempty"`

	// ErrorCode classifies the parse failure, if any.
	ErrorCode qerr.Code `json:"error_code,omitempty"`

	// ParseError is the parse failure message, if any.
	ParseError string `json:"parse_error,omitempty"`

	// Warnings are the query model validation warnings.
	Warnings []string `json:"warnings,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(query string) *Result {
	return &Result{
		Pass:   true,
		Query:  query,
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
