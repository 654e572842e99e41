// Package qerr defines the error taxonomy shared by the expression, query
// model, and parsing packages.
//
// Every failure raised while building or assembling a query model is an
// *Error carrying a Code. Callers classify errors with the Is* helpers,
// which use errors.As so wrapped errors still classify correctly.
//
// None of these failures are transient: parsing is pure computation over an
// immutable input, so nothing is ever retried.
package qerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code categorizes parse errors.
type Code string

const (
	// CodeUnsupportedOperator indicates a call-chain link matched no
	// registered operator signature. Raised at chain-build time.
	CodeUnsupportedOperator Code = "UNSUPPORTED_OPERATOR"

	// CodeUnresolvableReference indicates a lambda parameter could not be
	// traced to any node in the chain. Raised at first resolution attempt.
	CodeUnresolvableReference Code = "UNRESOLVABLE_REFERENCE"

	// CodeMalformedChain indicates the chain lacks a terminal projection or
	// grouping, or a node's required selector is absent. Raised at assembly.
	CodeMalformedChain Code = "MALFORMED_CHAIN"

	// CodeInvalidArgument indicates a public operation received a missing or
	// empty required argument. Raised before any mutation happens.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// Error is a parse failure with structured fields for diagnostics.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Operator identifies the offending call (formatted), when known.
	Operator string

	// Details contains additional context.
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Operator != "" {
		fmt.Fprintf(&b, " (operator=%s)", e.Operator)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, e.Details[k])
		}
	}
	return b.String()
}

// CodeOf returns the Code of err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// IsUnsupportedOperator returns true if err is an unsupported-operator error.
func IsUnsupportedOperator(err error) bool {
	return CodeOf(err) == CodeUnsupportedOperator
}

// IsUnresolvableReference returns true if err is an unresolvable-reference error.
func IsUnresolvableReference(err error) bool {
	return CodeOf(err) == CodeUnresolvableReference
}

// IsMalformedChain returns true if err is a malformed-chain error.
func IsMalformedChain(err error) bool {
	return CodeOf(err) == CodeMalformedChain
}

// IsInvalidArgument returns true if err is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == CodeInvalidArgument
}

// UnsupportedOperator creates an Error for a call no registered signature matches.
func UnsupportedOperator(call, reason string) *Error {
	return &Error{
		Code:     CodeUnsupportedOperator,
		Message:  reason,
		Operator: call,
	}
}

// UnresolvableReference creates an Error for a parameter that could not be
// traced to a producing node.
func UnresolvableReference(parameter, context string) *Error {
	return &Error{
		Code:    CodeUnresolvableReference,
		Message: fmt.Sprintf("parameter %q cannot be traced to any node in the chain", parameter),
		Details: map[string]string{"context": context},
	}
}

// MalformedChain creates an Error for a structurally invalid chain.
func MalformedChain(format string, args ...any) *Error {
	return &Error{
		Code:    CodeMalformedChain,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidArgument creates an Error for a missing or empty required argument.
func InvalidArgument(argument, operation string) *Error {
	return &Error{
		Code:    CodeInvalidArgument,
		Message: fmt.Sprintf("%s: argument %q is required", operation, argument),
		Details: map[string]string{"argument": argument},
	}
}
