package querymodel

import (
	"fmt"

	"github.com/roach88/chainq/internal/expression"
)

// ValidationResult contains the consistency analysis of a query model.
type ValidationResult struct {
	// IsResolved indicates every expression refers only to clauses of this
	// model and no lambda parameter or transparent identifier is left.
	IsResolved bool

	// Warnings lists the problems found. Empty when IsResolved is true.
	Warnings []string
}

// Validate checks that a model is fully resolved.
//
// Rules:
//  1. No free parameters - every lambda parameter was replaced by a source reference
//  2. No composite member access - transparent identifiers were flattened away
//  3. No dangling references - every source reference points at a from or
//     join clause of this model
//  4. No empty order-by clauses
//
// A model produced by the parser always validates; models built or mutated
// by hand may not. Validate is a pure function with no side effects.
func Validate(m *QueryModel) ValidationResult {
	v := &validator{
		warnings: []string{},
		known:    make(map[expression.Referent]bool),
	}
	v.validateModel(m)

	return ValidationResult{
		IsResolved: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
	known    map[expression.Referent]bool
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateModel(m *QueryModel) {
	if m == nil {
		v.addWarning("nil query model")
		return
	}
	if m.MainFromClause == nil {
		v.addWarning("query model has no main from clause")
		return
	}
	if m.SelectOrGroupClause == nil {
		v.addWarning("query model has no select or group clause")
	}

	for _, r := range m.Referents() {
		v.known[r] = true
	}

	for _, c := range m.Clauses() {
		if ob, ok := c.(*OrderByClause); ok && ob.Orderings.Len() == 0 {
			v.addWarning("order-by clause has no orderings")
		}
	}

	// The main source is a data source, not a lambda body.
	for _, e := range m.Expressions() {
		if _, isSource := e.(*expression.QuerySource); isSource {
			continue
		}
		v.validateExpr(e)
	}
}

func (v *validator) validateExpr(e expression.Expr) {
	text := expression.Format(e)

	// Rule 1: No free parameters
	for _, p := range expression.FreeParameters(e) {
		v.addWarning("unresolved parameter '%s' in %s", p.Name, text)
	}

	// Rule 2: No member access through a composite
	if expression.AccessesComposite(e) {
		v.addWarning("transparent identifier left in %s", text)
	}

	// Rule 3: No dangling references
	for _, r := range expression.References(e) {
		if !v.known[r] {
			v.addWarning("reference to [%s] does not point at a clause of this model in %s", r.ReferenceName(), text)
		}
	}
}
