package querymodel

import "github.com/roach88/chainq/internal/expression"

// ResultModification is a post-projection operator applied by a select
// clause: Distinct, Take, Skip, First, Last, Single, Count, Min, Max, Sum,
// or Average.
//
// This is a sealed interface - only types in this package implement it.
type ResultModification interface {
	// Name is the operator name (e.g. "Take").
	Name() string

	// Accept dispatches to VisitResultModification.
	Accept(v Visitor, m *QueryModel, sel *SelectClause, index int)

	resultModification() // Marker method - seals interface to this package
}

// Distinct removes duplicate results.
type Distinct struct{}

// Take keeps the first Count results.
type Take struct {
	Count expression.Expr
}

// Skip drops the first Count results.
type Skip struct {
	Count expression.Expr
}

// First returns the first result; OrDefault yields the default value
// instead of failing on an empty sequence.
type First struct {
	OrDefault bool
}

// Last returns the last result.
type Last struct {
	OrDefault bool
}

// Single returns the only result.
type Single struct {
	OrDefault bool
}

// Count returns the number of results.
type Count struct{}

// Min returns the smallest result.
type Min struct{}

// Max returns the largest result.
type Max struct{}

// Sum returns the sum of the results.
type Sum struct{}

// Average returns the mean of the results.
type Average struct{}

func (Distinct) Name() string { return "Distinct" }
func (Take) Name() string { return "Take" }
func (Skip) Name() string { return "Skip" }
func (Count) Name() string { return "Count" }
func (Min) Name() string { return "Min" }
func (Max) Name() string { return "Max" }
func (Sum) Name() string { return "Sum" }
func (Average) Name() string { return "Average" }

func (f First) Name() string { return orDefault("First", f.OrDefault) }
func (l Last) Name() string { return orDefault("Last", l.OrDefault) }
func (s Single) Name() string { return orDefault("Single", s.OrDefault) }

func orDefault(name string, flag bool) string {
	if flag {
		return name + "OrDefault"
	}
	return name
}

func (Distinct) resultModification() {}
func (Take) resultModification() {}
func (Skip) resultModification() {}
func (First) resultModification() {}
func (Last) resultModification() {}
func (Single) resultModification() {}
func (Count) resultModification() {}
func (Min) resultModification() {}
func (Max) resultModification() {}
func (Sum) resultModification() {}
func (Average) resultModification() {}

func (r Distinct) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Take) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Skip) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r First) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Last) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Single) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Count) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Min) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Max) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Sum) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}

func (r Average) Accept(v Visitor, m *QueryModel, sel *SelectClause, index int) {
	v.VisitResultModification(r, m, sel, index)
}
