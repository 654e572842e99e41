package querymodel

import (
	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
)

// QueryModel is the structured form of a parsed operator chain.
//
// Semantics:
//
//	from x in source           -- MainFromClause
//	  [join ...]               -- owned by the from clause
//	  (from | where | orderby) -- BodyClauses, in source order
//	select ... | group ... by  -- SelectOrGroupClause, exactly one
//
// The model owns its clauses; clauses own their orderings, join clauses, and
// result modifications. Source references inside expressions point back at
// clauses of the same model.
type QueryModel struct {
	MainFromClause      *MainFromClause
	BodyClauses         *Collection[BodyClause]
	SelectOrGroupClause SelectOrGroupClause
}

// NewQueryModel creates a model with no body clauses.
func NewQueryModel(main *MainFromClause, terminal SelectOrGroupClause) (*QueryModel, error) {
	if main == nil {
		return nil, qerr.InvalidArgument("mainFromClause", "NewQueryModel")
	}
	if terminal == nil {
		return nil, qerr.InvalidArgument("selectOrGroupClause", "NewQueryModel")
	}
	return &QueryModel{
		MainFromClause:      main,
		BodyClauses:         NewCollection[BodyClause](),
		SelectOrGroupClause: terminal,
	}, nil
}

// AddBodyClause appends a body clause.
func (m *QueryModel) AddBodyClause(c BodyClause) error {
	if c == nil {
		return qerr.InvalidArgument("clause", "AddBodyClause")
	}
	m.BodyClauses.Append(c)
	return nil
}

// Accept runs v over the model, starting at VisitQueryModel.
func (m *QueryModel) Accept(v Visitor) {
	v.VisitQueryModel(m)
}

// Clauses returns every clause in source order. Join clauses follow the
// from clause that owns them.
func (m *QueryModel) Clauses() []Clause {
	var out []Clause
	addFrom := func(from FromClause) {
		out = append(out, from)
		for _, j := range from.Joins().All() {
			out = append(out, j)
		}
	}

	addFrom(m.MainFromClause)
	for _, c := range m.BodyClauses.All() {
		if from, ok := c.(*AdditionalFromClause); ok {
			addFrom(from)
			continue
		}
		out = append(out, c)
	}
	if m.SelectOrGroupClause != nil {
		out = append(out, m.SelectOrGroupClause)
	}
	return out
}

// Referents returns the clauses that source references may point at: from
// clauses and join clauses.
func (m *QueryModel) Referents() []expression.Referent {
	var out []expression.Referent
	for _, c := range m.Clauses() {
		if r, ok := c.(expression.Referent); ok {
			out = append(out, r)
		}
	}
	return out
}

// Expressions returns every expression held by the model's clauses, in
// source order.
func (m *QueryModel) Expressions() []expression.Expr {
	var out []expression.Expr
	for _, c := range m.Clauses() {
		out = append(out, ClauseExpressions(c)...)
	}
	return out
}

// ClauseExpressions returns the expressions c holds directly. Join clauses
// are not included in their from clause's expressions.
func ClauseExpressions(c Clause) []expression.Expr {
	var out []expression.Expr
	add := func(exprs ...expression.Expr) {
		for _, e := range exprs {
			if e != nil {
				out = append(out, e)
			}
		}
	}

	switch clause := c.(type) {
	case *MainFromClause:
		add(clause.QuerySource)
	case *AdditionalFromClause:
		add(clause.FromExpression, clause.ProjectionExpression)
	case *JoinClause:
		add(clause.InnerSequence, clause.OuterKeySelector, clause.InnerKeySelector)
	case *WhereClause:
		add(clause.Predicate)
	case *OrderByClause:
		for _, o := range clause.Orderings.All() {
			add(o.Expression)
		}
	case *SelectClause:
		add(clause.Selector)
		for _, r := range clause.ResultModifications.All() {
			switch mod := r.(type) {
			case Take:
				add(mod.Count)
			case Skip:
				add(mod.Count)
			}
		}
	case *GroupClause:
		add(clause.KeySelector, clause.ElementSelector)
	}
	return out
}
