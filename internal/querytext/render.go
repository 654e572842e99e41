package querytext

import (
	"strings"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/querymodel"
)

// Option configures rendering.
type Option func(*renderer)

// Multiline puts every clause on its own line.
func Multiline() Option {
	return func(r *renderer) {
		r.sep = "\n"
	}
}

// Render returns the query model as comprehension-style text:
//
//	from s in students where ([s].Age > 18) orderby [s].Name asc select [s].Name => Distinct() => Take(3)
//
// The output is a diagnostic rendering, stable across runs, and not a
// target query language.
func Render(m *querymodel.QueryModel, opts ...Option) string {
	if m == nil {
		return ""
	}
	r := &renderer{sep: " "}
	r.Self = r
	for _, opt := range opts {
		opt(r)
	}
	m.Accept(r)
	return strings.Join(r.parts, r.sep)
}

// renderer appends one part per clause. Orderings and result
// modifications are folded into their parent's part.
type renderer struct {
	querymodel.VisitorBase

	sep       string
	parts     []string
	orderings []string
}

func (r *renderer) VisitMainFromClause(c *querymodel.MainFromClause, m *querymodel.QueryModel) {
	r.parts = append(r.parts, "from "+c.Identifier.Name+" in "+expression.Format(c.QuerySource))
	r.VisitorBase.VisitMainFromClause(c, m)
}

func (r *renderer) VisitAdditionalFromClause(c *querymodel.AdditionalFromClause, m *querymodel.QueryModel, index int) {
	r.parts = append(r.parts, "from "+c.Identifier.Name+" in "+expression.Format(c.FromExpression))
	r.VisitorBase.VisitAdditionalFromClause(c, m, index)
}

func (r *renderer) VisitJoinClause(c *querymodel.JoinClause, m *querymodel.QueryModel, from querymodel.FromClause, index int) {
	r.parts = append(r.parts, "join "+c.Identifier.Name+" in "+expression.Format(c.InnerSequence)+
		" on "+expression.Format(c.OuterKeySelector)+" equals "+expression.Format(c.InnerKeySelector))
}

func (r *renderer) VisitWhereClause(c *querymodel.WhereClause, m *querymodel.QueryModel, index int) {
	r.parts = append(r.parts, "where "+expression.Format(c.Predicate))
}

func (r *renderer) VisitOrderByClause(c *querymodel.OrderByClause, m *querymodel.QueryModel, index int) {
	r.orderings = r.orderings[:0]
	r.VisitorBase.VisitOrderByClause(c, m, index)
	r.parts = append(r.parts, "orderby "+strings.Join(r.orderings, ", "))
}

func (r *renderer) VisitOrdering(o *querymodel.Ordering, m *querymodel.QueryModel, orderBy *querymodel.OrderByClause, index int) {
	r.orderings = append(r.orderings, expression.Format(o.Expression)+" "+string(o.Direction))
}

func (r *renderer) VisitSelectClause(c *querymodel.SelectClause, m *querymodel.QueryModel) {
	r.parts = append(r.parts, "select "+expression.Format(c.Selector))
	r.VisitorBase.VisitSelectClause(c, m)
}

func (r *renderer) VisitGroupClause(c *querymodel.GroupClause, m *querymodel.QueryModel) {
	r.parts = append(r.parts, "group "+expression.Format(c.ElementSelector)+" by "+expression.Format(c.KeySelector))
}

func (r *renderer) VisitResultModification(mod querymodel.ResultModification, m *querymodel.QueryModel, sel *querymodel.SelectClause, index int) {
	last := len(r.parts) - 1
	r.parts[last] += " => " + FormatModification(mod)
}

// FormatModification renders a result modification as a call: Take(3).
func FormatModification(mod querymodel.ResultModification) string {
	switch v := mod.(type) {
	case querymodel.Take:
		return v.Name() + "(" + expression.Format(v.Count) + ")"
	case querymodel.Skip:
		return v.Name() + "(" + expression.Format(v.Count) + ")"
	default:
		return mod.Name() + "()"
	}
}
