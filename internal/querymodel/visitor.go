package querymodel

// Visitor has one method per kind of model element.
//
// Handlers receive the model and, for elements held in a collection, the
// element's current index. Join clauses also receive the from clause that
// owns them; orderings their order-by clause; result modifications their
// select clause.
type Visitor interface {
	VisitQueryModel(m *QueryModel)
	VisitMainFromClause(c *MainFromClause, m *QueryModel)
	VisitAdditionalFromClause(c *AdditionalFromClause, m *QueryModel, index int)
	VisitJoinClause(c *JoinClause, m *QueryModel, from FromClause, index int)
	VisitWhereClause(c *WhereClause, m *QueryModel, index int)
	VisitOrderByClause(c *OrderByClause, m *QueryModel, index int)
	VisitOrdering(o *Ordering, m *QueryModel, orderBy *OrderByClause, index int)
	VisitSelectClause(c *SelectClause, m *QueryModel)
	VisitGroupClause(c *GroupClause, m *QueryModel)
	VisitResultModification(r ResultModification, m *QueryModel, sel *SelectClause, index int)
}

// VisitorBase implements the default traversal.
//
// Embed it and set Self to the embedding visitor so the traversal dispatches
// to overridden handlers:
//
//	type counter struct {
//		querymodel.VisitorBase
//		wheres int
//	}
//
//	c := &counter{}
//	c.Self = c
//	model.Accept(c)
//
// Traversal order: main from clause, body clauses in order, then the
// select or group clause. Children are visited from inside the parent's
// default handler: join clauses from the from-clause handlers, orderings
// from VisitOrderByClause, result modifications from VisitSelectClause. An
// override that does not call the embedded handler skips that element's
// children; call b.VisitorBase.VisitOrderByClause(...) to keep them.
//
// Every element is reached through its own Accept method.
//
// Collections are iterated change-resistantly, so handlers may insert or
// remove elements of the collection being traversed.
type VisitorBase struct {
	// Self receives dispatched calls. Nil dispatches to the base itself.
	Self Visitor
}

func (b *VisitorBase) self() Visitor {
	if b.Self != nil {
		return b.Self
	}
	return b
}

func (b *VisitorBase) VisitQueryModel(m *QueryModel) {
	v := b.self()
	m.MainFromClause.Accept(v, m)
	for i, c := range m.BodyClauses.All() {
		c.Accept(v, m, i)
	}
	if m.SelectOrGroupClause != nil {
		m.SelectOrGroupClause.Accept(v, m)
	}
}

func (b *VisitorBase) VisitMainFromClause(c *MainFromClause, m *QueryModel) {
	b.visitJoinClauses(c, m)
}

func (b *VisitorBase) VisitAdditionalFromClause(c *AdditionalFromClause, m *QueryModel, index int) {
	b.visitJoinClauses(c, m)
}

func (b *VisitorBase) visitJoinClauses(from FromClause, m *QueryModel) {
	v := b.self()
	for i, j := range from.Joins().All() {
		j.Accept(v, m, from, i)
	}
}

func (b *VisitorBase) VisitJoinClause(c *JoinClause, m *QueryModel, from FromClause, index int) {}

func (b *VisitorBase) VisitWhereClause(c *WhereClause, m *QueryModel, index int) {}

func (b *VisitorBase) VisitOrderByClause(c *OrderByClause, m *QueryModel, index int) {
	v := b.self()
	for i, o := range c.Orderings.All() {
		o.Accept(v, m, c, i)
	}
}

func (b *VisitorBase) VisitOrdering(o *Ordering, m *QueryModel, orderBy *OrderByClause, index int) {}

func (b *VisitorBase) VisitSelectClause(c *SelectClause, m *QueryModel) {
	v := b.self()
	for i, r := range c.ResultModifications.All() {
		r.Accept(v, m, c, i)
	}
}

func (b *VisitorBase) VisitGroupClause(c *GroupClause, m *QueryModel) {}

func (b *VisitorBase) VisitResultModification(r ResultModification, m *QueryModel, sel *SelectClause, index int) {
}

var _ Visitor = (*VisitorBase)(nil)
