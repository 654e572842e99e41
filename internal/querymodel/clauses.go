package querymodel

import (
	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
)

// Clause is any element of a query model.
//
// Every clause except the main from clause has a predecessor: the clause
// immediately before it in source order. Predecessor links are non-owning.
type Clause interface {
	// Previous returns the predecessor clause, or nil for the main from clause.
	Previous() Clause
}

// FromClause introduces a range variable: the main from clause or an
// additional from clause. From clauses own their join clauses.
type FromClause interface {
	Clause
	expression.Referent

	// Joins returns the join clauses attached to this from clause.
	Joins() *Collection[*JoinClause]

	fromClause() // Marker method - seals interface to this package
}

// BodyClause is a clause between the main from clause and the terminal
// clause: *AdditionalFromClause, *WhereClause, or *OrderByClause.
type BodyClause interface {
	Clause

	// Accept dispatches to the visitor method for the concrete clause.
	Accept(v Visitor, m *QueryModel, index int)

	bodyClause() // Marker method - seals interface to this package
}

// SelectOrGroupClause is the terminal clause of a query model:
// *SelectClause or *GroupClause.
type SelectOrGroupClause interface {
	Clause

	// Accept dispatches to the visitor method for the concrete clause.
	Accept(v Visitor, m *QueryModel)

	selectOrGroupClause() // Marker method - seals interface to this package
}

// MainFromClause is the primary range variable over the query source.
//
// Semantics:
//
//	from <Identifier> in <QuerySource>
type MainFromClause struct {
	Identifier  *expression.Parameter
	QuerySource expression.Expr
	JoinClauses *Collection[*JoinClause]
}

// NewMainFromClause creates the main from clause. It has no predecessor and
// starts with no join clauses.
func NewMainFromClause(identifier *expression.Parameter, querySource expression.Expr) (*MainFromClause, error) {
	if err := requireIdentifier(identifier, "NewMainFromClause"); err != nil {
		return nil, err
	}
	if querySource == nil {
		return nil, qerr.InvalidArgument("querySource", "NewMainFromClause")
	}
	return &MainFromClause{
		Identifier:  identifier,
		QuerySource: querySource,
		JoinClauses: NewCollection[*JoinClause](),
	}, nil
}

func (c *MainFromClause) Previous() Clause { return nil }
func (c *MainFromClause) ReferenceName() string { return c.Identifier.Name }
func (c *MainFromClause) Joins() *Collection[*JoinClause] { return c.JoinClauses }
func (c *MainFromClause) fromClause() {}

func (c *MainFromClause) Accept(v Visitor, m *QueryModel) {
	v.VisitMainFromClause(c, m)
}

// AdditionalFromClause introduces a further range variable drawn from a
// collection selector (SelectMany).
//
// FromExpression is the resolved collection selector. ProjectionExpression
// is the resolved result selector when the operator supplied one.
type AdditionalFromClause struct {
	previous             Clause
	Identifier           *expression.Parameter
	FromExpression       expression.Expr
	ProjectionExpression expression.Expr
	JoinClauses          *Collection[*JoinClause]
}

// NewAdditionalFromClause creates an additional from clause following previous.
func NewAdditionalFromClause(previous Clause, identifier *expression.Parameter, fromExpression expression.Expr) (*AdditionalFromClause, error) {
	if previous == nil {
		return nil, qerr.InvalidArgument("previous", "NewAdditionalFromClause")
	}
	if err := requireIdentifier(identifier, "NewAdditionalFromClause"); err != nil {
		return nil, err
	}
	if fromExpression == nil {
		return nil, qerr.InvalidArgument("fromExpression", "NewAdditionalFromClause")
	}
	return &AdditionalFromClause{
		previous:       previous,
		Identifier:     identifier,
		FromExpression: fromExpression,
		JoinClauses:    NewCollection[*JoinClause](),
	}, nil
}

func (c *AdditionalFromClause) Previous() Clause { return c.previous }
func (c *AdditionalFromClause) ReferenceName() string { return c.Identifier.Name }
func (c *AdditionalFromClause) Joins() *Collection[*JoinClause] { return c.JoinClauses }
func (c *AdditionalFromClause) fromClause() {}
func (c *AdditionalFromClause) bodyClause() {}

func (c *AdditionalFromClause) Accept(v Visitor, m *QueryModel, index int) {
	v.VisitAdditionalFromClause(c, m, index)
}

// JoinClause is an inner equi-join attached to a from clause.
//
// Semantics:
//
//	join <Identifier> in <InnerSequence> on <OuterKeySelector> equals <InnerKeySelector>
type JoinClause struct {
	previous         Clause
	Identifier       *expression.Parameter
	InnerSequence    expression.Expr
	OuterKeySelector expression.Expr
	InnerKeySelector expression.Expr
}

// NewJoinClause creates a join clause following previous.
func NewJoinClause(previous Clause, identifier *expression.Parameter, innerSequence, outerKeySelector, innerKeySelector expression.Expr) (*JoinClause, error) {
	if previous == nil {
		return nil, qerr.InvalidArgument("previous", "NewJoinClause")
	}
	if err := requireIdentifier(identifier, "NewJoinClause"); err != nil {
		return nil, err
	}
	switch {
	case innerSequence == nil:
		return nil, qerr.InvalidArgument("innerSequence", "NewJoinClause")
	case outerKeySelector == nil:
		return nil, qerr.InvalidArgument("outerKeySelector", "NewJoinClause")
	case innerKeySelector == nil:
		return nil, qerr.InvalidArgument("innerKeySelector", "NewJoinClause")
	}
	return &JoinClause{
		previous:         previous,
		Identifier:       identifier,
		InnerSequence:    innerSequence,
		OuterKeySelector: outerKeySelector,
		InnerKeySelector: innerKeySelector,
	}, nil
}

func (c *JoinClause) Previous() Clause { return c.previous }
func (c *JoinClause) ReferenceName() string { return c.Identifier.Name }

// Accept dispatches to VisitJoinClause; from is the clause that owns c.
func (c *JoinClause) Accept(v Visitor, m *QueryModel, from FromClause, index int) {
	v.VisitJoinClause(c, m, from, index)
}

// WhereClause filters items by a resolved predicate.
type WhereClause struct {
	previous  Clause
	Predicate expression.Expr
}

// NewWhereClause creates a where clause following previous.
func NewWhereClause(previous Clause, predicate expression.Expr) (*WhereClause, error) {
	if previous == nil {
		return nil, qerr.InvalidArgument("previous", "NewWhereClause")
	}
	if predicate == nil {
		return nil, qerr.InvalidArgument("predicate", "NewWhereClause")
	}
	return &WhereClause{previous: previous, Predicate: predicate}, nil
}

func (c *WhereClause) Previous() Clause { return c.previous }
func (c *WhereClause) bodyClause() {}

func (c *WhereClause) Accept(v Visitor, m *QueryModel, index int) {
	v.VisitWhereClause(c, m, index)
}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Ordering is one sort key of an order-by clause.
type Ordering struct {
	Expression expression.Expr
	Direction  Direction
}

// NewOrdering creates an ordering.
func NewOrdering(expr expression.Expr, direction Direction) (*Ordering, error) {
	if expr == nil {
		return nil, qerr.InvalidArgument("expression", "NewOrdering")
	}
	if direction != Ascending && direction != Descending {
		return nil, qerr.InvalidArgument("direction", "NewOrdering")
	}
	return &Ordering{Expression: expr, Direction: direction}, nil
}

func (o *Ordering) Accept(v Visitor, m *QueryModel, orderBy *OrderByClause, index int) {
	v.VisitOrdering(o, m, orderBy, index)
}

// OrderByClause sorts items by its orderings, first ordering most significant.
type OrderByClause struct {
	previous  Clause
	Orderings *Collection[*Ordering]
}

// NewOrderByClause creates an order-by clause with the given orderings.
func NewOrderByClause(previous Clause, orderings ...*Ordering) (*OrderByClause, error) {
	if previous == nil {
		return nil, qerr.InvalidArgument("previous", "NewOrderByClause")
	}
	return &OrderByClause{previous: previous, Orderings: NewCollection(orderings...)}, nil
}

func (c *OrderByClause) Previous() Clause { return c.previous }
func (c *OrderByClause) bodyClause() {}

func (c *OrderByClause) Accept(v Visitor, m *QueryModel, index int) {
	v.VisitOrderByClause(c, m, index)
}

// SelectClause projects each item through Selector and then applies the
// result modifications in order.
type SelectClause struct {
	previous            Clause
	Selector            expression.Expr
	ResultModifications *Collection[ResultModification]
}

// NewSelectClause creates a select clause following previous.
func NewSelectClause(previous Clause, selector expression.Expr) (*SelectClause, error) {
	if previous == nil {
		return nil, qerr.InvalidArgument("previous", "NewSelectClause")
	}
	if selector == nil {
		return nil, qerr.InvalidArgument("selector", "NewSelectClause")
	}
	return &SelectClause{
		previous:            previous,
		Selector:            selector,
		ResultModifications: NewCollection[ResultModification](),
	}, nil
}

func (c *SelectClause) Previous() Clause { return c.previous }
func (c *SelectClause) selectOrGroupClause() {}

func (c *SelectClause) Accept(v Visitor, m *QueryModel) {
	v.VisitSelectClause(c, m)
}

// GroupClause groups ElementSelector values by KeySelector.
//
// Semantics:
//
//	group <ElementSelector> by <KeySelector>
type GroupClause struct {
	previous        Clause
	KeySelector     expression.Expr
	ElementSelector expression.Expr
}

// NewGroupClause creates a group clause following previous.
func NewGroupClause(previous Clause, keySelector, elementSelector expression.Expr) (*GroupClause, error) {
	if previous == nil {
		return nil, qerr.InvalidArgument("previous", "NewGroupClause")
	}
	if keySelector == nil {
		return nil, qerr.InvalidArgument("keySelector", "NewGroupClause")
	}
	if elementSelector == nil {
		return nil, qerr.InvalidArgument("elementSelector", "NewGroupClause")
	}
	return &GroupClause{previous: previous, KeySelector: keySelector, ElementSelector: elementSelector}, nil
}

func (c *GroupClause) Previous() Clause { return c.previous }
func (c *GroupClause) selectOrGroupClause() {}

func (c *GroupClause) Accept(v Visitor, m *QueryModel) {
	v.VisitGroupClause(c, m)
}

func requireIdentifier(identifier *expression.Parameter, operation string) error {
	if identifier == nil || identifier.Name == "" {
		return qerr.InvalidArgument("identifier", operation)
	}
	return nil
}
