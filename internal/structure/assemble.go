package structure

import (
	"log/slog"

	"github.com/roach88/chainq/internal/expression"
	"github.com/roach88/chainq/internal/qerr"
	"github.com/roach88/chainq/internal/querymodel"
)

// assembler turns a source-first node list into a query model.
//
// Nodes are applied in order. Each clause is linked to the clause built
// before it. Source references produced during resolution point at nodes;
// the assembler maps every clause-producing node to its clause and rebinds
// expressions as they are stored, so the finished model refers only to its
// own clauses.
type assembler struct {
	logger *slog.Logger
	nodes  []Node

	index         int
	terminalIndex int

	main        *querymodel.MainFromClause
	body        []querymodel.BodyClause
	from        querymodel.FromClause
	last        querymodel.Clause
	lastOrderBy *querymodel.OrderByClause

	projection   expression.Expr
	groupKey     expression.Expr
	groupElement expression.Expr
	grouped      bool
	modifiers    []querymodel.ResultModification

	referents map[expression.Referent]expression.Referent
}

// assemble builds the query model for nodes (source-first, nodes[0] the
// main source).
func assemble(nodes []Node, logger *slog.Logger) (*querymodel.QueryModel, error) {
	a := &assembler{
		logger:    logger,
		nodes:     nodes,
		referents: make(map[expression.Referent]expression.Referent),
	}

	for _, n := range nodes {
		if err := requireSelectors(n); err != nil {
			return nil, err
		}
	}
	if err := a.findTerminal(); err != nil {
		return nil, err
	}
	for i, n := range nodes {
		a.index = i
		if err := n.apply(a); err != nil {
			return nil, err
		}
	}
	return a.finish()
}

// findTerminal locates the projecting or grouping operator that ends the
// chain. Only result modifiers may follow it.
func (a *assembler) findTerminal() error {
	a.terminalIndex = -1
	for i := len(a.nodes) - 1; i >= 0; i-- {
		if _, ok := a.nodes[i].(*ResultModifierNode); !ok {
			a.terminalIndex = i
			break
		}
	}
	if a.terminalIndex < 0 {
		return qerr.MalformedChain("chain has no query source")
	}

	switch n := a.nodes[a.terminalIndex].(type) {
	case *SelectNode, *SelectManyNode, *JoinNode, *GroupByNode:
		return nil
	default:
		return qerr.MalformedChain("chain has no terminal projection or grouping: it ends with %s", describe(n))
	}
}

func (a *assembler) isTerminal() bool {
	return a.index == a.terminalIndex
}

func (a *assembler) rebind(e expression.Expr) expression.Expr {
	if e == nil {
		return nil
	}
	return expression.Rebind(e, a.referents)
}

func (a *assembler) addBodyClause(c querymodel.BodyClause) {
	a.body = append(a.body, c)
	a.last = c
	a.lastOrderBy = nil
}

func (a *assembler) applyMainSource(n *MainSourceNode) error {
	identifier := expression.Param(n.ItemName, n.ItemType)
	main, err := querymodel.NewMainFromClause(identifier, n.QuerySource)
	if err != nil {
		return err
	}
	a.referents[n] = main
	a.main, a.from, a.last = main, main, main
	a.logger.Debug("main from clause", "identifier", n.ItemName, "source", n.QuerySource.Name)
	return nil
}

func (a *assembler) applyWhere(n *WhereNode) error {
	predicate, err := n.GetResolvedPredicate()
	if err != nil {
		return err
	}
	clause, err := querymodel.NewWhereClause(a.last, a.rebind(predicate))
	if err != nil {
		return err
	}
	a.addBodyClause(clause)
	a.logger.Debug("where clause", "predicate", expression.Format(clause.Predicate))
	return nil
}

func (a *assembler) applySelect(n *SelectNode) error {
	a.lastOrderBy = nil
	if !a.isTerminal() {
		a.logger.Debug("inlining intermediate projection", "operator", describe(n))
		return nil
	}
	selector, err := n.GetResolvedSelector()
	if err != nil {
		return err
	}
	a.projection = selector
	return nil
}

func (a *assembler) applySelectMany(n *SelectManyNode) error {
	collection, err := n.GetResolvedCollectionSelector()
	if err != nil {
		return err
	}
	identifier := expression.Param(n.ItemName, n.ItemType)
	clause, err := querymodel.NewAdditionalFromClause(a.last, identifier, a.rebind(collection))
	if err != nil {
		return err
	}
	a.referents[n] = clause

	result, err := n.GetResolvedResultSelector()
	if err != nil {
		return err
	}
	if n.ResultSelector != nil {
		clause.ProjectionExpression = a.rebind(result)
	}

	a.addBodyClause(clause)
	a.from = clause
	if a.isTerminal() {
		a.projection = result
	}
	a.logger.Debug("additional from clause", "identifier", n.ItemName, "from", expression.Format(clause.FromExpression))
	return nil
}

func (a *assembler) applyJoin(n *JoinNode) error {
	outerKey, err := n.GetResolvedOuterKeySelector()
	if err != nil {
		return err
	}
	innerKey, err := n.GetResolvedInnerKeySelector()
	if err != nil {
		return err
	}
	result, err := n.GetResolvedResultSelector()
	if err != nil {
		return err
	}

	identifier := expression.Param(n.ReferenceName(), n.ItemType())
	clause, err := querymodel.NewJoinClause(a.last, identifier, n.InnerSequence, a.rebind(outerKey), innerKey)
	if err != nil {
		return err
	}
	a.referents[n] = clause
	clause.InnerKeySelector = a.rebind(innerKey)

	a.from.Joins().Append(clause)
	a.last = clause
	a.lastOrderBy = nil
	if a.isTerminal() {
		a.projection = result
	}
	a.logger.Debug("join clause", "identifier", identifier.Name, "from", a.from.ReferenceName())
	return nil
}

func (a *assembler) applyOrderBy(n *OrderByNode) error {
	key, err := n.GetResolvedKeySelector()
	if err != nil {
		return err
	}
	ordering, err := querymodel.NewOrdering(a.rebind(key), n.Direction)
	if err != nil {
		return err
	}
	clause, err := querymodel.NewOrderByClause(a.last, ordering)
	if err != nil {
		return err
	}
	a.addBodyClause(clause)
	a.lastOrderBy = clause
	a.logger.Debug("order-by clause", "key", expression.Format(ordering.Expression), "direction", n.Direction)
	return nil
}

func (a *assembler) applyThenBy(n *ThenByNode) error {
	if a.lastOrderBy == nil {
		return qerr.MalformedChain("%s must directly follow OrderBy, OrderByDescending, or another ThenBy", describe(n))
	}
	key, err := n.GetResolvedKeySelector()
	if err != nil {
		return err
	}
	ordering, err := querymodel.NewOrdering(a.rebind(key), n.Direction)
	if err != nil {
		return err
	}
	a.lastOrderBy.Orderings.Append(ordering)
	return nil
}

func (a *assembler) applyGroupBy(n *GroupByNode) error {
	if !a.isTerminal() {
		return qerr.MalformedChain("%s must be the final operator", describe(n))
	}
	key, err := n.GetResolvedKeySelector()
	if err != nil {
		return err
	}
	element, err := n.GetResolvedElementSelector()
	if err != nil {
		return err
	}
	a.groupKey, a.groupElement, a.grouped = key, element, true
	return nil
}

func (a *assembler) applyResultModifier(n *ResultModifierNode) error {
	if a.index < a.terminalIndex {
		return qerr.MalformedChain("%s must follow the final projection", describe(n))
	}
	if a.grouped {
		return qerr.MalformedChain("%s cannot follow a grouping", describe(n))
	}

	predicate, err := n.GetResolvedPredicate()
	if err != nil {
		return err
	}
	if predicate != nil {
		clause, err := querymodel.NewWhereClause(a.last, a.rebind(predicate))
		if err != nil {
			return err
		}
		a.addBodyClause(clause)
	}

	selector, err := n.GetResolvedSelector()
	if err != nil {
		return err
	}
	if selector != nil {
		a.projection = selector
	}

	mod, err := n.Modification()
	if err != nil {
		return err
	}
	a.modifiers = append(a.modifiers, mod)
	return nil
}

// finish builds the terminal clause and the model.
func (a *assembler) finish() (*querymodel.QueryModel, error) {
	var terminal querymodel.SelectOrGroupClause
	var sel *querymodel.SelectClause
	var err error

	if a.grouped {
		terminal, err = querymodel.NewGroupClause(a.last, a.rebind(a.groupKey), a.rebind(a.groupElement))
	} else {
		if a.projection == nil {
			return nil, qerr.MalformedChain("chain has no terminal projection")
		}
		sel, err = querymodel.NewSelectClause(a.last, a.rebind(a.projection))
		terminal = sel
	}
	if err != nil {
		return nil, err
	}

	model, err := querymodel.NewQueryModel(a.main, terminal)
	if err != nil {
		return nil, err
	}
	for _, c := range a.body {
		if err := model.AddBodyClause(c); err != nil {
			return nil, err
		}
	}
	if sel != nil {
		for _, m := range a.modifiers {
			sel.ResultModifications.Append(m)
		}
	}
	return model, nil
}
